package cmd

import (
	"fmt"
	"io"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type optionDocument struct {
	Version   string        `yaml:"version"`
	Questions []optionEntry `yaml:"questions"`
}

type optionEntry struct {
	ID      models.QuestionID `yaml:"id"`
	Options models.OptionSet  `yaml:"options"`
}

// NewOptionsCommand creates the options subcommand
func NewOptionsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print the categorical option table",
		Long: `Print the option sets used for categorical questions as YAML.

Without --file the embedded table is printed. With --file the given table is
validated first, so the command doubles as a check for OPTION_SETS_PATH files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadOptionRegistry(file)
			if err != nil {
				return err
			}
			return writeOptionRegistry(cmd.OutOrStdout(), registry)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "option table to validate and print")

	return cmd
}

func writeOptionRegistry(w io.Writer, registry *questionnaire.OptionRegistry) error {
	doc := optionDocument{Version: registry.Version()}
	for _, id := range registry.IDs() {
		set, _ := registry.Lookup(id)
		doc.Questions = append(doc.Questions, optionEntry{ID: id, Options: set})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode option sets: %w", err)
	}
	return enc.Close()
}
