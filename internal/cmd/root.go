package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root command of the diagnosis service
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnosis-service",
		Short: "Digital maturity questionnaire service",
		Long: `diagnosis-service runs the digital maturity questionnaire over HTTP.

It loads the question catalog from the diagnosis API, validates and records
answers per user, submits completed questionnaires for scoring and keeps a
local archive of every diagnosis returned.`,
		Version:      Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewOptionsCommand())

	return cmd
}
