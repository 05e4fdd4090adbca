package questionnaire

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/option_sets.yaml
var defaultOptionSets []byte

// OptionRegistry is the versioned lookup table of categorical option sets, keyed by
// question id. It is kept outside the Question record because each categorical
// question has its own hand-authored labels and values.
type OptionRegistry struct {
	version string
	sets    map[models.QuestionID]models.OptionSet
}

type optionFile struct {
	Version   string `yaml:"version"`
	Questions []struct {
		ID      models.QuestionID `yaml:"id"`
		Options []models.Option   `yaml:"options"`
	} `yaml:"questions"`
}

// NewOptionRegistry builds a registry from in-memory data.
func NewOptionRegistry(version string, sets map[models.QuestionID]models.OptionSet) (*OptionRegistry, error) {
	r := &OptionRegistry{
		version: version,
		sets:    make(map[models.QuestionID]models.OptionSet, len(sets)),
	}
	for id, set := range sets {
		if err := checkOptionSet(id, set); err != nil {
			return nil, err
		}
		r.sets[id] = append(models.OptionSet(nil), set...)
	}
	return r, nil
}

// ParseOptionRegistry reads a YAML option table.
func ParseOptionRegistry(data []byte) (*OptionRegistry, error) {
	var f optionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse option sets: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("parse option sets: missing version")
	}

	sets := make(map[models.QuestionID]models.OptionSet, len(f.Questions))
	for _, q := range f.Questions {
		if _, dup := sets[q.ID]; dup {
			return nil, fmt.Errorf("parse option sets: question %d declared twice", q.ID)
		}
		sets[q.ID] = q.Options
	}
	return NewOptionRegistry(f.Version, sets)
}

// LoadOptionRegistryFile reads a YAML option table from disk.
func LoadOptionRegistryFile(path string) (*OptionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read option sets: %w", err)
	}
	return ParseOptionRegistry(data)
}

// DefaultOptionRegistry returns the embedded option table.
func DefaultOptionRegistry() *OptionRegistry {
	r, err := ParseOptionRegistry(defaultOptionSets)
	if err != nil {
		// the embedded table is part of the build
		panic(err)
	}
	return r
}

func checkOptionSet(id models.QuestionID, set models.OptionSet) error {
	if len(set) == 0 {
		return fmt.Errorf("option set for question %d is empty", id)
	}
	seen := make(map[int]struct{}, len(set))
	for _, o := range set {
		if _, dup := seen[o.Value]; dup {
			return fmt.Errorf("option set for question %d repeats value %d", id, o.Value)
		}
		seen[o.Value] = struct{}{}
	}
	return nil
}

func (r *OptionRegistry) Version() string { return r.version }

// Lookup returns a copy of the option set registered for id.
func (r *OptionRegistry) Lookup(id models.QuestionID) (models.OptionSet, bool) {
	set, ok := r.sets[id]
	if !ok {
		return nil, false
	}
	return append(models.OptionSet(nil), set...), true
}

// IDs returns the registered question ids in ascending order.
func (r *OptionRegistry) IDs() []models.QuestionID {
	ids := make([]models.QuestionID, 0, len(r.sets))
	for id := range r.sets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
