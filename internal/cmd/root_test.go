package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "diagnosis-service", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "options")
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestOptionsCommand_Default(t *testing.T) {
	out, err := runRoot(t, "options")
	require.NoError(t, err)

	printed, err := questionnaire.ParseOptionRegistry([]byte(out))
	require.NoError(t, err)

	embedded := questionnaire.DefaultOptionRegistry()
	assert.Equal(t, embedded.Version(), printed.Version())
	assert.Equal(t, embedded.IDs(), printed.IDs())
	for _, id := range embedded.IDs() {
		want, _ := embedded.Lookup(id)
		got, ok := printed.Lookup(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestOptionsCommand_File(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "options.yaml")
	require.NoError(t, os.WriteFile(valid, []byte(`version: "custom-1"
questions:
  - id: 18
    options:
      - label: "Nunca"
        value: 1
      - label: "Siempre"
        value: 2
`), 0o644))

	out, err := runRoot(t, "options", "--file", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "version: custom-1")
	assert.Contains(t, out, "label: Siempre")

	duplicate := filepath.Join(dir, "duplicate.yaml")
	require.NoError(t, os.WriteFile(duplicate, []byte(`version: "bad"
questions:
  - id: 18
    options:
      - label: "A"
        value: 1
      - label: "B"
        value: 1
`), 0o644))

	_, err = runRoot(t, "options", "-f", duplicate)
	assert.ErrorContains(t, err, "repeats value 1")

	_, err = runRoot(t, "options", "-f", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
