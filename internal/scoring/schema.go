package scoring

import (
	"bytes"
	"embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemasFS embed.FS

// reportSchema validates report bodies before they are mapped to Results.
type reportSchema struct {
	schema *jsonschema.Schema
}

func newReportSchema() (*reportSchema, error) {
	data, err := schemasFS.ReadFile("schemas/report.schema.json")
	if err != nil {
		return nil, fmt.Errorf("read report schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal report schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("report.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("report.json")
	if err != nil {
		return nil, fmt.Errorf("compile report schema: %w", err)
	}
	return &reportSchema{schema: schema}, nil
}

// Validate checks a raw report body. Violations are flattened into one error.
func (s *reportSchema) Validate(body []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	err = s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	return fmt.Errorf("report violates schema: %s", strings.Join(leafErrors(ve), "; "))
}

func leafErrors(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		return []string{"/" + strings.Join(ve.InstanceLocation, "/") + ": " + ve.Error()}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, leafErrors(cause)...)
	}
	return out
}
