package validation

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaCandidatePool = "candidate-pool"
	schemaProfile       = "profile"
)

// DocumentValidator checks input documents against their JSON Schemas before
// anything tries to decode them, so a malformed file fails with field-level
// findings instead of a half-populated struct.
type DocumentValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewDocumentValidator compiles the embedded schemas. Compilation can only
// fail if the schemas shipped in the binary are broken, which is a build
// problem, not an input problem.
func NewDocumentValidator() (*DocumentValidator, error) {
	files := map[string]string{
		schemaCandidatePool: "schemas/candidate-pool.schema.json",
		schemaProfile:       "schemas/profile.schema.json",
	}

	v := &DocumentValidator{schemas: make(map[string]*gojsonschema.Schema, len(files))}
	for name, path := range files {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = schema
	}

	return v, nil
}

// ValidateCandidatePool checks a candidate pool document.
func (v *DocumentValidator) ValidateCandidatePool(data []byte) error {
	return v.validate(schemaCandidatePool, data)
}

// ValidateProfile checks a user profile document.
func (v *DocumentValidator) ValidateProfile(data []byte) error {
	return v.validate(schemaProfile, data)
}

func (v *DocumentValidator) validate(name string, data []byte) error {
	result, err := v.schemas[name].Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate %s document: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}

	return &DocumentError{Document: name, Issues: issues}
}

// DocumentError aggregates the findings for one invalid document.
type DocumentError struct {
	Document string
	Issues   []string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s document invalid: %s", e.Document, strings.Join(e.Issues, "; "))
}
