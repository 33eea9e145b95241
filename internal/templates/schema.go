package templates

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/step_template.schema.json
var templateSchema string

// SchemaError indicates the embedded schema itself failed to load, which is
// a build defect rather than bad user input.
type SchemaError struct {
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("failed to load step-template schema: %v", e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// DefinitionError is a schema-validation failure for a template definition,
// with per-field messages for the CLI linter to print.
type DefinitionError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (e *DefinitionError) Error() string {
	var sb strings.Builder
	sb.WriteString("template definition is invalid:\n")
	for i, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// ValidateDefinition checks a raw template document against the embedded
// JSON Schema. Graph-level rules (acyclicity, resolvable dependency refs)
// are beyond what the schema can express and are enforced by
// journey.Template.Validate afterwards.
func ValidateDefinition(doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("template definition is not valid JSON")
	}

	schemaLoader := gojsonschema.NewStringLoader(templateSchema)
	documentLoader := gojsonschema.NewBytesLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaError{Cause: err}
	}
	if result.Valid() {
		return nil
	}

	defErr := &DefinitionError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		defErr.Errors = append(defErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return defErr
}
