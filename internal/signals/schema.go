package signals

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed registry_schema.json
var registrySchemaJSON string

// FieldError is a single schema violation at a specific document path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports a registry document that failed schema validation.
type ValidationError struct {
	Source string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("registry %s failed validation:\n", ve.Source))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// validateDocument checks a raw registry document against the embedded
// JSON Schema before it is decoded.
func validateDocument(source string, data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(registrySchemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate registry %s: %w", source, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Source: source}
	for _, resultErr := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   resultErr.Field(),
			Message: resultErr.Description(),
		})
	}
	return ve
}
