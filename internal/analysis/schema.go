package analysis

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// responseSchema describes the body consumed from the analysis service.
// Unknown fields are allowed; only issues, when present, is constrained.
const responseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "issues": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["line", "type", "message"],
        "properties": {
          "line": {"type": "number"},
          "type": {"type": "string"},
          "message": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(responseSchema)

// SchemaError lists the places a response body departs from the expected shape
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return "unexpected response shape: " + strings.Join(e.Fields, "; ")
}

// validateResponse checks body against responseSchema
func validateResponse(body []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Fields: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Fields = append(schemaErr.Fields, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return schemaErr
}
