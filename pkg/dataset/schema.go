package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is returned when a document does not match the dataset schema.
var ErrSchemaViolation = errors.New("dataset does not match schema")

//go:embed schema.json
var schemaJSON []byte

// Schema returns the embedded JSON schema for dataset documents.
func Schema() []byte {
	return schemaJSON
}

// Issue is a single schema violation.
type Issue struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// Validate checks a decoded document (as produced by a generic JSON or YAML
// decode) against the dataset schema. It returns the violations, if any.
func Validate(doc any) ([]Issue, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		issues = append(issues, Issue{Field: verr.Field(), Description: verr.Description()})
	}

	return issues, fmt.Errorf("%w: %d issue(s)", ErrSchemaViolation, len(issues))
}

// ValidateFile decodes path generically and validates it.
func ValidateFile(path string) ([]Issue, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	var doc any

	decodeErr := codec.Decode(file, &doc)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode dataset: %w", decodeErr)
	}

	return Validate(doc)
}
