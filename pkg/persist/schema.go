package persist

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/batch_result.schema.json
var batchResultSchema []byte

// Violation is one schema violation of a batch result document.
type Violation struct {
	Field       string
	Description string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Description
}

// BatchResultSchema returns the JSON schema of batch result documents.
func BatchResultSchema() []byte {
	return batchResultSchema
}

// ValidateBatchResult checks a JSON batch result document against the
// embedded schema. It returns the violations found; the error is reserved for
// documents that are not JSON at all.
func ValidateBatchResult(document []byte) ([]Violation, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(batchResultSchema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validate batch result: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))

	for _, e := range result.Errors() {
		violations = append(violations, Violation{Field: e.Field(), Description: e.Description()})
	}

	return violations, nil
}
