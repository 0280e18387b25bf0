package trajectory

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/trajectory.schema.json
var artifactSchema []byte

// Validate checks raw artifact JSON against the embedded schema.
func Validate(data json.RawMessage) error {
	if !json.Valid(data) {
		return fmt.Errorf("artifact is not valid JSON")
	}

	schemaLoader := gojsonschema.NewBytesLoader(artifactSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateArtifact marshals the artifact and checks it against the schema.
func ValidateArtifact(a *Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return Validate(data)
}
