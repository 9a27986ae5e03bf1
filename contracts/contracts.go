// Package contracts embeds the HTTP and configuration contracts of the service.
package contracts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed stores.yaml
var StoresYAML []byte

//go:embed store-config.schema.json
var StoreConfigSchemaJSON []byte

const storeConfigSchemaURL = "memory://schemas/store-config.schema.json"

// LoadStores parses and validates the stores OpenAPI document.
func LoadStores() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(StoresYAML)
	if err != nil {
		return nil, fmt.Errorf("load stores contract: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate stores contract: %w", err)
	}
	return spec, nil
}

// CompileStoreConfigSchema compiles the JSON Schema for store configuration files.
func CompileStoreConfigSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(storeConfigSchemaURL, bytes.NewReader(StoreConfigSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add store config schema: %w", err)
	}
	schema, err := compiler.Compile(storeConfigSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile store config schema: %w", err)
	}
	return schema, nil
}

var (
	storeConfigOnce   sync.Once
	storeConfigSchema *jsonschema.Schema
	storeConfigErr    error
)

// ValidateStoreConfig checks a raw store configuration document against the
// embedded JSON Schema.
func ValidateStoreConfig(payload []byte) error {
	storeConfigOnce.Do(func() {
		storeConfigSchema, storeConfigErr = CompileStoreConfigSchema()
	})
	if storeConfigErr != nil {
		return storeConfigErr
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("decode store config: %w", err)
	}
	if err := storeConfigSchema.Validate(document); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
