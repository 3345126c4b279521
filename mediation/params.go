package mediation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ParamsValidator validates the server parameters an ad source was configured with.
type ParamsValidator interface {
	// Validate validates the server parameters for the given network. It returns an error
	// if the parameters are not valid, or if the network is unknown.
	Validate(network string, params json.RawMessage) error

	// Schema returns the JSON schema used by Validate for the given network.
	Schema(network string) string
}

// NewParamsValidator makes a ParamsValidator from the JSON schemas in schemaDirectory.
// Each file must be named "{network}.json".
func NewParamsValidator(schemaDirectory string) (ParamsValidator, error) {
	filesystem := http.Dir(schemaDirectory)
	entries, err := os.ReadDir(schemaDirectory)
	if err != nil {
		return nil, fmt.Errorf("Failed to read JSON schemas from directory %s. %v", schemaDirectory, err)
	}

	schemaContents := make(map[string]string, len(entries))
	schemas := make(map[string]*gojsonschema.Schema, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		network := strings.TrimSuffix(entry.Name(), ".json")

		schemaLoader := gojsonschema.NewReferenceLoaderFileSystem(fmt.Sprintf("file:///%s", entry.Name()), filesystem)
		loadedSchema, err := gojsonschema.NewSchema(schemaLoader)
		if err != nil {
			return nil, fmt.Errorf("Failed to load json schema at %s/%s: %v", schemaDirectory, entry.Name(), err)
		}

		fileBytes, err := os.ReadFile(filepath.Join(schemaDirectory, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("Failed to read file %s/%s: %v", schemaDirectory, entry.Name(), err)
		}

		schemas[network] = loadedSchema
		schemaContents[network] = string(fileBytes)
	}

	return &paramsValidator{
		schemaContents: schemaContents,
		parsedSchemas:  schemas,
	}, nil
}

type paramsValidator struct {
	schemaContents map[string]string
	parsedSchemas  map[string]*gojsonschema.Schema
}

func (validator *paramsValidator) Validate(network string, params json.RawMessage) error {
	schema, ok := validator.parsedSchemas[network]
	if !ok {
		return fmt.Errorf("no schema registered for network %q", network)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(params))
	if err != nil {
		return err
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}
	return nil
}

func (validator *paramsValidator) Schema(network string) string {
	return validator.schemaContents[network]
}
