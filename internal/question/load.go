package question

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed data/sample.json
var sampleDataset []byte

// Default returns the catalog built from the embedded sample dataset.
func Default() (*Catalog, error) {
	return Parse(sampleDataset)
}

// Load reads and parses a dataset file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a dataset document of the form {"grade": [Question...]},
// validates it and builds a Catalog.
func Parse(data []byte) (*Catalog, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse dataset JSON: %w", err)
	}
	if err := validateShape(doc); err != nil {
		return nil, err
	}

	var raw map[string][]Question
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return NewCatalog(raw)
}
