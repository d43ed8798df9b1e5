// Package fixtures provides the seed records for the memory store and the
// seed command.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taskflow/core/internal/domain/entities"
)

//go:embed data/*.json
var data embed.FS

// Set is one complete set of seed records
type Set struct {
	Tasks     []entities.Task     `json:"tasks"`
	Contacts  []entities.Contact  `json:"contacts"`
	Discounts []entities.Discount `json:"discounts"`
}

// Default returns the embedded seed records
func Default() (*Set, error) {
	var set Set
	for name, dest := range map[string]interface{}{
		"data/tasks.json":     &set.Tasks,
		"data/contacts.json":  &set.Contacts,
		"data/discounts.json": &set.Discounts,
	} {
		raw, err := data.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return &set, nil
}

// LoadFile reads a seed set from a JSON or YAML document with top-level
// tasks, contacts and discounts keys. Sections left out of the file are
// taken from the embedded defaults.
func LoadFile(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
		}
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported fixtures format %q", filepath.Ext(path))
	}

	var file struct {
		Tasks     *[]entities.Task     `json:"tasks"`
		Contacts  *[]entities.Contact  `json:"contacts"`
		Discounts *[]entities.Discount `json:"discounts"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
	}

	set, err := Default()
	if err != nil {
		return nil, err
	}
	if file.Tasks != nil {
		set.Tasks = *file.Tasks
	}
	if file.Contacts != nil {
		set.Contacts = *file.Contacts
	}
	if file.Discounts != nil {
		set.Discounts = *file.Discounts
	}
	return set, nil
}

// Load returns the file's records when path is set, the embedded ones otherwise
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// yamlToJSON re-encodes a YAML document so the entities' JSON decoding
// (Id casing, date parsing) applies unchanged.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
