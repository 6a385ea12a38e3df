package interpreter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quill/interpreter-go/pkg/ast"
)

// FixtureManifest describes the expected outcome of a fixture program.
type FixtureManifest struct {
	Description string `json:"description"`
	Entry       string `json:"entry"`
	Expect      struct {
		Result *struct {
			Kind  string `json:"kind"`
			Value any    `json:"value"`
		} `json:"result"`
		Stdout []string `json:"stdout"`
		Error  *struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"expect"`
}

// LoadFixtureManifest reads dir/manifest.json. A missing manifest yields the
// zero value.
func LoadFixtureManifest(dir string) (FixtureManifest, error) {
	var manifest FixtureManifest
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return manifest, nil
		}
		return manifest, err
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("parse %s: %w", filepath.Join(dir, "manifest.json"), err)
	}
	return manifest, nil
}

// LoadFixtureModule decodes the fixture's entry module (module.json unless
// the manifest names another entry).
func LoadFixtureModule(dir string, manifest FixtureManifest) (*ast.Module, error) {
	entry := manifest.Entry
	if entry == "" {
		entry = "module.json"
	}
	file, err := os.Open(filepath.Join(dir, entry))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	module, err := ast.DecodeModule(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(dir, entry), err)
	}
	return module, nil
}
