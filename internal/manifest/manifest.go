// Package manifest loads the optional boards.yaml file describing the
// supported platforms: target triple, toolchain family, per-tool
// overrides, and linker script. Environment variables always win over
// manifest values; the manifest fills gaps.
package manifest

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the manifest is looked up when no flag is given.
const DefaultPath = "boards.yaml"

type Board struct {
	Name         string     `yaml:"name"`
	Target       string     `yaml:"target"`
	Toolchain    string     `yaml:"toolchain"`
	LinkerScript string     `yaml:"linker_script"`
	Tools        BoardTools `yaml:"tools"`
}

type BoardTools struct {
	Size    string `yaml:"size"`
	Objcopy string `yaml:"objcopy"`
	Objdump string `yaml:"objdump"`
}

type Manifest struct {
	Boards []Board `yaml:"boards"`
}

// boardSchema gates the manifest before it configures a build; a
// malformed manifest is a configuration error, not a toolchain one.
const boardSchema = `{
  "type": "object",
  "required": ["boards"],
  "properties": {
    "boards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "target"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "target": {"type": "string", "minLength": 1},
          "toolchain": {"type": "string"},
          "linker_script": {"type": "string"},
          "tools": {
            "type": "object",
            "properties": {
              "size": {"type": "string"},
              "objcopy": {"type": "string"},
              "objdump": {"type": "string"}
            },
            "additionalProperties": false
          }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

// Load reads, schema-checks, and decodes a manifest.
func Load(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if errs, err := validate(doc); err != nil {
		return Manifest{}, fmt.Errorf("validate manifest %s: %w", path, err)
	} else if len(errs) > 0 {
		return Manifest{}, fmt.Errorf("invalid manifest %s: %s", path, errs[0])
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

func validate(doc any) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(boardSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

// Find returns the board entry for a platform name.
func (m Manifest) Find(name string) (Board, bool) {
	for _, b := range m.Boards {
		if b.Name == name {
			return b, true
		}
	}
	return Board{}, false
}
