package loader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const schemaResource = "logicmesh://program-document.schema.json"

// documentSchema is a structural check only: every field a block_decl or
// link_decl needs is present and the right JSON type. It cannot see the
// registry, so unknown block names or dangling pin references still surface
// later, from Load itself.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["meta", "blocks"],
  "properties": {
    "meta": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1}
      }
    },
    "blocks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1}
        }
      }
    },
    "links": {
      "type": "array",
      "items": {
        "type": "object",
        "required": [
          "source_block_uuid",
          "target_block_uuid",
          "source_block_pin_name",
          "target_block_pin_name"
        ],
        "properties": {
          "source_block_uuid": {"type": "string", "minLength": 1},
          "target_block_uuid": {"type": "string", "minLength": 1},
          "source_block_pin_name": {"type": "string", "minLength": 1},
          "target_block_pin_name": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaResource, strings.NewReader(documentSchema)); err != nil {
		panic(fmt.Sprintf("loader: invalid embedded schema: %v", err))
	}
	sch, err := c.Compile(schemaResource)
	if err != nil {
		panic(fmt.Sprintf("loader: schema compile: %v", err))
	}
	return sch
}

// ValidateSchema checks doc's shape independent of whether its block names
// and pin references resolve against a live registry.
func ValidateSchema(doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("loader: marshal document: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("loader: unmarshal document: %w", err)
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return fmt.Errorf("loader: schema validation: %w", err)
	}
	return nil
}

// Parse decodes a YAML program document and validates its shape.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("loader: parse document: %w", err)
	}
	if err := ValidateSchema(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Marshal renders doc back to YAML.
func Marshal(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
