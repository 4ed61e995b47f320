package schema

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// metaSchemaJSON describes the shape of a schema document (spec §6) so that
// structurally malformed documents are rejected before a single field is
// read into a typed ToolSchema. Grounded on the jsonschema/v6 compile-then-
// validate pattern in evaluators/argument_validation.go's validateSchema.
const metaSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["id", "name", "binary", "version", "risk"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"binary": {"type": "string", "minLength": 1},
		"version": {"type": "integer", "minimum": 0},
		"risk": {"enum": ["safe", "local_write", "shared_write", "destructive"]},
		"capabilities": {"type": "array", "items": {"type": "string"}},
		"flags": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "arg_type"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"short": {"type": "integer", "minimum": 0, "maximum": 255},
					"arg_type": {"enum": ["bool", "string", "int", "float", "path", "enum"]},
					"required": {"type": "boolean"},
					"enum_values": {"type": "array", "items": {"type": "string"}},
					"range_min": {"type": "integer"},
					"range_max": {"type": "integer"},
					"multiple": {"type": "boolean"},
					"description": {"type": "string"}
				}
			}
		},
		"positionals": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "arg_type"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"arg_type": {"enum": ["bool", "string", "int", "float", "path", "enum"]},
					"required": {"type": "boolean"},
					"enum_values": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"subcommands": {},
		"exclusive_groups": {
			"type": "array",
			"items": {"type": "array", "items": {"type": "string"}}
		}
	}
}`

var metaSchema *jsonschema.Schema

func init() {
	var schemaObj any
	if err := json.NewDecoder(bytes.NewReader([]byte(metaSchemaJSON))).Decode(&schemaObj); err != nil {
		panic("schema: metaSchemaJSON does not parse: " + err.Error())
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("ward-schema-document.json", schemaObj); err != nil {
		panic("schema: metaSchemaJSON does not compile: " + err.Error())
	}
	compiled, err := c.Compile("ward-schema-document.json")
	if err != nil {
		panic("schema: metaSchemaJSON does not compile: " + err.Error())
	}
	metaSchema = compiled
}

// validateStructure checks raw against the schema-document meta-schema,
// independent of and prior to the typed decode. A failure here means the
// document is structurally malformed (*MalformedError), not merely
// semantically inconsistent.
func validateStructure(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &MalformedError{Cause: err}
	}
	if err := metaSchema.Validate(doc); err != nil {
		return &MalformedError{Cause: err}
	}
	return nil
}
