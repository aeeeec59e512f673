package api

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request bodies are validated against JSON Schemas before any engine
// code sees them, so malformed input is rejected at the edge with a
// message naming the offending field.

const actionSchemaJSON = `{
	"type": "object",
	"required": ["token", "action"],
	"properties": {
		"token": {"type": "string", "minLength": 1},
		"action": {
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"enum": ["move", "speak", "work"]},
				"target": {"type": "string"},
				"message": {"type": "string", "maxLength": 500}
			}
		}
	}
}`

const registerSchemaJSON = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 64},
		"role": {"type": "string", "maxLength": 32}
	}
}`

var (
	actionSchema   = jsonschema.MustCompileString("action.json", actionSchemaJSON)
	registerSchema = jsonschema.MustCompileString("register.json", registerSchemaJSON)
)

// validate runs a decoded body against a schema, flattening the error
// into one line.
func validate(schema *jsonschema.Schema, doc any) error {
	if err := schema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
			if loc == "" {
				loc = "body"
			}
			return fmt.Errorf("%s: %s", loc, leaf.Message)
		}
		return err
	}
	return nil
}
