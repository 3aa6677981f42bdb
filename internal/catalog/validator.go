package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"catalog-browser/internal/common/errors"
)

// entitySchemas holds the JSON schema for each entity type. Schemas are
// expressed as Go maps and compiled once at construction.
var entitySchemas = map[string]map[string]interface{}{
	TypeVillager: {
		"type": "object",
		"properties": map[string]interface{}{
			"id":   map[string]interface{}{"type": "string", "minLength": 1},
			"name": map[string]interface{}{"type": "string", "minLength": 1},
			"gender": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"male", "female"},
			},
			"species":  map[string]interface{}{"type": "string", "minLength": 1},
			"birthday": map[string]interface{}{"type": "string", "pattern": "^\\d{2}-\\d{2}$"},
			"games": map[string]interface{}{
				"type": "object",
				"additionalProperties": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"personality": map[string]interface{}{"type": "string"},
						"clothes":     map[string]interface{}{"type": "string"},
						"phrase":      map[string]interface{}{"type": "string"},
					},
				},
			},
		},
		"required": []interface{}{"id", "name", "gender", "species", "games"},
	},
	TypeItem: {
		"type": "object",
		"definitions": map[string]interface{}{
			"price": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"currency": map[string]interface{}{"type": "string"},
					"value":    map[string]interface{}{"type": "integer"},
				},
				"additionalProperties": false,
			},
		},
		"properties": map[string]interface{}{
			"id":       map[string]interface{}{"type": "string", "minLength": 1},
			"name":     map[string]interface{}{"type": "string", "minLength": 1},
			"category": map[string]interface{}{"type": "string"},
			"games": map[string]interface{}{
				"type": "object",
				"additionalProperties": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"orderable": map[string]interface{}{"type": "boolean"},
						"sources": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"sellPrice": map[string]interface{}{"$ref": "#/definitions/price"},
						"buyPrices": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"$ref": "#/definitions/price"},
						},
					},
				},
			},
		},
		"required": []interface{}{"id", "name", "games"},
	},
}

// Validator checks catalog entities against their type's schema before
// they are admitted to the index.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the entity schemas.
func NewValidator() (*Validator, error) {
	compiled := make(map[string]*gojsonschema.Schema, len(entitySchemas))
	for entityType, schemaMap := range entitySchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", entityType, err)
		}
		compiled[entityType] = schema
	}
	return &Validator{schemas: compiled}, nil
}

// Validate checks entity against the schema for entityType. Violations are
// reported as a single document-invalid error listing every failure.
func (v *Validator) Validate(entityType string, entity map[string]interface{}) error {
	schema, ok := v.schemas[entityType]
	if !ok {
		return errors.NewDocumentInvalidError(documentID(entity), fmt.Sprintf("unknown entity type %q", entityType))
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(entity))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewDocumentInvalidError(documentID(entity), strings.Join(errs, "; "))
	}

	return nil
}

func documentID(entity map[string]interface{}) string {
	if id, ok := entity["id"].(string); ok && id != "" {
		return id
	}
	return "unknown"
}
