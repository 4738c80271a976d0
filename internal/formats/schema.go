package formats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// OrderJSONSchema returns the JSON-Schema every normalized order satisfies.
func OrderJSONSchema() map[string]any {
	address := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"street_address": nonEmpty(),
			"city":           minLen(2),
			"postal_code":    nonEmpty(),
			"country":        nonEmpty(),
		},
		"required": []string{"street_address", "city", "postal_code", "country"},
	}
	party := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"company":        minLen(2),
			"company_code":   stringProp(),
			"vat_code":       stringProp(),
			"email":          stringProp(),
			"contact_person": stringProp(),
			"address":        address,
		},
		"required": []string{"company", "company_code", "vat_code", "email", "contact_person", "address"},
	}
	timestamp := map[string]any{
		"type":    "string",
		"pattern": `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`,
	}
	location := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"company_address": party,
			"time": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"datetime_from": timestamp,
					"datetime_to":   timestamp,
				},
				"required": []string{"datetime_from", "datetime_to"},
			},
		},
		"required": []string{"company_address", "time"},
	}
	cargo := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":         nonEmpty(),
			"weight":        map[string]any{"type": "number", "minimum": 0},
			"package_count": map[string]any{"type": "integer", "minimum": 1},
			"package_type":  stringProp(),
		},
		"required": []string{"title", "weight", "package_count", "package_type"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                    stringProp(),
			"order_reference":       nonEmpty(),
			"customer":              party,
			"loading_locations":     map[string]any{"type": "array", "minItems": 1, "items": location},
			"destination_locations": map[string]any{"type": "array", "minItems": 1, "items": location},
			"cargos":                map[string]any{"type": "array", "minItems": 1, "items": cargo},
			"freight_price":         map[string]any{"type": "number", "minimum": 0},
			"freight_currency":      map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
			"attachment_filenames":  map[string]any{"type": "array", "items": stringProp()},
		},
		"required": []string{
			"order_reference", "customer", "loading_locations",
			"destination_locations", "cargos", "attachment_filenames",
		},
	}
}

func stringProp() map[string]any { return map[string]any{"type": "string"} }
func nonEmpty() map[string]any   { return minLen(1) }
func minLen(n int) map[string]any {
	return map[string]any{"type": "string", "minLength": n}
}

// OrderValidator validates orders against a compiled schema.
type OrderValidator struct {
	schema *jsonschema.Schema
}

// NewOrderValidator compiles OrderJSONSchema.
func NewOrderValidator() (*OrderValidator, error) {
	b, err := json.Marshal(OrderJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("order.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("order.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &OrderValidator{schema: schema}, nil
}

// Validate reports whether o matches the schema.
func (v *OrderValidator) Validate(o *entity.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal order: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("order does not match schema: %w", err)
	}
	return nil
}
