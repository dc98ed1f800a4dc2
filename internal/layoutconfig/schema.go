package layoutconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

// ConfigurationJSONSchema describes the exchange shape of a configuration.
// Either the nested "records" or the flattened "fields" view must be present.
func ConfigurationJSONSchema() map[string]any {
	position := map[string]any{"type": "integer", "minimum": 1, "maximum": 400}
	format := map[string]any{"type": "string", "enum": []string{"", "text", "currency_cents", "date_ddmmyy", "date_ddmmyyyy"}}

	field := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":           map[string]any{"type": "string", "minLength": 1},
			"start":          position,
			"end":            position,
			"format":         format,
			"destination":    map[string]any{"type": "string"},
			"used_in_output": map[string]any{"type": "boolean"},
			"color":          map[string]any{"type": "string"},
			"example":        map[string]any{"type": "string"},
		},
		"required": []string{"name", "start", "end"},
	}
	legacy := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"record_type":    map[string]any{"type": "string"},
			"name":           map[string]any{"type": "string", "minLength": 1},
			"start":          position,
			"end":            position,
			"format":         format,
			"destination":    map[string]any{"type": "string"},
			"used_in_output": map[string]any{"type": "boolean"},
			"color":          map[string]any{"type": "string"},
		},
		"required": []string{"name", "start", "end"},
	}
	record := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":    map[string]any{"type": "string", "minLength": 1},
			"code":    map[string]any{"type": "string"},
			"segment": map[string]any{"type": "string", "maxLength": 1},
			"fields":  map[string]any{"type": "array", "items": field},
		},
		"required": []string{"type", "fields"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bank_id":     map[string]any{"type": "string", "minLength": 1},
			"kind":        map[string]any{"type": "string", "enum": []string{"240", "400"}},
			"name":        map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"is_default":  map[string]any{"type": "boolean"},
			"records":     map[string]any{"type": "array", "items": record},
			"fields":      map[string]any{"type": "array", "items": legacy},
		},
		"required": []string{"bank_id", "kind", "name"},
		"anyOf": []any{
			map[string]any{"required": []string{"records"}},
			map[string]any{"required": []string{"fields"}},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Decode validates raw JSON against the configuration schema, decodes it and
// checks field positions. Nested configurations get their legacy view
// re-projected so both views agree.
func Decode(data []byte) (*entity.LayoutConfiguration, error) {
	if err := ValidateJSONAgainstSchema(ConfigurationJSONSchema(), data); err != nil {
		return nil, common.NewAppError("INVALID_CONFIGURATION", "configuration json rejected", errors.Join(common.ErrValidation, err))
	}
	var cfg entity.LayoutConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, common.NewAppError("INVALID_CONFIGURATION", "decode configuration", errors.Join(common.ErrInvalidInput, err))
	}
	if len(cfg.Records) > 0 {
		cfg.LegacyFields = entity.Project(cfg.Records)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
