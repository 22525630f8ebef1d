package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Scalar fields the narrative backend reports. Dates are YYYY-MM-DD strings.
var narrativeScalars = []string{
	"belge_turu", "kurum", "ihale_turu", "ihale_tarihi", "teklif_son_tarih",
	"ise_baslama_tarih", "gun_sayisi", "kisi_sayisi", "ogun_sayisi",
	"tahmini_butce", "teslim_suresi", "dagitim_yontemi",
}

var narrativeLists = []string{
	"ozel_sartlar", "riskler", "sertifikasyon_etiketleri", "ornek_menu_basliklari",
}

var (
	nullableString = map[string]any{"type": []any{"string", "null"}}
	nullableScalar = map[string]any{"type": []any{"string", "number", "boolean", "null"}}
	stringList     = map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": []any{"string", "number"}}}
	confidence     = map[string]any{"type": []any{"number", "null"}}
)

func narrativeSchemaMap() map[string]any {
	props := map[string]any{
		"belge_turu_guven": confidence,
		"guven_skoru":      confidence,
		"veri_havuzu": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"ham_metin": nullableString,
				"kaynaklar": map[string]any{
					"type": []any{"object", "null"},
					"additionalProperties": map[string]any{
						"type": []any{"object", "string", "null"},
					},
				},
			},
		},
	}
	for _, f := range narrativeScalars {
		props[f] = nullableScalar
	}
	for _, f := range narrativeLists {
		props[f] = stringList
	}
	return map[string]any{"type": "object", "properties": props}
}

func tableSchemaMap() map[string]any {
	cell := map[string]any{"type": []any{"string", "number", "null"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tablolar": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"baslik":       nullableString,
						"headers":      map[string]any{"type": []any{"array", "null"}, "items": cell},
						"rows":         map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "array", "items": cell}},
						"satir_sayisi": map[string]any{"type": []any{"number", "null"}},
						"guven":        confidence,
						"icerik":       nullableString,
					},
				},
			},
		},
	}
}

func classifierSchemaMap() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"categories": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
}

var (
	narrativeSchema  = mustCompile(narrativeSchemaMap())
	tableSchema      = mustCompile(tableSchemaMap())
	classifierSchema = mustCompile(classifierSchemaMap())
)

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	s, err := compileSchema(schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// validatePayload checks that payload carries at least one of the
// required keys and that every present key has the expected shape.
// A payload with none of the keys is ErrMissingPayload.
func validatePayload(schema *jsonschema.Schema, payload map[string]any, required ...string) error {
	found := false
	for _, k := range required {
		if _, ok := payload[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return ErrMissingPayload
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadShape, err)
	}
	return nil
}
