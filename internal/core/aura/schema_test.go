package aura

import "testing"

func TestJSONSchemaRequiresEveryField(t *testing.T) {
	t.Parallel()

	schemaMap := JSONSchema()

	required, ok := schemaMap["required"].([]any)
	if !ok {
		t.Fatalf("expected required list to be present")
	}
	if len(required) != 7 {
		t.Fatalf("expected 7 required fields, got %d", len(required))
	}

	properties, ok := schemaMap["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected schema properties to be present")
	}
	for _, name := range FieldNames() {
		value, ok := properties[name].(map[string]any)
		if !ok {
			t.Fatalf("expected %s property to be defined", name)
		}
		if typ, _ := value["type"].(string); typ != "string" {
			t.Fatalf("expected %s to be a string, got %q", name, typ)
		}
	}

	primary := properties["primaryColor"].(map[string]any)
	if _, ok := primary["pattern"].(string); !ok {
		t.Fatalf("expected primaryColor to carry a hex pattern")
	}
}

func TestResponseSchemaUsesGenerateContentDialect(t *testing.T) {
	t.Parallel()

	schemaMap := ResponseSchema()
	if schemaMap["type"] != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %v", schemaMap["type"])
	}
	ordering, ok := schemaMap["propertyOrdering"].([]string)
	if !ok || len(ordering) != len(Fields) {
		t.Fatalf("expected propertyOrdering for every field, got %#v", schemaMap["propertyOrdering"])
	}
	if ordering[0] != "primaryColor" || ordering[6] != "playlistName" {
		t.Fatalf("unexpected ordering: %v", ordering)
	}
	properties := schemaMap["properties"].(map[string]any)
	emoji := properties["emoji"].(map[string]any)
	if emoji["type"] != "STRING" {
		t.Fatalf("expected STRING emoji, got %v", emoji["type"])
	}
}
