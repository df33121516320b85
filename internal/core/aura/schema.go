package aura

// Field describes one required property of the reading.
type Field struct {
	Name        string
	Description string
	HexColor    bool
}

// Fields lists the required properties in the order the model should emit
// them.
var Fields = []Field{
	{Name: "primaryColor", Description: "A hex color code representing the dominant energy (e.g. #FF5733).", HexColor: true},
	{Name: "secondaryColor", Description: "A hex color code for the supporting energy.", HexColor: true},
	{Name: "accentColor", Description: "A hex color code for the spark or highlight.", HexColor: true},
	{Name: "auraName", Description: "A creative, mystical name for this specific vibe (e.g. 'Neon Melancholy', 'Solar Punk Warrior')."},
	{Name: "description", Description: "A two-sentence poetic and witty reading of the vibe based on the image."},
	{Name: "emoji", Description: "A single emoji that captures the mood."},
	{Name: "playlistName", Description: "A made-up title for a streaming playlist that matches this mood."},
}

// Instruction is the text part sent alongside the image.
const Instruction = "Analyze this image to detect its 'vibe', emotional aura, and aesthetic energy. " +
	"Be creative, slightly mystical, yet modern and cool. Keep it concise. " +
	"Return strictly valid JSON that matches the response schema."

// DefaultTemperature favours creative phrasing over repeatable output.
const DefaultTemperature = 1.2

const hexPattern = `^\s*#?([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})\s*$`

// FieldNames returns the required property names.
func FieldNames() []string {
	names := make([]string, 0, len(Fields))
	for _, f := range Fields {
		names = append(names, f.Name)
	}
	return names
}

// JSONSchema returns the draft-07 schema replies are validated against.
// Colors may omit the leading '#' or carry stray whitespace; Normalize
// cleans both up afterwards.
func JSONSchema() map[string]any {
	properties := make(map[string]any, len(Fields))
	for _, f := range Fields {
		prop := map[string]any{
			"type":        "string",
			"description": f.Description,
			"minLength":   1,
		}
		if f.HexColor {
			prop["pattern"] = hexPattern
		}
		properties[f.Name] = prop
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
		"required":   toAnySlice(FieldNames()),
	}
}

// ResponseSchema returns the contract in the dialect accepted by the
// generateContent responseSchema field.
func ResponseSchema() map[string]any {
	properties := make(map[string]any, len(Fields))
	for _, f := range Fields {
		properties[f.Name] = map[string]any{
			"type":        "STRING",
			"description": f.Description,
		}
	}
	return map[string]any{
		"type":             "OBJECT",
		"properties":       properties,
		"required":         FieldNames(),
		"propertyOrdering": FieldNames(),
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
