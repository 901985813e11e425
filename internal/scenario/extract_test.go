package scenario

import (
	"reflect"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "well-formed object passes through",
			raw:  `{"npcs": ["A"], "locations": ["B"]}`,
			want: `{"npcs": ["A"], "locations": ["B"]}`,
		},
		{
			name: "json code fence",
			raw:  "Here you go:\n```json\n{\"npcs\": [\"A\"]}\n```\nHope that helps!",
			want: `{"npcs": ["A"]}`,
		},
		{
			name: "uppercase fence label",
			raw:  "```JSON\n{\"scenes\": [\"S1\"]}\n```",
			want: `{"scenes": ["S1"]}`,
		},
		{
			name: "mixed-case fence label",
			raw:  "```Json\n{\"scenes\": [\"S1\"]}\n```",
			want: `{"scenes": ["S1"]}`,
		},
		{
			name: "surrounding prose",
			raw:  `Sure! The lists are {"npcs": ["A"]} as requested.`,
			want: `{"npcs": ["A"]}`,
		},
		{
			name: "trailing comma repaired",
			raw:  `{"npcs": ["A", "B",], "locations": ["C",],}`,
			want: `{"npcs": ["A", "B"], "locations": ["C"]}`,
		},
		{
			name: "no braces degrades to empty object",
			raw:  "I could not produce a list, sorry.",
			want: "{}",
		},
		{
			name: "unrecoverable garbage degrades to empty object",
			raw:  `{"npcs": [unquoted, names]}`,
			want: "{}",
		},
		{
			name: "empty input",
			raw:  "",
			want: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONObject(tt.raw)
			if got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeEntityList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want EntityList
	}{
		{
			name: "plain object",
			raw:  `{"npcs": ["Aldous", "Mara"], "locations": ["Lighthouse"]}`,
			want: EntityList{NPCs: []string{"Aldous", "Mara"}, Locations: []string{"Lighthouse"}},
		},
		{
			name: "fenced with prose",
			raw:  "The lists:\n```json\n{\"npcs\": [\"Aldous\"], \"locations\": []}\n```",
			want: EntityList{NPCs: []string{"Aldous"}, Locations: []string{}},
		},
		{
			name: "duplicates dropped, order kept",
			raw:  `{"npcs": ["A", "B", "A"], "locations": ["X", " X ", "Y"]}`,
			want: EntityList{NPCs: []string{"A", "B"}, Locations: []string{"X", "Y"}},
		},
		{
			name: "blank entries dropped",
			raw:  `{"npcs": ["A", "", "  "], "locations": []}`,
			want: EntityList{NPCs: []string{"A"}, Locations: []string{}},
		},
		{
			name: "malformed output degrades to empty lists",
			raw:  "no json at all here",
			want: EntityList{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeEntityList(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeEntityList(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeSceneList(t *testing.T) {
	got := DecodeSceneList(`Scenes below.
` + "```json" + `
{"scenes": ["Arrival", "Descent", "Arrival",]}
` + "```")
	want := []string{"Arrival", "Descent"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeSceneList = %v, want %v", got, want)
	}

	if got := DecodeSceneList("nothing usable"); len(got) != 0 {
		t.Errorf("expected empty scene list for garbage, got %v", got)
	}
}
