package scenario

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

var (
	jsonFenceRe     = regexp.MustCompile("(?si)```json\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// ExtractJSONObject recovers a single JSON object from free-form model text.
// It tries, in order: the contents of a json-labeled code fence, then the
// substring from the first { to the last }, then repairs trailing commas.
// If nothing decodable remains it returns "{}" rather than failing: malformed
// model output must degrade to "no items found", not abort the pipeline.
func ExtractJSONObject(raw string) string {
	text := raw

	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "{}"
	}
	text = text[start : end+1]

	text = trailingCommaRe.ReplaceAllString(text, "$1")

	if !json.Valid([]byte(text)) {
		return "{}"
	}
	return text
}

// EntityList is the decoded result of the list_items step: the major NPCs and
// important locations implied by the synopsis. Either list may be empty.
type EntityList struct {
	NPCs      []string `json:"npcs"`
	Locations []string `json:"locations"`
}

// DecodeEntityList extracts and decodes the entity lists from raw model text.
// Decoding failure degrades to empty lists with a warning; duplicates within
// a list are dropped, preserving first-seen order.
func DecodeEntityList(raw string) EntityList {
	extracted := ExtractJSONObject(raw)

	var list EntityList
	if err := json.Unmarshal([]byte(extracted), &list); err != nil {
		slog.Warn("entity list extraction degraded", "error", err)
		return EntityList{}
	}
	list.NPCs = dedupe(list.NPCs)
	list.Locations = dedupe(list.Locations)
	return list
}

// sceneList is the decoded result of the outline_scenes step.
type sceneList struct {
	Scenes []string `json:"scenes"`
}

// DecodeSceneList extracts and decodes the ordered scene titles from raw
// model text, degrading to an empty list on failure.
func DecodeSceneList(raw string) []string {
	extracted := ExtractJSONObject(raw)

	var list sceneList
	if err := json.Unmarshal([]byte(extracted), &list); err != nil {
		slog.Warn("scene list extraction degraded", "error", err)
		return nil
	}
	return dedupe(list.Scenes)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
