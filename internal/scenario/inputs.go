// Package scenario implements the multi-step generation pipeline: a fixed
// catalog of generation steps with declared context dependencies, a strictly
// sequential orchestrator with a streaming auto mode and a resumable
// single-step mode, and best-effort extraction of structured output from
// free-form model text.
package scenario

import "strings"

// Inputs are the caller-supplied fixed facts for one generation run. They are
// immutable for the duration of the run; every step may read any subset.
// The caller is responsible for sanitizing these values before the run.
type Inputs struct {
	GameSystem      string `json:"game_system"`
	PlayerCount     string `json:"player_count"`
	ThemeTone       string `json:"theme_tone"`
	CoreIdea        string `json:"core_idea"`
	Constraints     string `json:"constraints"`
	KeyElements     string `json:"key_elements"`
	ElementsToAvoid string `json:"elements_to_avoid"`

	// Language is the target output language, e.g. "English" or "French".
	Language string `json:"language"`
}

// DefaultLanguage applies when the caller supplies no language.
const DefaultLanguage = "English"

// Bindings returns the non-empty input fields as prompt bindings. Absent and
// "not specified" values are dropped so prompts stay terse.
func (in Inputs) Bindings() map[string]string {
	fields := map[string]string{
		"game_system":       in.GameSystem,
		"player_count":      in.PlayerCount,
		"theme_tone":        in.ThemeTone,
		"core_idea":         in.CoreIdea,
		"constraints":       in.Constraints,
		"key_elements":      in.KeyElements,
		"elements_to_avoid": in.ElementsToAvoid,
	}

	b := make(map[string]string)
	for k, v := range fields {
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "not specified") {
			continue
		}
		b[k] = v
	}
	return b
}

// language returns the target language, defaulted.
func (in Inputs) language() string {
	if strings.TrimSpace(in.Language) == "" {
		return DefaultLanguage
	}
	return in.Language
}
