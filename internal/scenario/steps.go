package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lorekeep/scenarist/internal/prompt"
	"github.com/lorekeep/scenarist/internal/provider"
)

// StepName identifies one unit of generation in the fixed catalog.
type StepName string

const (
	StepHooks           StepName = "hooks"
	StepAntagonist      StepName = "antagonist"
	StepWorldContext    StepName = "world_context"
	StepSynopsis        StepName = "synopsis"
	StepTitle           StepName = "title"
	StepListItems       StepName = "list_items"
	StepDetailNPC       StepName = "detail_npc"
	StepDetailLocation  StepName = "detail_location"
	StepOutlineScenes   StepName = "outline_scenes"
	StepDetailScene     StepName = "detail_scene"
	StepCoherenceReport StepName = "coherence_report"
	StepReviseScenes    StepName = "revise_scenes"
	StepCompile         StepName = "compile"
)

// Step declares one catalog entry: the context keys it needs present before
// it runs, whether it operates on a single named item, and how it binds
// inputs and context into its prompt.
type Step struct {
	Name     StepName
	Requires []Key
	PerItem  bool

	// OneShot steps run as single completions (their output is structured
	// or assembled, not worth streaming); prose steps stream in auto mode.
	OneShot bool

	bind func(in Inputs, gctx Context, item string) map[string]string
}

// steps is the fixed catalog. The task graph never varies at runtime, so the
// dependency order is expressed directly as required-key sets plus the
// ordered sequence the auto run follows.
var steps = map[StepName]Step{
	StepHooks: {
		Name: StepHooks,
		bind: func(in Inputs, _ Context, _ string) map[string]string {
			return in.Bindings()
		},
	},
	StepAntagonist: {
		Name:     StepAntagonist,
		Requires: []Key{KeyHook},
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return map[string]string{
				"selected_hook": gctx.Text(KeyHook),
			}
		},
	},
	StepWorldContext: {
		Name:     StepWorldContext,
		Requires: []Key{KeyHook, KeyAntagonist},
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return map[string]string{
				"selected_hook": gctx.Text(KeyHook),
				"antagonist":    gctx.Text(KeyAntagonist),
			}
		},
	},
	StepSynopsis: {
		// Runs from fixed inputs alone; earlier step outputs enrich the
		// prompt when present but are never required.
		Name: StepSynopsis,
		bind: func(in Inputs, gctx Context, _ string) map[string]string {
			b := in.Bindings()
			for key, ck := range map[string]Key{
				"selected_hook": KeyHook,
				"antagonist":    KeyAntagonist,
				"world_context": KeyWorldContext,
			} {
				if text := gctx.Text(ck); text != "" {
					b[key] = text
				}
			}
			return b
		},
	},
	StepTitle: {
		Name:     StepTitle,
		Requires: []Key{KeySynopsis},
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return map[string]string{"synopsis": gctx.Text(KeySynopsis)}
		},
	},
	StepListItems: {
		Name:     StepListItems,
		Requires: []Key{KeySynopsis},
		OneShot:  true,
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return map[string]string{"synopsis": gctx.Text(KeySynopsis)}
		},
	},
	StepDetailNPC: {
		Name:     StepDetailNPC,
		Requires: []Key{KeySynopsis},
		PerItem:  true,
		bind: func(_ Inputs, gctx Context, item string) map[string]string {
			return map[string]string{
				"synopsis": gctx.Text(KeySynopsis),
				"npc_name": item,
			}
		},
	},
	StepDetailLocation: {
		Name:     StepDetailLocation,
		Requires: []Key{KeySynopsis},
		PerItem:  true,
		bind: func(_ Inputs, gctx Context, item string) map[string]string {
			return map[string]string{
				"synopsis":      gctx.Text(KeySynopsis),
				"location_name": item,
			}
		},
	},
	StepOutlineScenes: {
		Name:     StepOutlineScenes,
		Requires: []Key{KeySynopsis, KeyDetailedNPCs, KeyDetailedLocations},
		OneShot:  true,
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return bindingsWithEntities(gctx, map[string]string{
				"synopsis": gctx.Text(KeySynopsis),
			})
		},
	},
	StepDetailScene: {
		Name:     StepDetailScene,
		Requires: []Key{KeySynopsis, KeyDetailedNPCs, KeyDetailedLocations, KeyDetailedScenes},
		PerItem:  true,
		bind: func(_ Inputs, gctx Context, item string) map[string]string {
			b := bindingsWithEntities(gctx, map[string]string{
				"synopsis":    gctx.Text(KeySynopsis),
				"scene_title": item,
			})
			// Earlier scenes keep later ones consistent with what was
			// already established.
			if sofar := gctx.Join(KeyDetailedScenes); sofar != "" {
				b["scenes_already_detailed"] = sofar
			}
			return b
		},
	},
	StepCoherenceReport: {
		Name:     StepCoherenceReport,
		Requires: []Key{KeySynopsis, KeyDetailedNPCs, KeyDetailedLocations, KeyDetailedScenes},
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return bindingsWithScenes(gctx, nil)
		},
	},
	StepReviseScenes: {
		Name:     StepReviseScenes,
		Requires: []Key{KeySynopsis, KeyDetailedNPCs, KeyDetailedLocations, KeyDetailedScenes, KeyCoherenceReport},
		OneShot:  true,
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return bindingsWithScenes(gctx, map[string]string{
				"coherence_report": gctx.Text(KeyCoherenceReport),
			})
		},
	},
	StepCompile: {
		Name:     StepCompile,
		Requires: []Key{KeyTitle, KeySynopsis, KeyDetailedNPCs, KeyDetailedLocations, KeyDetailedScenes},
		OneShot:  true,
		bind: func(_ Inputs, gctx Context, _ string) map[string]string {
			return bindingsWithScenes(gctx, map[string]string{
				"title": gctx.Text(KeyTitle),
			})
		},
	},
}

func bindingsWithEntities(gctx Context, b map[string]string) map[string]string {
	if b == nil {
		b = make(map[string]string)
	}
	if npcs := gctx.Join(KeyDetailedNPCs); npcs != "" {
		b["detailed_npcs"] = npcs
	}
	if locs := gctx.Join(KeyDetailedLocations); locs != "" {
		b["detailed_locations"] = locs
	}
	return b
}

func bindingsWithScenes(gctx Context, b map[string]string) map[string]string {
	b = bindingsWithEntities(gctx, b)
	b["synopsis"] = gctx.Text(KeySynopsis)
	if scenes := gctx.Join(KeyDetailedScenes); scenes != "" {
		b["detailed_scenes"] = scenes
	}
	return b
}

// Lookup returns the catalog entry for a step name.
func Lookup(name StepName) (Step, bool) {
	s, ok := steps[name]
	return s, ok
}

// StepNames returns every catalog step name in auto-run order, with the
// per-item and optional steps in their canonical positions.
func StepNames() []StepName {
	return []StepName{
		StepHooks, StepAntagonist, StepWorldContext, StepSynopsis,
		StepListItems, StepDetailNPC, StepDetailLocation,
		StepOutlineScenes, StepDetailScene,
		StepCoherenceReport, StepReviseScenes,
		StepTitle, StepCompile,
	}
}

// checkPreconditions returns the first missing required key, if any.
func (s Step) checkPreconditions(gctx Context) error {
	for _, key := range s.Requires {
		if !gctx.Has(key) {
			return &PreconditionError{Step: s.Name, Missing: key}
		}
	}
	return nil
}

// Prompt validates preconditions and renders the step's full instruction
// text. A BindingError here is a wiring defect, not bad model output, and is
// surfaced as-is.
func (s Step) Prompt(in Inputs, gctx Context, item string) (string, error) {
	if err := s.checkPreconditions(gctx); err != nil {
		return "", err
	}
	if s.PerItem && strings.TrimSpace(item) == "" {
		return "", fmt.Errorf("step %s: %w", s.Name, ErrMissingItem)
	}

	bindings := s.bind(in, gctx, item)
	bindings["language"] = in.language()
	return prompt.StepPrompt(string(s.Name), bindings)
}

// run executes the step as a one-shot completion and returns the cleaned
// output text.
func (s Step) run(ctx context.Context, model provider.Model, in Inputs, gctx Context, item string) (string, error) {
	text, err := s.Prompt(in, gctx, item)
	if err != nil {
		return "", err
	}

	out, err := model.Complete(ctx, []provider.Turn{{Role: provider.RoleUser, Content: text}})
	if err != nil {
		return "", &GenerationError{Step: s.Name, Err: err}
	}
	return CleanOutput(out), nil
}

// thinkingRe matches a reasoning scratchpad block some models prepend to
// their answer. It must be stripped before output enters the context, or the
// scaffolding would corrupt every downstream prompt.
var thinkingRe = regexp.MustCompile(`(?s)<think(?:ing)?>.*?</think(?:ing)?>`)

// CleanOutput strips thinking blocks and surrounding whitespace from raw
// model output. Applied to every step's output, streamed or not.
func CleanOutput(raw string) string {
	return strings.TrimSpace(thinkingRe.ReplaceAllString(raw, ""))
}

// SelectHook picks the hook used to seed later steps from the hooks step's
// output: the first blank-line-separated paragraph. This mirrors the source
// behavior and depends on the model honoring the requested formatting; a
// malformed response simply yields the whole text as one hook.
func SelectHook(hooks string) string {
	parts := strings.SplitN(strings.TrimSpace(hooks), "\n\n", 2)
	return strings.TrimSpace(parts[0])
}

// DeriveTitle reduces the title step's output to the final title: the first
// non-empty line, stripped of heading markers, quotes and emphasis.
func DeriveTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "# ")
		line = strings.Trim(line, `"'*`)
		if line != "" {
			return line
		}
	}
	return ""
}

// sceneBlockRe matches the horizontal-rule separator revise_scenes is asked
// to place between scene blocks.
var sceneBlockRe = regexp.MustCompile(`(?m)^\s*---+\s*$`)

// SplitSceneBlocks splits a full scene rewrite into per-scene blocks.
func SplitSceneBlocks(text string) []string {
	var blocks []string
	for _, part := range sceneBlockRe.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// Merge folds one step's cleaned output into the context, applying the
// step's produce semantics: detail steps append, revise_scenes wholesale
// replaces detailed_scenes, the JSON list steps decode into their raw-list
// keys, and everything else sets its single produced key. It returns the
// keys that changed.
func Merge(gctx Context, step StepName, output string) []Key {
	switch step {
	case StepHooks:
		gctx.Set(KeyHooks, TextValue(output))
		gctx.Set(KeyHook, TextValue(SelectHook(output)))
		return []Key{KeyHooks, KeyHook}

	case StepAntagonist:
		gctx.Set(KeyAntagonist, TextValue(output))
		return []Key{KeyAntagonist}

	case StepWorldContext:
		gctx.Set(KeyWorldContext, TextValue(output))
		return []Key{KeyWorldContext}

	case StepSynopsis:
		gctx.Set(KeySynopsis, TextValue(output))
		return []Key{KeySynopsis}

	case StepTitle:
		gctx.Set(KeyTitle, TextValue(DeriveTitle(output)))
		return []Key{KeyTitle}

	case StepListItems:
		list := DecodeEntityList(output)
		gctx.Set(KeyNPCsRaw, ListValue(list.NPCs))
		gctx.Set(KeyLocationsRaw, ListValue(list.Locations))
		keys := []Key{KeyNPCsRaw, KeyLocationsRaw}
		// An empty raw list means there is nothing to detail; mark the
		// detailed list present so later steps are not blocked on a loop
		// that never runs.
		if len(list.NPCs) == 0 && !gctx.Has(KeyDetailedNPCs) {
			gctx.Set(KeyDetailedNPCs, ListValue(nil))
			keys = append(keys, KeyDetailedNPCs)
		}
		if len(list.Locations) == 0 && !gctx.Has(KeyDetailedLocations) {
			gctx.Set(KeyDetailedLocations, ListValue(nil))
			keys = append(keys, KeyDetailedLocations)
		}
		return keys

	case StepDetailNPC:
		gctx.Append(KeyDetailedNPCs, output)
		return []Key{KeyDetailedNPCs}

	case StepDetailLocation:
		gctx.Append(KeyDetailedLocations, output)
		return []Key{KeyDetailedLocations}

	case StepOutlineScenes:
		gctx.Set(KeyScenesRaw, ListValue(DecodeSceneList(output)))
		keys := []Key{KeyScenesRaw}
		// Seed the detailed-scene list here so the first detail_scene
		// invocation sees its required key present, in single-step mode as
		// much as in an auto run.
		if !gctx.Has(KeyDetailedScenes) {
			gctx.Set(KeyDetailedScenes, ListValue(nil))
			keys = append(keys, KeyDetailedScenes)
		}
		return keys

	case StepDetailScene:
		gctx.Append(KeyDetailedScenes, output)
		return []Key{KeyDetailedScenes}

	case StepCoherenceReport:
		gctx.Set(KeyCoherenceReport, TextValue(output))
		return []Key{KeyCoherenceReport}

	case StepReviseScenes:
		blocks := SplitSceneBlocks(output)
		if want := len(gctx.List(KeyDetailedScenes)); len(blocks) != want {
			slog.Warn("scene revision block count differs from original",
				"got", len(blocks), "want", want)
		}
		gctx.Set(KeyDetailedScenes, ListValue(blocks))
		return []Key{KeyDetailedScenes}

	case StepCompile:
		gctx.Set(KeyDocument, TextValue(output))
		return []Key{KeyDocument}
	}
	return nil
}
