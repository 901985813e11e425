package scenario

import (
	"sort"
	"strings"
)

// Key names one logical step output in the generation context.
type Key string

const (
	KeyHooks             Key = "hooks"
	KeyHook              Key = "hook"
	KeyAntagonist        Key = "antagonist"
	KeyWorldContext      Key = "world_context"
	KeySynopsis          Key = "synopsis"
	KeyTitle             Key = "title"
	KeyNPCsRaw           Key = "npcs_raw"
	KeyLocationsRaw      Key = "locations_raw"
	KeyDetailedNPCs      Key = "detailed_npcs"
	KeyDetailedLocations Key = "detailed_locations"
	KeyScenesRaw         Key = "scenes_raw"
	KeyDetailedScenes    Key = "detailed_scenes"
	KeyCoherenceReport   Key = "coherence_report"
	KeyDocument          Key = "document"
)

// Value is one context entry: either a single text block or an ordered list
// of text blocks. Exactly one of the two forms is meaningful per key.
type Value struct {
	Text string   `json:"text,omitempty"`
	List []string `json:"list,omitempty"`

	// isList distinguishes an empty list from an unset text value after a
	// JSON round trip, where both serialize to nothing.
	IsList bool `json:"is_list,omitempty"`
}

// TextValue wraps a single text block.
func TextValue(text string) Value { return Value{Text: text} }

// ListValue wraps an ordered list of text blocks. An empty list is a
// legitimate, present value.
func ListValue(items []string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{List: items, IsList: true}
}

// Context is the accumulating key-to-value mapping threaded between steps.
// It grows strictly monotonically: keys are never removed, and only
// detailed_scenes may be wholesale replaced (by the revision step). The
// caller driving a run owns its persistence; the core holds no session state.
type Context map[Key]Value

// Has reports whether key is present. A present empty list counts.
func (c Context) Has(key Key) bool {
	_, ok := c[key]
	return ok
}

// Text returns the text form of key, or "" if absent.
func (c Context) Text(key Key) string { return c[key].Text }

// List returns the list form of key, or nil if absent.
func (c Context) List(key Key) []string { return c[key].List }

// Join returns the list form of key joined into one prompt-ready block.
func (c Context) Join(key Key) string {
	return strings.Join(c[key].List, "\n\n")
}

// Set stores a value under key.
func (c Context) Set(key Key, v Value) { c[key] = v }

// Append adds one block to the list under key, creating the list if needed.
func (c Context) Append(key Key, block string) {
	v := c[key]
	v.List = append(v.List, block)
	v.IsList = true
	c[key] = v
}

// Clone returns an independent copy of the context.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		if v.IsList {
			v.List = append([]string(nil), v.List...)
		}
		out[k] = v
	}
	return out
}

// Keys returns the present keys, sorted.
func (c Context) Keys() []Key {
	keys := make([]Key, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
