package scenario

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestContext_HasCountsEmptyList(t *testing.T) {
	gctx := make(Context)

	if gctx.Has(KeyDetailedNPCs) {
		t.Error("empty context should not have detailed_npcs")
	}

	gctx.Set(KeyDetailedNPCs, ListValue(nil))
	if !gctx.Has(KeyDetailedNPCs) {
		t.Error("a present empty list must satisfy Has")
	}
	if got := gctx.List(KeyDetailedNPCs); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestContext_AppendAndJoin(t *testing.T) {
	gctx := make(Context)
	gctx.Append(KeyDetailedNPCs, "sheet one")
	gctx.Append(KeyDetailedNPCs, "sheet two")

	want := []string{"sheet one", "sheet two"}
	if got := gctx.List(KeyDetailedNPCs); !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
	if got := gctx.Join(KeyDetailedNPCs); got != "sheet one\n\nsheet two" {
		t.Errorf("Join = %q", got)
	}
}

func TestContext_CloneIsIndependent(t *testing.T) {
	gctx := make(Context)
	gctx.Set(KeySynopsis, TextValue("original"))
	gctx.Append(KeyDetailedScenes, "scene one")

	clone := gctx.Clone()
	clone.Set(KeySynopsis, TextValue("changed"))
	clone.Append(KeyDetailedScenes, "scene two")

	if gctx.Text(KeySynopsis) != "original" {
		t.Error("clone mutation leaked into the original text value")
	}
	if got := gctx.List(KeyDetailedScenes); len(got) != 1 || got[0] != "scene one" {
		t.Errorf("clone mutation leaked into the original list: %v", got)
	}
}

func TestContext_JSONRoundTripKeepsEmptyListPresence(t *testing.T) {
	gctx := make(Context)
	gctx.Set(KeySynopsis, TextValue("a synopsis"))
	gctx.Set(KeyDetailedNPCs, ListValue(nil))
	gctx.Set(KeyDetailedScenes, ListValue([]string{"s1", "s2"}))

	data, err := json.Marshal(gctx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := make(Context)
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !restored.Has(KeyDetailedNPCs) {
		t.Error("empty list presence lost across the JSON round trip")
	}
	if restored.Text(KeySynopsis) != "a synopsis" {
		t.Errorf("synopsis = %q", restored.Text(KeySynopsis))
	}
	if got := restored.List(KeyDetailedScenes); !reflect.DeepEqual(got, []string{"s1", "s2"}) {
		t.Errorf("detailed_scenes = %v", got)
	}
}

func TestContext_KeysSorted(t *testing.T) {
	gctx := make(Context)
	gctx.Set(KeySynopsis, TextValue("s"))
	gctx.Set(KeyAntagonist, TextValue("a"))
	gctx.Set(KeyHook, TextValue("h"))

	want := []Key{KeyAntagonist, KeyHook, KeySynopsis}
	if got := gctx.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}
