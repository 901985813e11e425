package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMockModel_FixedResponse(t *testing.T) {
	m := NewMockModel("canned")

	out, err := m.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "anything"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "canned" {
		t.Errorf("out = %q", out)
	}
	if m.LastPrompt() != "anything" {
		t.Errorf("LastPrompt = %q", m.LastPrompt())
	}
}

func TestMockModel_LongestRuleWins(t *testing.T) {
	m := &MockModel{
		Response: "fallback",
		Rules: map[string]string{
			"scene":          "short match",
			"detailed scene": "long match",
		},
	}

	out, err := m.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "write a detailed scene now"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "long match" {
		t.Errorf("out = %q", out)
	}

	out, _ = m.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "no rule applies"}})
	if out != "fallback" {
		t.Errorf("fallback out = %q", out)
	}
}

func TestMockModel_Error(t *testing.T) {
	sentinel := errors.New("down")
	m := NewMockModelWithError(sentinel)

	if _, err := m.Complete(context.Background(), []Turn{{Role: RoleUser, Content: "x"}}); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	stream, err := m.Stream(context.Background(), []Turn{{Role: RoleUser, Content: "x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunk, ok := <-stream
	if !ok || !errors.Is(chunk.Err, sentinel) {
		t.Fatalf("expected an error chunk, got %+v (open=%v)", chunk, ok)
	}
	if _, ok := <-stream; ok {
		t.Error("stream not closed after the error chunk")
	}
}

func TestMockModel_StreamReassembles(t *testing.T) {
	m := NewMockModel("one two three")

	stream, err := m.Stream(context.Background(), []Turn{{Role: RoleUser, Content: "x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var b strings.Builder
	count := 0
	for chunk := range stream {
		if chunk.Err != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Err)
		}
		b.WriteString(chunk.Text)
		count++
	}

	if b.String() != "one two three" {
		t.Errorf("reassembled = %q", b.String())
	}
	if count < 2 {
		t.Errorf("expected multiple fragments, got %d", count)
	}
}

func TestMockModel_RecordsPromptsInOrder(t *testing.T) {
	m := NewMockModel("ok")
	for _, p := range []string{"first", "second", "third"} {
		if _, err := m.Complete(context.Background(), []Turn{{Role: RoleUser, Content: p}}); err != nil {
			t.Fatal(err)
		}
	}

	prompts := m.Prompts()
	if len(prompts) != 3 || prompts[0] != "first" || prompts[2] != "third" {
		t.Errorf("prompts = %v", prompts)
	}
}
