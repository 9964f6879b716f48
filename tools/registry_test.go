package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type echoTool struct{ name string }

func (t *echoTool) Name() string                 { return t.name }
func (t *echoTool) Description() string          { return "echo " + t.name }
func (t *echoTool) Category() Category           { return CategoryUtility }
func (t *echoTool) InputSchema() json.RawMessage { return json.RawMessage(`{"type": "object"}`) }

func (t *echoTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	ReportProgress(ctx, t.name+" running")
	return string(args), nil
}

type hintedTool struct{ echoTool }

func (t *hintedTool) Annotations() Annotations { return Annotations{ReadOnly: true} }
func (t *hintedTool) Prompt() PromptDescriptor { return PromptDescriptor{Description: "hinted"} }

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, n := range names {
		if err := reg.Register(&echoTool{name: n}); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := newTestRegistry(t, "a")
	err := reg.Register(&echoTool{name: "a"})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("Register() error = %v, want duplicate error", err)
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := newTestRegistry(t, "ping", "analyze", "help")
	if diff := cmp.Diff([]string{"analyze", "help", "ping"}, reg.List()); diff != "" {
		t.Errorf("List() mismatch:\n%s", diff)
	}
	if reg.Get("help") == nil || reg.Get("missing") != nil {
		t.Error("Get() returned unexpected result")
	}
}

func TestRegistry_Execute(t *testing.T) {
	reg := newTestRegistry(t, "a")

	var progress []string
	ctx := WithProgress(context.Background(), func(msg string) { progress = append(progress, msg) })
	out, err := reg.Execute(ctx, "a", json.RawMessage(`{"x":1}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != `{"x":1}` {
		t.Errorf("Execute() = %q", out)
	}
	if diff := cmp.Diff([]string{"a running"}, progress); diff != "" {
		t.Errorf("progress mismatch:\n%s", diff)
	}

	if _, err := reg.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("Execute() expected error for unknown tool")
	}
}

func TestRegistry_Filter(t *testing.T) {
	reg := newTestRegistry(t, "analyze", "ask-gemini", "ping")

	filtered := reg.Filter([]string{"analyze", "ping", "unknown"})
	if diff := cmp.Diff([]string{"analyze", "ping"}, filtered.List()); diff != "" {
		t.Errorf("Filter() mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(reg.List(), reg.Filter(nil).List()); diff != "" {
		t.Errorf("Filter(nil) should keep every tool:\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	plain := Describe(&echoTool{name: "plain"})
	if plain.Annotations.ReadOnly || !plain.Annotations.OpenWorld || plain.Prompt != nil {
		t.Errorf("plain descriptor = %+v", plain)
	}

	hinted := Describe(&hintedTool{echoTool{name: "hinted"}})
	if !hinted.Annotations.ReadOnly || hinted.Annotations.OpenWorld {
		t.Errorf("hinted annotations = %+v", hinted.Annotations)
	}
	if hinted.Prompt == nil || hinted.Prompt.Description != "hinted" {
		t.Errorf("hinted prompt = %+v", hinted.Prompt)
	}
}

func TestRegistry_Descriptors(t *testing.T) {
	reg := newTestRegistry(t, "b", "a")
	defs := reg.Descriptors()
	if len(defs) != 2 || defs[0].Name != "a" || defs[1].Name != "b" {
		t.Errorf("Descriptors() = %+v", defs)
	}
}

func TestProgress_NoFunc(t *testing.T) {
	if ProgressFromContext(context.Background()) != nil {
		t.Error("expected nil ProgressFunc")
	}
	ReportProgress(context.Background(), "ignored")
	if WithProgress(context.Background(), nil) != context.Background() {
		t.Error("WithProgress(nil) should return ctx unchanged")
	}
}
