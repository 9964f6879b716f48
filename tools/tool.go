// Package tools provides the tool plugin system for gemini-bridge.
// Tools are capabilities an MCP client can invoke. Most of them forward
// a prompt to the gemini CLI through an Executor.
package tools

import (
	"context"
	"encoding/json"
)

// Category classifies tools by their source/purpose.
type Category string

const (
	CategoryGemini  Category = "gemini"
	CategoryUtility Category = "utility"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Name returns the unique tool name.
	Name() string
	// Description returns a human-readable description of the tool.
	Description() string
	// Category returns the tool's category.
	Category() Category
	// InputSchema returns the JSON Schema for the tool's input parameters.
	InputSchema() json.RawMessage
	// Execute runs the tool with the given JSON arguments.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Annotations are behavior hints advertised to MCP clients.
type Annotations struct {
	ReadOnly    bool
	Destructive bool
	OpenWorld   bool
}

// Annotated is implemented by tools that advertise behavior hints.
type Annotated interface {
	Annotations() Annotations
}

// PromptDescriptor describes the MCP prompt that accompanies a tool.
type PromptDescriptor struct {
	Description string
}

// Prompter is implemented by tools that are also exposed as MCP prompts.
type Prompter interface {
	Prompt() PromptDescriptor
}

// Descriptor is a flattened, serializable view of a Tool.
type Descriptor struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    Category          `json:"category"`
	InputSchema json.RawMessage   `json:"inputSchema"`
	Annotations Annotations       `json:"annotations"`
	Prompt      *PromptDescriptor `json:"prompt,omitempty"`
}

// Describe converts a Tool to a Descriptor. Tools without annotations are
// reported as not read-only and open-world, matching MCP defaults.
func Describe(t Tool) Descriptor {
	d := Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Category:    t.Category(),
		InputSchema: t.InputSchema(),
		Annotations: Annotations{OpenWorld: true},
	}
	if a, ok := t.(Annotated); ok {
		d.Annotations = a.Annotations()
	}
	if p, ok := t.(Prompter); ok {
		prompt := p.Prompt()
		d.Prompt = &prompt
	}
	return d
}
