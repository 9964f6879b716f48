package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/initializ/gemini-bridge/gemini"
	"github.com/initializ/gemini-bridge/tools"
)

type askGeminiTool struct {
	executor tools.Executor
}

type askGeminiInput struct {
	Prompt     string `json:"prompt"`
	Model      string `json:"model,omitempty"`
	Sandbox    bool   `json:"sandbox,omitempty"`
	ChangeMode bool   `json:"changeMode,omitempty"`
}

// NewAskGeminiTool creates the general-purpose ask-gemini tool, which unlike
// analyze can run the CLI sandboxed and request structured edits.
func NewAskGeminiTool(executor tools.Executor) tools.Tool {
	return &askGeminiTool{executor: executor}
}

func (t *askGeminiTool) Name() string { return "ask-gemini" }

func (t *askGeminiTool) Description() string {
	return "Ask Gemini for analysis, explanations or code changes. Supports @file references, " +
		"sandboxed execution and changeMode for structured edit suggestions."
}

func (t *askGeminiTool) Category() tools.Category { return tools.CategoryGemini }

func (t *askGeminiTool) Annotations() tools.Annotations {
	return tools.Annotations{ReadOnly: false, OpenWorld: false}
}

func (t *askGeminiTool) Prompt() tools.PromptDescriptor {
	return tools.PromptDescriptor{
		Description: "Execute 'gemini -p <prompt>' to get Gemini AI's response.",
	}
}

func (t *askGeminiTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"prompt": {"type": "string", "minLength": 1, "description": "Analysis request. Use @ syntax to include files (e.g., '@largefile.js explain what this does')"},
			"model": {"type": "string", "description": "Optional model to use (e.g., 'gemini-2.5-flash')"},
			"sandbox": {"type": "boolean", "default": false, "description": "Run the CLI in sandbox mode (-s) for safe code execution"},
			"changeMode": {"type": "boolean", "default": false, "description": "Ask for structured OLD/NEW edit blocks instead of prose"}
		},
		"required": ["prompt"]
	}`)
}

func (t *askGeminiTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input askGeminiInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return "", fmt.Errorf("parsing input: %w", err)
		}
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return "", tools.ErrNoPrompt
	}

	result, err := t.executor.Execute(ctx, gemini.Request{
		Prompt:     input.Prompt,
		Model:      input.Model,
		Sandbox:    input.Sandbox,
		ChangeMode: input.ChangeMode,
	}, tools.ProgressFromContext(ctx))
	if err != nil {
		return "", fmt.Errorf("ask-gemini: %w", err)
	}

	return tools.StatusGeminiResponse + "\n" + result, nil
}
