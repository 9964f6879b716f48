package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/initializ/gemini-bridge/gemini"
	"github.com/initializ/gemini-bridge/tools"
)

type analyzeTool struct {
	executor tools.Executor
}

type analyzeInput struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// NewAnalyzeTool creates the read-only analyze tool.
func NewAnalyzeTool(executor tools.Executor) tools.Tool {
	return &analyzeTool{executor: executor}
}

func (t *analyzeTool) Name() string { return "analyze" }

func (t *analyzeTool) Description() string {
	return "Read-only code analysis using Gemini. Available in plan mode. Use for code review, " +
		"architecture analysis, impact assessment, and general research. Lightweight alternative " +
		"to ask-gemini without sandbox or changeMode options."
}

func (t *analyzeTool) Category() tools.Category { return tools.CategoryGemini }

func (t *analyzeTool) Annotations() tools.Annotations {
	return tools.Annotations{ReadOnly: true, OpenWorld: false}
}

func (t *analyzeTool) Prompt() tools.PromptDescriptor {
	return tools.PromptDescriptor{
		Description: "Analyze code or answer questions using Gemini AI in read-only mode.",
	}
}

func (t *analyzeTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"prompt": {"type": "string", "minLength": 1, "description": "Analysis request. Use @ syntax to include files (e.g., '@src/main.ts explain the architecture')"},
			"model": {"type": "string", "description": "Optional model to use (e.g., 'gemini-2.5-flash'). If not specified, uses the default model."}
		},
		"required": ["prompt"]
	}`)
}

func (t *analyzeTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input analyzeInput
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
		Sandbox:    false,
		ChangeMode: false,
	}, tools.ProgressFromContext(ctx))
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}

	return tools.StatusGeminiResponse + "\n" + result, nil
}
