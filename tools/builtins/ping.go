package builtins

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/initializ/gemini-bridge/tools"
)

type pingTool struct{}

type pingInput struct {
	Prompt string `json:"prompt,omitempty"`
}

func (t *pingTool) Name() string             { return "ping" }
func (t *pingTool) Description() string      { return "Echo a message back to test the connection" }
func (t *pingTool) Category() tools.Category { return tools.CategoryUtility }

func (t *pingTool) Annotations() tools.Annotations {
	return tools.Annotations{ReadOnly: true}
}

func (t *pingTool) Prompt() tools.PromptDescriptor {
	return tools.PromptDescriptor{Description: "Echo test message with structured response."}
}

func (t *pingTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"prompt": {"type": "string", "description": "Message to echo"}
		}
	}`)
}

func (t *pingTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input pingInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return "", fmt.Errorf("parsing input: %w", err)
		}
	}
	if input.Prompt == "" {
		return tools.StatusPong, nil
	}
	return input.Prompt, nil
}
