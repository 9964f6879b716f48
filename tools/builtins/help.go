package builtins

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/initializ/gemini-bridge/tools"
)

type helpTool struct {
	executor tools.Executor
}

func (t *helpTool) Name() string             { return "help" }
func (t *helpTool) Description() string      { return "Receive help information from the gemini CLI" }
func (t *helpTool) Category() tools.Category { return tools.CategoryGemini }

func (t *helpTool) Annotations() tools.Annotations {
	return tools.Annotations{ReadOnly: true}
}

func (t *helpTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *helpTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	out, err := t.executor.Help(ctx)
	if err != nil {
		return "", fmt.Errorf("help: %w", err)
	}
	return out, nil
}
