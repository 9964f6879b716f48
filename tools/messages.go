package tools

import "errors"

// Status labels prefixed to tool output.
const (
	StatusGeminiResponse = "Gemini response:"
	StatusPong           = "Pong!"
)

// Error messages returned to MCP clients.
const (
	ErrNoPromptProvided = "Please provide a prompt for analysis. Use @ syntax to include files (e.g., '@largefile.js explain what this does') or ask general questions"
)

// ErrNoPrompt is returned when a prompt is missing or whitespace-only.
var ErrNoPrompt = errors.New(ErrNoPromptProvided)
