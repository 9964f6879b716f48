// Package builtins holds the tools gemini-bridge ships with.
package builtins

import "github.com/initializ/gemini-bridge/tools"

// All returns all built-in tools bound to executor.
func All(executor tools.Executor) []tools.Tool {
	return []tools.Tool{
		NewAnalyzeTool(executor),
		NewAskGeminiTool(executor),
		&helpTool{executor: executor},
		&pingTool{},
	}
}

// RegisterAll registers all built-in tools with the given registry.
func RegisterAll(reg *tools.Registry, executor tools.Executor) error {
	for _, t := range All(executor) {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// GetByName returns a built-in tool by name, or nil if not found.
func GetByName(name string, executor tools.Executor) tools.Tool {
	for _, t := range All(executor) {
		if t.Name() == name {
			return t
		}
	}
	return nil
}
