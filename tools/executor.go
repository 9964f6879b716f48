package tools

import (
	"context"

	"github.com/initializ/gemini-bridge/gemini"
)

// Executor abstracts the gemini CLI for tools. Implementations live outside
// this package so tools stay free of OS dependencies.
type Executor interface {
	// Execute runs a prompt and returns the CLI's raw stdout. progress may
	// be nil.
	Execute(ctx context.Context, req gemini.Request, progress func(string)) (string, error)
	// Help returns the CLI's own usage text.
	Help(ctx context.Context) (string, error)
}
