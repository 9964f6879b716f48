// Package gemini runs prompts through the gemini command-line executable.
package gemini

import "strings"

// Request is a single prompt invocation of the gemini CLI.
type Request struct {
	Prompt string
	// Model overrides the configured default model when non-empty.
	Model string
	// Sandbox runs the CLI with -s.
	Sandbox bool
	// ChangeMode asks Gemini to answer with structured OLD/NEW edit blocks.
	ChangeMode bool
}

// changeModePreamble is prepended to prompts in change mode.
const changeModePreamble = `[CHANGEMODE INSTRUCTIONS]
You are generating code modifications that will be applied by an automated
system. Do not modify files yourself. For every change, output a block in this
exact format:

**FILE: <path>:<line>**
` + "```" + `
OLD:
<exact lines to replace, copied verbatim from the file>
NEW:
<replacement lines>
` + "```" + `

OLD must match the current file content character for character, including
indentation. Emit one block per contiguous change and nothing else.

USER REQUEST:
`

// BuildArgs returns the CLI arguments for req. The prompt is always the last
// argument, joined to --prompt= so a leading "-" cannot be read as a flag;
// @path references inside it are resolved by the CLI itself.
func BuildArgs(req Request) []string {
	var args []string
	if req.Model != "" {
		args = append(args, "-m", req.Model)
	}
	if req.Sandbox {
		args = append(args, "-s")
	}

	prompt := req.Prompt
	if req.ChangeMode {
		prompt = changeModePreamble + prompt
	}
	return append(args, "--prompt="+prompt)
}

// hasFileReferences reports whether prompt uses @path syntax.
func hasFileReferences(prompt string) bool {
	for _, field := range strings.Fields(prompt) {
		if len(field) > 1 && field[0] == '@' {
			return true
		}
	}
	return false
}
