package gemini

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeGemini writes an executable shell script standing in for the CLI.
func fakeGemini(t *testing.T, body string) string {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("fake CLI scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "gemini")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake gemini: %v", err)
	}
	return path
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "prompt only",
			req:  Request{Prompt: "explain main.go"},
			want: []string{"--prompt=explain main.go"},
		},
		{
			name: "model",
			req:  Request{Prompt: "@src/main.ts explain", Model: "gemini-2.5-pro"},
			want: []string{"-m", "gemini-2.5-pro", "--prompt=@src/main.ts explain"},
		},
		{
			name: "sandbox",
			req:  Request{Prompt: "run tests", Model: "gemini-2.5-flash", Sandbox: true},
			want: []string{"-m", "gemini-2.5-flash", "-s", "--prompt=run tests"},
		},
		{
			name: "leading dash stays in the prompt argument",
			req:  Request{Prompt: "-h what does this flag do"},
			want: []string{"--prompt=-h what does this flag do"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, BuildArgs(tt.req)); diff != "" {
				t.Errorf("BuildArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildArgs_ChangeMode(t *testing.T) {
	args := BuildArgs(Request{Prompt: "rename foo to bar", ChangeMode: true})
	prompt := args[len(args)-1]
	if !strings.HasPrefix(prompt, "--prompt=[CHANGEMODE INSTRUCTIONS]") {
		t.Errorf("change mode prompt missing preamble: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "rename foo to bar") {
		t.Errorf("change mode prompt lost user request: %q", prompt)
	}
}

func TestHasFileReferences(t *testing.T) {
	if !hasFileReferences("@src/main.go explain") {
		t.Error("expected @src/main.go to count as a file reference")
	}
	if hasFileReferences("mail me at a@b.com or use @") {
		t.Error("embedded @ and a lone @ are not file references")
	}
}

func TestExecute_PassesArgs(t *testing.T) {
	bin := fakeGemini(t, `printf '%s\n' "$@"`)
	e := NewExecutor(Config{Binary: bin}, nil)

	out, err := e.Execute(context.Background(), Request{Prompt: "hello there", Model: "gemini-2.5-pro"}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "-m\ngemini-2.5-pro\n--prompt=hello there\n"
	if out != want {
		t.Errorf("Execute() = %q, want %q", out, want)
	}
}

func TestExecute_DefaultModel(t *testing.T) {
	bin := fakeGemini(t, `printf '%s\n' "$@"`)
	e := NewExecutor(Config{Binary: bin, DefaultModel: "gemini-2.5-pro"}, nil)

	out, err := e.Execute(context.Background(), Request{Prompt: "hi"}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out, "-m\ngemini-2.5-pro\n") {
		t.Errorf("default model not applied: %q", out)
	}
}

func TestExecute_EmptyPrompt(t *testing.T) {
	e := NewExecutor(Config{Binary: "sh"}, nil)
	_, err := e.Execute(context.Background(), Request{Prompt: "  \n\t"}, nil)
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Execute() error = %v, want ErrEmptyPrompt", err)
	}
}

func TestExecute_BinaryNotFound(t *testing.T) {
	e := NewExecutor(Config{Binary: "gemini-bridge-no-such-binary"}, nil)
	if e.Available() {
		t.Fatal("Available() = true for a missing binary")
	}
	_, err := e.Execute(context.Background(), Request{Prompt: "hi"}, nil)
	if !errors.Is(err, ErrBinaryNotFound) {
		t.Errorf("Execute() error = %v, want ErrBinaryNotFound", err)
	}
}

func TestExecute_CommandError(t *testing.T) {
	bin := fakeGemini(t, `echo "bad flag" >&2; exit 3`)
	e := NewExecutor(Config{Binary: bin}, nil)

	_, err := e.Execute(context.Background(), Request{Prompt: "hi"}, nil)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Execute() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if cmdErr.Stderr != "bad flag" {
		t.Errorf("Stderr = %q, want %q", cmdErr.Stderr, "bad flag")
	}
	if IsQuotaError(err) {
		t.Error("IsQuotaError() = true for a plain failure")
	}
}

func TestExecute_QuotaFallback(t *testing.T) {
	bin := fakeGemini(t, `case "$*" in
  *gemini-2.5-flash*) printf '%s|' "$@"; echo ;;
  *) echo "RESOURCE_EXHAUSTED: Quota exceeded" >&2; exit 1 ;;
esac`)

	tests := []struct {
		name         string
		defaultModel string
		model        string
		wantProgress string
	}{
		{
			name:         "explicit model",
			model:        "gemini-2.5-pro",
			wantProgress: "Quota exceeded for gemini-2.5-pro, switching to gemini-2.5-flash",
		},
		{
			name:         "configured default model",
			defaultModel: "gemini-2.5-pro",
			wantProgress: "Quota exceeded for gemini-2.5-pro, switching to gemini-2.5-flash",
		},
		{
			name:         "cli default model",
			wantProgress: "Quota exceeded for default, switching to gemini-2.5-flash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(Config{Binary: bin, DefaultModel: tt.defaultModel, FallbackModel: DefaultFallbackModel}, nil)

			var mu sync.Mutex
			var messages []string
			progress := func(msg string) {
				mu.Lock()
				defer mu.Unlock()
				messages = append(messages, msg)
			}

			out, err := e.Execute(context.Background(), Request{Prompt: "hi", Model: tt.model}, progress)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			wantOut := "-m|gemini-2.5-flash|--prompt=hi|"
			if strings.TrimSpace(out) != wantOut {
				t.Errorf("Execute() = %q, want %q", out, wantOut)
			}
			want := []string{tt.wantProgress, wantOut}
			if diff := cmp.Diff(want, messages); diff != "" {
				t.Errorf("progress mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecute_QuotaOnFallbackModelIsFinal(t *testing.T) {
	bin := fakeGemini(t, `echo "Quota exceeded" >&2; exit 1`)
	e := NewExecutor(Config{Binary: bin, FallbackModel: DefaultFallbackModel}, nil)

	_, err := e.Execute(context.Background(), Request{Prompt: "hi", Model: DefaultFallbackModel}, nil)
	if !IsQuotaError(err) {
		t.Fatalf("Execute() error = %v, want quota error", err)
	}
	if strings.Contains(err.Error(), "fallback model") {
		t.Errorf("no retry expected when already on the fallback model: %v", err)
	}
}

func TestExecute_Timeout(t *testing.T) {
	bin := fakeGemini(t, `exec sleep 5`)
	e := NewExecutor(Config{Binary: bin, Timeout: 100 * time.Millisecond}, nil)

	_, err := e.Execute(context.Background(), Request{Prompt: "hi"}, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	bin := fakeGemini(t, `exec sleep 5`)
	e := NewExecutor(Config{Binary: bin}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := e.Execute(ctx, Request{Prompt: "hi"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestExecute_OutputLimit(t *testing.T) {
	bin := fakeGemini(t, `printf 'hello world'`)
	e := NewExecutor(Config{Binary: bin, MaxOutputBytes: 5}, nil)

	out, err := e.Execute(context.Background(), Request{Prompt: "hi"}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "hello"+truncatedMarker {
		t.Errorf("Execute() = %q, want truncated output", out)
	}
}

func TestExecute_ProgressLines(t *testing.T) {
	bin := fakeGemini(t, `printf 'first\n\nsecond\r\nthird'`)
	e := NewExecutor(Config{Binary: bin}, nil)

	var messages []string
	_, err := e.Execute(context.Background(), Request{Prompt: "hi"}, func(msg string) {
		messages = append(messages, msg)
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := []string{"first", "second", "third"}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_ProgressStopsAtOutputLimit(t *testing.T) {
	bin := fakeGemini(t, `i=0
while [ $i -lt 2000 ]; do echo "line $i"; i=$((i+1)); done`)
	e := NewExecutor(Config{Binary: bin, MaxOutputBytes: 16}, nil)

	var messages []string
	out, err := e.Execute(context.Background(), Request{Prompt: "hi"}, func(msg string) {
		messages = append(messages, msg)
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "line 0\nline 1\nli"+truncatedMarker {
		t.Errorf("Execute() = %q, want truncated output", out)
	}
	want := []string{"line 0", "line 1", truncatedProgress}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_EnvIsolation(t *testing.T) {
	t.Setenv("GEMINI_BRIDGE_TEST_SECRET", "s3cret")
	t.Setenv("GEMINI_API_KEY", "key-123")
	bin := fakeGemini(t, `echo "${GEMINI_BRIDGE_TEST_SECRET:-unset} ${GEMINI_API_KEY:-unset}"`)

	e := NewExecutor(Config{Binary: bin}, nil)
	out, err := e.Execute(context.Background(), Request{Prompt: "hi"}, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "unset key-123" {
		t.Errorf("env = %q, want %q", got, "unset key-123")
	}
}

func TestHelp(t *testing.T) {
	bin := fakeGemini(t, `echo "Usage: gemini $1"`)
	e := NewExecutor(Config{Binary: bin}, nil)

	out, err := e.Help(context.Background())
	if err != nil {
		t.Fatalf("Help() error = %v", err)
	}
	if strings.TrimSpace(out) != "Usage: gemini --help" {
		t.Errorf("Help() = %q", out)
	}
}
