package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	coreruntime "github.com/initializ/gemini-bridge/runtime"
)

const (
	DefaultBinary         = "gemini"
	DefaultFallbackModel  = "gemini-2.5-flash"
	DefaultTimeout        = 600 * time.Second
	DefaultMaxOutputBytes = 10 << 20

	truncatedMarker = "\n[output truncated]"
	// truncatedProgress is the last progress line sent once stdout overflows.
	truncatedProgress = "output truncated"
	// maxPendingLine bounds the unterminated tail kept for progress lines.
	maxPendingLine = 64 << 10
)

// DefaultEnvPassthrough lists the variables the CLI needs for auth.
var DefaultEnvPassthrough = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_CLOUD_PROJECT"}

// Config holds the configuration for an Executor.
type Config struct {
	Binary         string
	DefaultModel   string
	FallbackModel  string
	EnvPassthrough []string
	Timeout        time.Duration
	MaxOutputBytes int
	WorkDir        string
}

// Executor runs the gemini CLI via exec.Command (no shell), with env
// isolation, a timeout and an output limit.
type Executor struct {
	config     Config
	binaryPath string
	logger     coreruntime.Logger
}

// NewExecutor creates an Executor. The binary is resolved with exec.LookPath
// once; a missing binary is reported on each call rather than here so the
// server can still start and list its tools.
func NewExecutor(config Config, logger coreruntime.Logger) *Executor {
	if config.Binary == "" {
		config.Binary = DefaultBinary
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if config.EnvPassthrough == nil {
		config.EnvPassthrough = DefaultEnvPassthrough
	}
	if logger == nil {
		logger = coreruntime.NopLogger{}
	}

	e := &Executor{config: config, logger: logger}
	if absPath, err := exec.LookPath(config.Binary); err == nil {
		e.binaryPath = absPath
	}
	return e
}

// Available reports whether the binary was found on this system.
func (e *Executor) Available() bool { return e.binaryPath != "" }

// BinaryPath returns the resolved binary path, or "" when unavailable.
func (e *Executor) BinaryPath() string { return e.binaryPath }

// Execute runs req and returns the CLI's stdout. When the CLI fails with a
// quota error it retries once with the fallback model.
func (e *Executor) Execute(ctx context.Context, req Request, progress func(string)) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if req.Model == "" {
		req.Model = e.config.DefaultModel
	}

	e.logger.Debug("running gemini", map[string]any{
		"model":      modelName(req.Model),
		"sandbox":    req.Sandbox,
		"changeMode": req.ChangeMode,
		"fileRefs":   hasFileReferences(req.Prompt),
	})

	out, err := e.run(ctx, BuildArgs(req), progress)
	if err == nil {
		return out, nil
	}

	fallback := e.config.FallbackModel
	if !IsQuotaError(err) || fallback == "" || req.Model == fallback {
		return "", err
	}

	e.logger.Warn("gemini quota exceeded, retrying with fallback model", map[string]any{
		"model":    modelName(req.Model),
		"fallback": fallback,
	})
	if progress != nil {
		progress(fmt.Sprintf("Quota exceeded for %s, switching to %s", modelName(req.Model), fallback))
	}

	req.Model = fallback
	out, err = e.run(ctx, BuildArgs(req), progress)
	if err != nil {
		return "", fmt.Errorf("fallback model %s: %w", fallback, err)
	}
	return out, nil
}

// Help returns the output of `gemini --help`.
func (e *Executor) Help(ctx context.Context) (string, error) {
	return e.run(ctx, []string{"--help"}, nil)
}

func (e *Executor) run(ctx context.Context, args []string, progress func(string)) (string, error) {
	if e.binaryPath == "" {
		return "", fmt.Errorf("%w: %q", ErrBinaryNotFound, e.config.Binary)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, e.binaryPath, args...)
	cmd.Env = e.buildEnv()
	cmd.Dir = e.config.WorkDir
	cmd.WaitDelay = 5 * time.Second

	stdout := &lineWriter{dst: newLimitedWriter(e.config.MaxOutputBytes), progress: progress}
	stderr := newLimitedWriter(e.config.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	stdout.flush()

	if err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w after %s", ErrTimeout, e.config.Timeout)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &CommandError{ExitCode: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return "", fmt.Errorf("running %s: %w", e.config.Binary, err)
	}

	e.logger.Debug("gemini finished", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"bytes":       stdout.dst.buf.Len(),
		"truncated":   stdout.dst.overflow,
	})

	out := stdout.dst.String()
	if stdout.dst.overflow {
		out += truncatedMarker
	}
	return out, nil
}

// buildEnv constructs an isolated environment with only PATH, HOME, LANG
// and the configured passthrough variables.
func (e *Executor) buildEnv() []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"LANG=" + os.Getenv("LANG"),
	}
	for _, key := range e.config.EnvPassthrough {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

func modelName(model string) string {
	if model == "" {
		return "default"
	}
	return model
}

// limitedWriter wraps a bytes.Buffer and silently drops bytes after the limit.
// It always returns len(p) to avoid broken pipe errors from subprocesses.
type limitedWriter struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func newLimitedWriter(limit int) *limitedWriter {
	return &limitedWriter{limit: limit}
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		w.overflow = true
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		w.overflow = true
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}

func (w *limitedWriter) String() string {
	return w.buf.String()
}

// lineWriter copies output into dst and forwards each complete non-blank
// line to progress. Lines past the output limit are not forwarded; a single
// truncation notice is sent instead.
type lineWriter struct {
	dst       *limitedWriter
	progress  func(string)
	pending   []byte
	truncated bool
}

func (w *lineWriter) Write(p []byte) (int, error) {
	stored := len(p)
	if remaining := w.dst.limit - w.dst.buf.Len(); remaining < stored {
		stored = max(remaining, 0)
	}
	w.dst.Write(p) //nolint:errcheck
	if w.progress == nil || w.truncated {
		return len(p), nil
	}

	w.pending = append(w.pending, p[:stored]...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(w.pending[:i])
		w.pending = w.pending[i+1:]
	}
	if w.dst.overflow {
		w.pending = nil
		w.truncated = true
		w.progress(truncatedProgress)
		return len(p), nil
	}
	if len(w.pending) > maxPendingLine {
		w.flush()
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if w.progress == nil || w.truncated || len(w.pending) == 0 {
		return
	}
	w.emit(w.pending)
	w.pending = nil
}

func (w *lineWriter) emit(line []byte) {
	text := strings.TrimRight(string(line), "\r")
	if strings.TrimSpace(text) != "" {
		w.progress(text)
	}
}
