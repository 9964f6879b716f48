package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/initializ/gemini-bridge/internal/tui"
	"github.com/initializ/gemini-bridge/tools"
	"github.com/spf13/cobra"
)

var analyzeModel string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt...>",
	Short: "Run a one-off read-only analysis through the analyze tool",
	Example: `  gemini-bridge analyze "@src/main.go explain the architecture"
  gemini-bridge analyze --model gemini-2.5-flash "summarize @README.md"`,
	Args: cobra.MinimumNArgs(1),
	RunE: analyzeRun,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "model to use for this call")
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	reg, err := newRegistry(cfg, newExecutor(cfg, logger))
	if err != nil {
		return err
	}
	if reg.Get("analyze") == nil {
		return fmt.Errorf("analyze tool is disabled by server.tools")
	}

	input, err := json.Marshal(map[string]string{
		"prompt": strings.Join(args, " "),
		"model":  analyzeModel,
	})
	if err != nil {
		return fmt.Errorf("encoding arguments: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	job := func(ctx context.Context, progress func(string)) (string, error) {
		return reg.Execute(tools.WithProgress(ctx, progress), "analyze", input)
	}

	var out string
	if f, ok := cmd.ErrOrStderr().(*os.File); ok && tui.IsTerminal(f) {
		styles := tui.NewStyleSet(tui.DetectTheme(themeOverride))
		out, err = tui.RunWithSpinner(ctx, f, "Asking Gemini…", styles, job)
	} else {
		out, err = job(ctx, nil)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
