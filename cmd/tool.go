package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/initializ/gemini-bridge/internal/tui"
	"github.com/initializ/gemini-bridge/runtime"
	"github.com/initializ/gemini-bridge/tools"
	"github.com/spf13/cobra"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Inspect the tools served over MCP",
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available tools",
	RunE:  toolListRun,
}

var toolDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show tool details and schema",
	Args:  cobra.ExactArgs(1),
	RunE:  toolDescribeRun,
}

func init() {
	toolCmd.AddCommand(toolListCmd)
	toolCmd.AddCommand(toolDescribeCmd)
}

// inspectRegistry builds the registry without logging; listing tools never
// runs the CLI.
func inspectRegistry() (*tools.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newRegistry(cfg, newExecutor(cfg, runtime.NopLogger{}))
}

// outputStyles returns colored styles only when writing to a terminal.
func outputStyles(cmd *cobra.Command) *tui.StyleSet {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && tui.IsTerminal(f) {
		return tui.NewStyleSet(tui.DetectTheme(themeOverride))
	}
	return tui.PlainStyleSet()
}

func toolListRun(cmd *cobra.Command, args []string) error {
	reg, err := inspectRegistry()
	if err != nil {
		return err
	}
	styles := outputStyles(cmd)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		styles.Title.Render("NAME"), styles.Title.Render("CATEGORY"),
		styles.Title.Render("MODE"), styles.Title.Render("DESCRIPTION"))

	for _, d := range reg.Descriptors() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			styles.AccentTxt.Render(d.Name), d.Category, accessMode(d.Annotations),
			styles.DimTxt.Render(firstSentence(d.Description)))
	}
	return w.Flush()
}

func toolDescribeRun(cmd *cobra.Command, args []string) error {
	reg, err := inspectRegistry()
	if err != nil {
		return err
	}

	name := args[0]
	t := reg.Get(name)
	if t == nil {
		return fmt.Errorf("unknown tool: %q", name)
	}
	d := tools.Describe(t)
	styles := outputStyles(cmd)
	out := cmd.OutOrStdout()

	row := func(key, value string) {
		fmt.Fprintf(out, "%s %s\n", styles.SummaryKey.Render(key+":"), styles.SummaryValue.Render(value))
	}
	row("Name", d.Name)
	row("Category", string(d.Category))
	row("Mode", accessMode(d.Annotations))
	row("Description", d.Description)
	if d.Prompt != nil {
		row("Prompt", d.Prompt.Description)
	}

	fmt.Fprintf(out, "\n%s\n", styles.Title.Render("Input Schema:"))
	var pretty json.RawMessage
	if json.Unmarshal(d.InputSchema, &pretty) == nil {
		data, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Fprintf(out, "%s\n", data)
	}
	return nil
}

func accessMode(a tools.Annotations) string {
	if a.ReadOnly {
		return "read-only"
	}
	return "read-write"
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
