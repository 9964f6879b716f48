// Package cmd implements the gemini-bridge CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/initializ/gemini-bridge/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	verbose       bool
	themeOverride string

	appVersion = "dev"

	// settings resolves flag and GEMINI_BRIDGE_* overrides over the config file.
	settings = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "gemini-bridge",
	Short: "Expose the gemini CLI as MCP tools",
	Long: "gemini-bridge is a Model Context Protocol server that forwards analysis " +
		"prompts to the gemini command-line tool and returns its answers.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&themeOverride, "theme", "", "color theme: dark, light, or auto")
	rootCmd.PersistentFlags().String("binary", "gemini", "path or name of the gemini CLI")
	rootCmd.PersistentFlags().String("default-model", "", "model used when a call does not name one")
	rootCmd.PersistentFlags().Int("timeout", 600, "gemini CLI timeout in seconds")

	_ = settings.BindPFlag(config.KeyBinary, rootCmd.PersistentFlags().Lookup("binary"))
	_ = settings.BindPFlag(config.KeyDefaultModel, rootCmd.PersistentFlags().Lookup("default-model"))
	_ = settings.BindPFlag(config.KeyTimeout, rootCmd.PersistentFlags().Lookup("timeout"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("gemini-bridge %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
