package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitebuilder/internal/app"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "sitebuilder",
		Short: "Compose web pages from a catalog of components",
		Long: `sitebuilder keeps pages as ordered trees of catalog components
(heroes, headings, galleries, sections...) and lets you edit them from
the command line or through an MCP server for AI agents.

Pages are stored in sqlite by default; postgres, mysql and mongodb are
selected in the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/sitebuilder/config.toml)")

	rootCmd.AddCommand(
		mcpCmd(),
		pagesCmd(),
		catalogCmd(),
		exportCmd(),
		importCmd(),
		syncCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// openApp builds the app for a one-shot command. The caller shuts it down.
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, app.Options{ConfigPath: configPath})
}

// withApp runs fn against a freshly opened app and shuts it down after,
// flushing anything fn left unsaved.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Shutdown(ctx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the builder over MCP on stdin/stdout",
		Long: `Run a standalone MCP server so AI agents can create pages and
place, edit, move and remove components. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ServeMCP(app.Options{ConfigPath: configPath}, version)
		},
	}
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Println(version)
				return
			}
			fmt.Printf("sitebuilder %s (commit %s, built %s)\n", version, commit, date)
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
