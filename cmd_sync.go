package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sitebuilder/internal/app"
	"sitebuilder/internal/config"
	"sitebuilder/internal/service"
)

func exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <page>",
		Short: "Write a page document as JSON",
		Long: `Export a page (by slug or id) with its component tree and
selection as a JSON document. Without --output it goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				p, err := a.Pages.FindPage(args[0])
				if err != nil {
					return err
				}
				doc, err := a.Builder.Export(p.ID)
				if err != nil {
					return err
				}
				data, err := service.EncodeDocument(doc)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = os.Stdout.Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return err
				}
				success("Exported %s to %s", p.Slug, output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Load page documents into storage",
		Long: `Import page documents. Each file replaces the components of the
page named by the file (slug or id), or of the page id inside the
document; a new page is created when neither exists.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				for _, path := range args {
					p, err := a.Sync.ImportFile(cmd.Context(), path)
					if err != nil {
						return err
					}
					success("Imported %s into %s", path, p.Slug)
				}
				return nil
			})
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [dir]",
		Short: "Mirror pages to a directory of JSON documents",
		Long: `Export every page to <dir>/<slug>.json, then keep watching the
directory and import documents as they are edited. Runs until
interrupted. The directory defaults to sync.dir from the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.Background())
			if len(args) == 1 {
				a.Sync.SetDir(args[0])
			}
			if err := a.Start(ctx); err != nil {
				return err
			}

			paths, err := a.Sync.ExportAll(ctx)
			if err != nil {
				return err
			}
			success("Exported %d pages to %s", len(paths), a.Sync.Dir())
			if err := a.Sync.Watch(ctx); err != nil {
				return err
			}
			info("Watching for changes, Ctrl+C to stop")
			<-ctx.Done()
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				loader := config.NewLoader(configPath)
				cfg, err := loader.Load()
				if err != nil {
					return err
				}
				fmt.Printf("# %s\n", loader.Path())
				return config.Encode(os.Stdout, cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a default config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := configPath
				if path == "" {
					path = config.DefaultConfigPath()
				}
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists", path)
				}
				if err := config.Save(config.DefaultConfig(), path); err != nil {
					return err
				}
				success("Wrote %s", path)
				return nil
			},
		},
	)
	return cmd
}
