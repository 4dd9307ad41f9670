package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitebuilder/internal/app"
	"sitebuilder/internal/catalog"
)

func pagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List and manage pages",
		Long: `Manage pages.

Commands:
  list       List all pages
  create     Create a page
  rename     Rename a page (its slug stays)
  delete     Delete a page and its components

Examples:
  sitebuilder pages create "Spring Launch"
  sitebuilder pages rename spring-launch "Spring Launch 2026"
  sitebuilder pages delete spring-launch`,
	}
	cmd.AddCommand(
		pagesListCmd(),
		pagesCreateCmd(),
		pagesRenameCmd(),
		pagesDeleteCmd(),
	)
	return cmd
}

func pagesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				pages, err := a.Pages.ListPages()
				if err != nil {
					return err
				}
				if len(pages) == 0 {
					info("No pages yet. Create one with: sitebuilder pages create <name>")
					return nil
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tNAME\tCOMPONENTS\tUPDATED")
				for _, p := range pages {
					comps, err := a.Builder.Components(p.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Slug, p.Name, len(comps), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}

func pagesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				p, err := a.Pages.CreatePage(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				success("Created page %s (%s)", p.Name, p.Slug)
				return nil
			})
		},
	}
}

func pagesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <page> <name>",
		Short: "Rename a page",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				p, err := a.Pages.FindPage(args[0])
				if err != nil {
					return err
				}
				name := strings.Join(args[1:], " ")
				if err := a.Pages.RenamePage(cmd.Context(), p.ID, name); err != nil {
					return err
				}
				success("Renamed %s to %s", p.Slug, name)
				return nil
			})
		},
	}
}

func pagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <page>",
		Short: "Delete a page and its components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				p, err := a.Pages.FindPage(args[0])
				if err != nil {
					return err
				}
				if err := a.Pages.DeletePage(cmd.Context(), p.ID); err != nil {
					return err
				}
				success("Deleted page %s", p.Slug)
				return nil
			})
		},
	}
}

func catalogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the component types that can be placed on a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := catalog.Default().Entries()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tCATEGORY\tDESCRIPTION")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Type, e.Category, e.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries with fields and defaults as JSON")
	return cmd
}
