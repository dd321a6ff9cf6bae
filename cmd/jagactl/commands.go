package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/sijagad/internal/app"
	exportUC "github.com/fastygo/sijagad/usecase/export"
)

func newSweepCmd() *cobra.Command {
	var broadcast bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire overdue letters",
		Long:  "Marks every active letter whose end date has passed as expired, then optionally broadcasts the daily report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				now := time.Now()
				result, err := a.Sweep.Run(cmd.Context(), now)
				if err != nil {
					return fmt.Errorf("running sweep: %w", err)
				}
				if result.Skipped {
					fmt.Println("Another sweep is running, nothing done.")
					return nil
				}
				fmt.Printf("Scanned %d letters, expired %d.\n", result.Scanned, result.Updated)
				for _, f := range result.Failures {
					fmt.Printf("  failed %d: %s\n", f.LetterID, f.Reason)
				}

				if !broadcast {
					return nil
				}
				_, sent, err := a.Notify.BroadcastReport(cmd.Context(), now)
				if err != nil {
					return fmt.Errorf("broadcasting report: %w", err)
				}
				if sent {
					fmt.Println("Daily report queued.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&broadcast, "broadcast", "b", true, "Broadcast the daily report after the sweep")

	return cmd
}

func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "E-mail the letters expiring soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Notify.Digest(cmd.Context(), time.Now())
				if err != nil {
					return fmt.Errorf("building digest: %w", err)
				}
				switch {
				case result.Count == 0:
					fmt.Println("No letters expiring soon.")
				case result.Sent:
					fmt.Printf("Digest with %d letters queued.\n", result.Count)
				default:
					fmt.Printf("%d letters due, digest already sent today.\n", result.Count)
				}
				return nil
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the upcoming-expiry report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if asJSON {
					summary, err := a.Reports.Summary(cmd.Context())
					if err != nil {
						return fmt.Errorf("summarizing letters: %w", err)
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				}

				text, _, err := a.Reports.Upcoming(cmd.Context(), time.Now())
				if err != nil {
					return fmt.Errorf("building report: %w", err)
				}
				fmt.Println(text)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard summary as JSON instead")

	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import letters from a legacy workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening workbook: %w", err)
			}
			defer f.Close()

			return withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Export.Import(cmd.Context(), f, time.Now())
				if err != nil {
					return fmt.Errorf("importing: %w", err)
				}
				fmt.Printf("Imported %d letters, %d failed.\n", result.Created, result.Failed)
				for _, sheet := range result.MissingSheets {
					fmt.Printf("  sheet not found: %s\n", sheet)
				}
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the letter workbook from the configured template",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				wb, err := a.Export.Export(cmd.Context(), time.Now())
				if err != nil {
					return fmt.Errorf("exporting: %w", err)
				}
				path := filepath.Join(dir, wb.Filename)
				if err := os.WriteFile(path, wb.Data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Printf("Wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Output directory")

	return cmd
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <file.xlsx>",
		Short: "Generate an empty export template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exportUC.GenerateTemplate(args[0]); err != nil {
				return fmt.Errorf("generating template: %w", err)
			}
			fmt.Printf("Wrote %s\n", args[0])
			return nil
		},
	}
}
