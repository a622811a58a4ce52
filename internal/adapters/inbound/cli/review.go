package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/designlens/designlens/internal/adapters/outbound/tui"
	"github.com/designlens/designlens/internal/domain"
)

func newReviewCmd() *cobra.Command {
	var (
		files      []string
		fromGit    bool
		jsonOutput bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "review [path]",
		Short: "Review the views affected by a set of changed files",
		Long: "Resolve the views implicated by the changed files, render each one " +
			"in a headless browser and run the enabled checks. The command always " +
			"writes a report and exits zero unless the configuration is invalid or " +
			"the served application is unreachable.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			logger := newLogger(verbose)
			p, err := newPipeline(path, logger)
			if err != nil {
				return err
			}

			changed := files
			if fromGit || len(changed) == 0 {
				gitFiles, err := p.git.ChangedFiles(p.projectPath)
				if err != nil {
					if fromGit {
						return fmt.Errorf("deriving changed files from git: %w", err)
					}
				} else {
					changed = append(changed, gitFiles...)
				}
			}
			if len(changed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no changed files; nothing to review")
				return nil
			}

			ctx, cancel := sessionContext(p.cfg)
			defer cancel()

			session, err := p.reviews.Run(ctx, changed)
			if err != nil {
				var capErr *domain.CaptureError
				if errors.As(err, &capErr) && capErr.Fatal {
					return fmt.Errorf("aborting session: %w", err)
				}
				return err
			}

			rendered := tui.RenderSession(session)
			dir, err := p.reports.Write(session, rendered)
			if err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(session)
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			fmt.Fprintf(cmd.OutOrStdout(), "\n  report written to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "files", nil, "Changed file paths (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&fromGit, "changed-from-git", false, "Derive changed files from the git working tree")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the session result as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
