package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/designlens/designlens/internal/adapters/outbound/tui"
	"github.com/designlens/designlens/internal/adapters/outbound/watch"
	"github.com/designlens/designlens/internal/domain"
)

func newWatchCmd() *cobra.Command {
	var (
		debounce time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch the project and review views as source files change",
		Long: "Watch the project tree and run a review over each debounced batch " +
			"of changed files, the same review a hook invocation would trigger.",
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

			out := cmd.OutOrStdout()

			runBatch := func(changed []string) {
				ctx, cancel := sessionContext(p.cfg)
				defer cancel()

				session, err := p.reviews.Run(ctx, changed)
				if err != nil {
					var capErr *domain.CaptureError
					if errors.As(err, &capErr) && capErr.Fatal {
						logger.Error("application unreachable, waiting for next change", "error", err)
						return
					}
					logger.Error("review failed", "error", err)
					return
				}

				rendered := tui.RenderSession(session)
				if dir, err := p.reports.Write(session, rendered); err != nil {
					logger.Error("writing report failed", "error", err)
				} else {
					fmt.Fprint(out, rendered)
					fmt.Fprintf(out, "\n  report written to %s\n", dir)
				}
			}

			watcher, err := watch.New(debounce, runBatch)
			if err != nil {
				return err
			}
			if err := watcher.WatchRecursive(p.projectPath); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(out, "watching %s (ctrl-c to stop)\n", p.projectPath)
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a batch of changes triggers a review")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
