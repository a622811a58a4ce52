package cli

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/designlens/designlens/internal/domain"
)

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect and accept visual-regression baselines",
	}
	cmd.AddCommand(newBaselineListCmd())
	cmd.AddCommand(newBaselineAcceptCmd())
	return cmd
}

func newBaselineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List stored baselines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			p, err := newPipeline(path, newLogger(false))
			if err != nil {
				return err
			}

			baselines, err := p.baselines.List()
			if err != nil {
				return err
			}
			if len(baselines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no baselines stored")
				return nil
			}
			for _, b := range baselines {
				line := fmt.Sprintf("%s  %s  captured %s", b.ViewID, b.Viewport, b.CapturedAt.Format("2006-01-02 15:04"))
				if b.AcceptedBy != "" {
					line += fmt.Sprintf("  accepted by %s at %s", b.AcceptedBy, b.AcceptedAt.Format("2006-01-02 15:04"))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newBaselineAcceptCmd() *cobra.Command {
	var (
		width  int
		height int
		who    string
	)

	cmd := &cobra.Command{
		Use:   "accept <view-id> [path]",
		Short: "Capture a view and accept it as the new baseline",
		Long: "Re-render the view and record the fresh screenshot as the accepted " +
			"baseline. This is the only operation that replaces an existing baseline.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewID := args[0]
			path := "."
			if len(args) > 1 {
				path = args[1]
			}

			p, err := newPipeline(path, newLogger(false))
			if err != nil {
				return err
			}

			if who == "" {
				if u, err := user.Current(); err == nil {
					who = u.Username
				}
			}

			viewports := p.cfg.Viewports
			if width > 0 && height > 0 {
				viewports = []domain.Viewport{{Width: width, Height: height}}
			}

			ctx, cancel := sessionContext(p.cfg)
			defer cancel()

			for _, vp := range viewports {
				b, err := p.baselines.Accept(ctx, viewID, vp, who)
				if err != nil {
					return fmt.Errorf("accepting baseline for %s at %s: %w", viewID, vp, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "baseline accepted: %s\n", b.ImagePath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Viewport width (defaults to all configured viewports)")
	cmd.Flags().IntVar(&height, "height", 0, "Viewport height")
	cmd.Flags().StringVar(&who, "by", "", "Who accepts the baseline (defaults to the current user)")

	return cmd
}
