package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/pkg/types"
)

// NewFailoverCmd creates the failover command.
func NewFailoverCmd() *cobra.Command {
	var (
		action string
		target string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "failover",
		Short: "Execute a region transition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFailover(cmd.Context(), action, target, force)
		},
	}

	cmd.Flags().StringVar(&action, "action", "failover", "transition: failover or failback")
	cmd.Flags().StringVar(&target, "target", "", "target region (defaults to the configured pair)")
	cmd.Flags().BoolVar(&force, "force", false, "skip the target health gate")
	return cmd
}

func runFailover(ctx context.Context, action, target string, force bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if target == "" {
		// By default a failover lands on the DR region and a failback
		// returns to the primary.
		target = cfg.Regions.Target
		if action == string(types.ActionFailback) {
			target = cfg.Regions.Source
		}
	}

	services, err := buildServices(ctx, cfg, newLogger())
	if err != nil {
		return err
	}

	resp := services.Orchestrator.Execute(ctx, types.FailoverRequest{
		Action:       action,
		TargetRegion: target,
		Force:        force,
	})
	if err := printJSON(resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("%s", resp.Message)
	}
	return nil
}
