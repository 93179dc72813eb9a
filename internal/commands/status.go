package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/pkg/types"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show region health and the latest committed transition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
	return cmd
}

func runStatus(ctx context.Context) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	services, err := buildServices(ctx, cfg, newLogger())
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("Region Health:")
	for _, r := range []string{cfg.Regions.Source, cfg.Regions.Target} {
		checker, ok := services.Checkers[types.Region(r)]
		if !ok {
			continue
		}
		resp := checker.Check(ctx)
		statusStr := color.RedString("UNHEALTHY")
		if resp.Status == "healthy" {
			statusStr = color.GreenString("HEALTHY")
		}
		role := "primary"
		if r == cfg.Regions.Target {
			role = "dr"
		}
		lagStr := "-"
		if resp.Services.ReplicationLag != nil {
			lagStr = fmt.Sprintf("%ds", *resp.Services.ReplicationLag)
		}
		fmt.Printf("  %-15s %-10s %-12s dynamodb=%-5v s3=%-5v lag=%s\n",
			r, role, statusStr, resp.Services.DynamoDB, resp.Services.S3, lagStr)
	}
	fmt.Println()

	_, _ = bold.Println("Last Transition:")
	rec, err := services.Orchestrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("reading failover status: %w", err)
	}
	if rec == nil {
		fmt.Println("  none recorded")
		return nil
	}
	fmt.Printf("  %s %s -> %s (%s) at %s\n",
		rec.Action, rec.SourceRegion, rec.TargetRegion, rec.Status,
		rec.Timestamp.Format(time.RFC3339))
	return nil
}
