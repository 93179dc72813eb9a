package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/pkg/types"
)

// NewBackupCmd creates the backup command.
func NewBackupCmd() *cobra.Command {
	var backupType string

	cmd := &cobra.Command{
		Use:   "backup <table>",
		Short: "Extract a table to blob storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd.Context(), args[0], backupType)
		},
	}

	cmd.Flags().StringVar(&backupType, "type", "full", "backup type: full or incremental")
	return cmd
}

func runBackup(ctx context.Context, table, backupType string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Backup.Bucket == "" {
		return fmt.Errorf("backup.bucket is not configured")
	}

	services, err := buildServices(ctx, cfg, newLogger())
	if err != nil {
		return err
	}

	resp, err := services.Backup.Run(ctx, types.BackupRequest{
		TableName:  table,
		BackupType: backupType,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
