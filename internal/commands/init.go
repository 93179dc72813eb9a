package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Initialize a new Meridian project",
		Long:  "Creates a project directory with a starter meridian.yaml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0])
		},
	}
}

func runInit(projectName string) error {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Initializing Meridian project: %s\n", projectName)

	if err := os.MkdirAll(projectName, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", projectName, err)
	}

	configPath := filepath.Join(projectName, "meridian.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	configContent := `regions:
  source: us-east-1
  target: us-west-2

tables:
  default:
    - dr-application-table
    - dr-sentinel-table
  sentinel: dr-sentinel-table
  metadata: dr-backup-metadata

thresholds:
  minConsistencyScore: 95
  maxReplicationLagSeconds: 60
  maxBackupAgeHours: 24
  maxRetentionDays: 30

backup:
  bucket: ""
  prefix: backups

alerts:
  - type: console

serverAddr: ":8080"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	color.Green("Created %s", configPath)
	fmt.Println("Next steps:")
	fmt.Println("  1. Set backup.bucket to your S3 bucket")
	fmt.Println("  2. meridian validate")
	fmt.Println("  3. meridian serve")
	return nil
}
