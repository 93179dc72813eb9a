// meridian is the DR control-plane CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridian-dr/meridian/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "meridian",
		Short: "Disaster-recovery control plane for multi-region deployments",
		Long: `Meridian validates cross-region data consistency, measures replication
lag, manages table backups, and orchestrates failover between a primary
region and its disaster-recovery counterpart.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewValidateCmd(),
		commands.NewFailoverCmd(),
		commands.NewBackupCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
