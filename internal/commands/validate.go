package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/pkg/types"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var (
		mode   string
		table  string
		action string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run a cross-region consistency validation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), mode, table, action)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "validation mode: full, incremental, or specific")
	cmd.Flags().StringVar(&table, "table", "", "single table to validate (implies --mode specific)")
	cmd.Flags().StringVar(&action, "action", "", "action: validate or sync")
	return cmd
}

func runValidate(ctx context.Context, mode, table, action string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	services, err := buildServices(ctx, cfg, newLogger())
	if err != nil {
		return err
	}

	req := types.ValidationRequest{
		ValidationMode: types.ValidationMode(mode),
		TableName:      table,
		Action:         types.ActionType(action),
	}
	if table != "" && mode == "" {
		req.ValidationMode = types.ModeSpecific
	}

	resp := services.Validator.Run(ctx, req)
	return printJSON(resp)
}
