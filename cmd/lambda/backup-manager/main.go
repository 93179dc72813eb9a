// backup-manager Lambda extracts one table to blob storage.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/meridian-dr/meridian/internal/lambda"
	"github.com/meridian-dr/meridian/pkg/types"
)

var (
	deps     *intlambda.Deps
	depsOnce sync.Once
	depsErr  error
)

func getDeps() (*intlambda.Deps, error) {
	depsOnce.Do(func() {
		deps, depsErr = intlambda.Init(context.Background())
	})
	return deps, depsErr
}

func handleBackup(ctx context.Context, d *intlambda.Deps, req types.BackupRequest) (types.BackupResponse, error) {
	if d.Backup == nil {
		return types.BackupResponse{}, fmt.Errorf("BACKUP_BUCKET environment variable required")
	}
	resp, err := d.Backup.Run(ctx, req)
	if err != nil {
		d.Logger.Error("backup failed", "table", req.TableName, "error", err)
		return types.BackupResponse{}, err
	}
	return resp, nil
}

func handler(ctx context.Context, req types.BackupRequest) (types.BackupResponse, error) {
	d, err := getDeps()
	if err != nil {
		return types.BackupResponse{}, err
	}
	return handleBackup(ctx, d, req)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
