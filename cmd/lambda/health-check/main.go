// health-check Lambda reports point-in-time health of one region.
package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

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

func handleHealthCheck(ctx context.Context, d *intlambda.Deps, req types.HealthRequest) (types.HealthResponse, error) {
	checker, err := d.CheckerFor(req.Region)
	if err != nil {
		return types.HealthResponse{
			Status:    "unhealthy",
			Region:    req.Region,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, nil
	}
	return checker.Check(ctx), nil
}

func handler(ctx context.Context, req types.HealthRequest) (types.HealthResponse, error) {
	d, err := getDeps()
	if err != nil {
		return types.HealthResponse{}, err
	}
	return handleHealthCheck(ctx, d, req)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
