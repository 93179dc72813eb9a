// failover Lambda executes region transition requests.
package main

import (
	"context"
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

func handleFailover(ctx context.Context, d *intlambda.Deps, req types.FailoverRequest) (types.FailoverResponse, error) {
	return d.Orchestrator.Execute(ctx, req), nil
}

func handler(ctx context.Context, req types.FailoverRequest) (types.FailoverResponse, error) {
	d, err := getDeps()
	if err != nil {
		return types.FailoverResponse{}, err
	}
	return handleFailover(ctx, d, req)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
