// validator Lambda runs one cross-region consistency validation pass.
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

func handleValidate(ctx context.Context, d *intlambda.Deps, req types.ValidationRequest) (types.ValidationResponse, error) {
	return d.Validator.Run(ctx, req), nil
}

func handler(ctx context.Context, req types.ValidationRequest) (types.ValidationResponse, error) {
	d, err := getDeps()
	if err != nil {
		return types.ValidationResponse{}, err
	}
	return handleValidate(ctx, d, req)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
