package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)
	cfg := DefaultConfig()

	if prefix := os.Getenv("MERIDIAN_PREFIX"); prefix != "" {
		cfg.Prefix = prefix
	}
	if r := os.Getenv("MERIDIAN_REGION_SOURCE"); r != "" {
		cfg.SourceRegion = r
	}
	if r := os.Getenv("MERIDIAN_REGION_TARGET"); r != "" {
		cfg.TargetRegion = r
	}
	cfg.DestroyOnDelete = os.Getenv("MERIDIAN_DESTROY_ON_DELETE") == "true"

	stackName := "MeridianStack"
	if name := os.Getenv("MERIDIAN_STACK_NAME"); name != "" {
		stackName = name
	}

	NewMeridianStack(app, stackName, cfg)
	app.Synth(nil)
}
