package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/require"
)

// setupTestDirs creates temp directories with dummy bootstrap files so CDK
// asset resolution succeeds without a real build.
func setupTestDirs(t *testing.T) StackConfig {
	t.Helper()
	tmp := t.TempDir()

	lambdaDir := filepath.Join(tmp, "lambda")
	handlers := []string{"validator", "failover", "backup-manager", "health-check"}
	for _, h := range handlers {
		dir := filepath.Join(lambdaDir, h)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bootstrap"), []byte("#!/bin/sh\n"), 0o755))
	}

	cfg := DefaultConfig()
	cfg.LambdaDistDir = lambdaDir
	return cfg
}

func synthTemplate(t *testing.T, cfg StackConfig) assertions.Template {
	t.Helper()
	app := awscdk.NewApp(nil)
	stack := NewMeridianStack(app, "TestStack", cfg)
	return assertions.Template_FromStack(stack, nil)
}

func TestApplicationTableIsGlobal(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	tmpl.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]interface{}{
		"TableName": jsii.String("dr-application-table"),
		"KeySchema": &[]interface{}{
			map[string]interface{}{"AttributeName": jsii.String("id"), "KeyType": jsii.String("HASH")},
		},
		"Replicas": assertions.Match_AnyValue(),
	})
}

func TestSentinelTableIsGlobal(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	tmpl.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]interface{}{
		"TableName": jsii.String("dr-sentinel-table"),
	})
}

func TestMetadataTableKeyedByBackupID(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	tmpl.HasResourceProperties(jsii.String("AWS::DynamoDB::GlobalTable"), map[string]interface{}{
		"TableName": jsii.String("dr-backup-metadata"),
		"KeySchema": &[]interface{}{
			map[string]interface{}{"AttributeName": jsii.String("backup_id"), "KeyType": jsii.String("HASH")},
		},
	})
}

func TestBackupBucketLifecycle(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	tmpl.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]interface{}{
		"LifecycleConfiguration": map[string]interface{}{
			"Rules": &[]interface{}{
				map[string]interface{}{
					"Id":               jsii.String("expire-old-backups"),
					"ExpirationInDays": jsii.Number(30),
					"Status":           jsii.String("Enabled"),
				},
			},
		},
	})
}

func TestLambdaFunctions(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	for _, name := range []string{"dr-validator", "dr-failover", "dr-backup-manager", "dr-health-check"} {
		tmpl.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]interface{}{
			"FunctionName": jsii.String(name),
			"Runtime":      jsii.String("provided.al2023"),
			"Handler":      jsii.String("bootstrap"),
			"Environment": map[string]interface{}{
				"Variables": assertions.Match_ObjectLike(&map[string]interface{}{
					"REGION_SOURCE": jsii.String("us-east-1"),
					"REGION_TARGET": jsii.String("us-west-2"),
				}),
			},
		})
	}
}

func TestValidationSchedule(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	tmpl.HasResourceProperties(jsii.String("AWS::Events::Rule"), map[string]interface{}{
		"ScheduleExpression": jsii.String("rate(15 minutes)"),
	})
}

func TestAlertTopic(t *testing.T) {
	cfg := setupTestDirs(t)
	tmpl := synthTemplate(t, cfg)

	tmpl.HasResourceProperties(jsii.String("AWS::SNS::Topic"), map[string]interface{}{
		"TopicName": jsii.String("dr-alerts"),
	})
}
