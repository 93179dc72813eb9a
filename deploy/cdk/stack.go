package main

import (
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsevents"
	"github.com/aws/aws-cdk-go/awscdk/v2/awseventstargets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

func NewMeridianStack(scope constructs.Construct, id string, cfg StackConfig) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &awscdk.StackProps{
		Env: &awscdk.Environment{Region: jsii.String(cfg.SourceRegion)},
	})

	replicas := &[]*awsdynamodb.ReplicaTableProps{
		{Region: jsii.String(cfg.TargetRegion)},
	}

	// Application table, replicated to the DR region via Global Tables.
	appTable := awsdynamodb.NewTableV2(stack, jsii.String("ApplicationTable"), &awsdynamodb.TablePropsV2{
		TableName: jsii.String(cfg.Prefix + "-application-table"),
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("id"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		Billing:       awsdynamodb.Billing_OnDemand(nil),
		Replicas:      replicas,
		RemovalPolicy: removalPolicy(cfg.DestroyOnDelete),
	})

	// Sentinel table carries the lag probe markers; it must replicate the
	// same way the application data does.
	sentinelTable := awsdynamodb.NewTableV2(stack, jsii.String("SentinelTable"), &awsdynamodb.TablePropsV2{
		TableName: jsii.String(cfg.Prefix + "-sentinel-table"),
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("id"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		Billing:       awsdynamodb.Billing_OnDemand(nil),
		Replicas:      replicas,
		RemovalPolicy: removalPolicy(cfg.DestroyOnDelete),
	})

	// Metadata table: backup records plus the failover status slot. Control
	// state lives in the source region only.
	metadataTable := awsdynamodb.NewTableV2(stack, jsii.String("MetadataTable"), &awsdynamodb.TablePropsV2{
		TableName: jsii.String(cfg.Prefix + "-backup-metadata"),
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("backup_id"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		Billing:       awsdynamodb.Billing_OnDemand(nil),
		RemovalPolicy: removalPolicy(cfg.DestroyOnDelete),
	})

	bucket := awss3.NewBucket(stack, jsii.String("BackupBucket"), &awss3.BucketProps{
		BucketName:        jsii.String(cfg.Prefix + "-backup-" + cfg.SourceRegion),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		RemovalPolicy:     removalPolicy(cfg.DestroyOnDelete),
		LifecycleRules: &[]*awss3.LifecycleRule{
			{
				Id:         jsii.String("expire-old-backups"),
				Expiration: awscdk.Duration_Days(jsii.Number(cfg.RetentionDays)),
			},
		},
	})

	topic := awssns.NewTopic(stack, jsii.String("AlertTopic"), &awssns.TopicProps{
		TopicName: jsii.String(cfg.Prefix + "-alerts"),
	})

	commonEnv := &map[string]*string{
		"REGION_SOURCE":  jsii.String(cfg.SourceRegion),
		"REGION_TARGET":  jsii.String(cfg.TargetRegion),
		"SENTINEL_TABLE": sentinelTable.TableName(),
		"METADATA_TABLE": metadataTable.TableName(),
		"DEFAULT_TABLES": jsii.String(cfg.Prefix + "-application-table," + cfg.Prefix + "-sentinel-table"),
		"BACKUP_BUCKET":  bucket.BucketName(),
		"SNS_TOPIC_ARN":  topic.TopicArn(),
	}

	timeout := awscdk.Duration_Seconds(jsii.Number(cfg.Timeout))
	memorySize := jsii.Number(cfg.MemorySize)
	logRetention := logRetentionDays(cfg.LogRetentionDays)

	makeFn := func(name string) awslambda.Function {
		return awslambda.NewFunction(stack, jsii.String(name), &awslambda.FunctionProps{
			FunctionName: jsii.String(cfg.Prefix + "-" + name),
			Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
			Handler:      jsii.String("bootstrap"),
			Code:         awslambda.Code_FromAsset(jsii.String(filepath.Join(cfg.LambdaDistDir, name)), nil),
			Architecture: awslambda.Architecture_ARM_64(),
			MemorySize:   memorySize,
			Timeout:      timeout,
			Environment:  commonEnv,
			LogRetention: logRetention,
		})
	}

	validatorFn := makeFn("validator")
	failoverFn := makeFn("failover")
	backupFn := makeFn("backup-manager")
	healthFn := makeFn("health-check")

	// DynamoDB grants. The validator and health check only read; the backup
	// manager scans the application table and writes metadata; the failover
	// controller writes the status record.
	for _, fn := range []awslambda.Function{validatorFn, healthFn} {
		appTable.GrantReadData(fn)
		sentinelTable.GrantReadWriteData(fn) // marker writes and deletes
		metadataTable.GrantReadData(fn)
	}
	appTable.GrantReadData(backupFn)
	metadataTable.GrantReadWriteData(backupFn)
	metadataTable.GrantReadWriteData(failoverFn)
	sentinelTable.GrantReadData(failoverFn)
	appTable.GrantReadData(failoverFn)

	bucket.GrantReadWrite(backupFn, nil)
	bucket.GrantRead(validatorFn, nil)
	bucket.GrantRead(healthFn, nil)

	topic.GrantPublish(validatorFn)
	topic.GrantPublish(failoverFn)

	// Scheduled validation sweep.
	rule := awsevents.NewRule(stack, jsii.String("ValidationSchedule"), &awsevents.RuleProps{
		RuleName: jsii.String(cfg.Prefix + "-validation-schedule"),
		Schedule: awsevents.Schedule_Expression(jsii.String(cfg.ValidationRate)),
	})
	rule.AddTarget(awseventstargets.NewLambdaFunction(validatorFn, nil))

	awscdk.NewCfnOutput(stack, jsii.String("ApplicationTableName"), &awscdk.CfnOutputProps{
		Value: appTable.TableName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("BackupBucketName"), &awscdk.CfnOutputProps{
		Value: bucket.BucketName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("TopicArn"), &awscdk.CfnOutputProps{
		Value: topic.TopicArn(),
	})

	return stack
}

func removalPolicy(destroy bool) awscdk.RemovalPolicy {
	if destroy {
		return awscdk.RemovalPolicy_DESTROY
	}
	return awscdk.RemovalPolicy_RETAIN
}

func logRetentionDays(days float64) awslogs.RetentionDays {
	switch days {
	case 1:
		return awslogs.RetentionDays_ONE_DAY
	case 3:
		return awslogs.RetentionDays_THREE_DAYS
	case 5:
		return awslogs.RetentionDays_FIVE_DAYS
	case 7:
		return awslogs.RetentionDays_ONE_WEEK
	case 14:
		return awslogs.RetentionDays_TWO_WEEKS
	case 30:
		return awslogs.RetentionDays_ONE_MONTH
	case 60:
		return awslogs.RetentionDays_TWO_MONTHS
	case 90:
		return awslogs.RetentionDays_THREE_MONTHS
	case 365:
		return awslogs.RetentionDays_ONE_YEAR
	default:
		return awslogs.RetentionDays_ONE_WEEK
	}
}
