package main

// StackConfig holds configuration for the Meridian CDK stack.
type StackConfig struct {
	Prefix           string
	SourceRegion     string
	TargetRegion     string
	MemorySize       float64
	Timeout          float64
	LambdaDistDir    string
	LogRetentionDays float64
	RetentionDays    float64
	ValidationRate   string
	DestroyOnDelete  bool
}

// DefaultConfig returns a StackConfig with sensible defaults.
func DefaultConfig() StackConfig {
	return StackConfig{
		Prefix:           "dr",
		SourceRegion:     "us-east-1",
		TargetRegion:     "us-west-2",
		MemorySize:       256,
		Timeout:          300,
		LambdaDistDir:    "../dist/lambda",
		LogRetentionDays: 7,
		RetentionDays:    30,
		ValidationRate:   "rate(15 minutes)",
	}
}
