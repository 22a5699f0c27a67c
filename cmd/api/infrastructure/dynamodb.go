package infrastructure

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"dynamo-user-service/internal/config"
)

// The local emulator accepts any region and credentials.
const (
	localRegion    = "localhost"
	localAccessKey = "local"
	localSecret    = "local"
)

// NewDynamoClient creates a DynamoDB client. In local mode it targets cfg.Endpoint,
// otherwise the managed endpoint for cfg.Region with static credentials.
func NewDynamoClient(ctx context.Context, cfg config.DynamoConfig, l *zap.Logger) (*dynamodb.Client, error) {
	region := cfg.Region
	accessKey, secret := cfg.AccessKeyID, cfg.SecretAccessKey
	if cfg.Local {
		if region == "" {
			region = localRegion
		}
		if accessKey == "" || secret == "" {
			accessKey, secret = localAccessKey, localSecret
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secret, cfg.SessionToken)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for DynamoDB: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Local {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	if cfg.Local {
		l.Info("using local DynamoDB", zap.String("endpoint", cfg.Endpoint), zap.String("table", cfg.Table))
	} else {
		l.Info("using managed DynamoDB", zap.String("region", region), zap.String("table", cfg.Table))
	}

	return client, nil
}
