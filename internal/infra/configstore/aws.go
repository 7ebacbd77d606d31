// Where: fnctl/internal/infra/configstore/aws.go
// What: S3 and DynamoDB backed config sources.
// Why: Materialize runtime config snapshots kept in AWS-compatible stores.
package configstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/poruru/edge-serverless-box/fnctl/internal/domain/value"
)

const defaultAWSRegion = "us-east-1"

// AWSOptions configures SDK clients. Empty fields fall back to the SDK's
// default resolution chain.
type AWSOptions struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func loadAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = defaultAWSRegion
	}

	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loaders = append(loaders, config.WithCredentialsProvider(creds))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads <Prefix><projectID>.json from Bucket.
type S3Source struct {
	Client S3API
	Bucket string
	Prefix string
}

// NewS3Source builds an S3Source with an SDK client.
func NewS3Source(ctx context.Context, opts AWSOptions, bucket, prefix string) (*S3Source, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if opts.Endpoint != "" {
			options.BaseEndpoint = aws.String(opts.Endpoint)
			options.UsePathStyle = true
		}
	})
	return &S3Source{Client: client, Bucket: bucket, Prefix: prefix}, nil
}

func (s *S3Source) Materialize(ctx context.Context, projectID string) (map[string]any, error) {
	key := s.Prefix + projectID + ".json"
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.Bucket, key, err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.Bucket, key, err)
	}
	return decodeSnapshot(payload)
}

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDBSource.
type DynamoDBAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Attribute names of the config table: one item per dotted config key.
const (
	AttrProject = "project"
	AttrKey     = "key"
	AttrValue   = "value"
)

// DynamoDBSource queries Table for items of a project and re-nests their dotted keys.
type DynamoDBSource struct {
	Client DynamoDBAPI
	Table  string
}

// NewDynamoDBSource builds a DynamoDBSource with an SDK client.
func NewDynamoDBSource(ctx context.Context, opts AWSOptions, table string) (*DynamoDBSource, error) {
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(cfg, func(options *dynamodb.Options) {
		if opts.Endpoint != "" {
			options.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &DynamoDBSource{Client: client, Table: table}, nil
}

func (s *DynamoDBSource) Materialize(ctx context.Context, projectID string) (map[string]any, error) {
	out := map[string]any{}
	var startKey map[string]types.AttributeValue
	for {
		resp, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.Table),
			KeyConditionExpression: aws.String("#p = :p"),
			ExpressionAttributeNames: map[string]string{
				"#p": AttrProject,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":p": &types.AttributeValueMemberS{Value: projectID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", s.Table, err)
		}
		for _, item := range resp.Items {
			key := attributeString(item[AttrKey])
			if strings.TrimSpace(key) == "" {
				continue
			}
			value.SetPath(out, key, attributeString(item[AttrValue]))
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = resp.LastEvaluatedKey
	}
}

func attributeString(attr types.AttributeValue) string {
	switch typed := attr.(type) {
	case *types.AttributeValueMemberS:
		return typed.Value
	case *types.AttributeValueMemberN:
		return typed.Value
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprint(typed.Value)
	}
	return ""
}
