package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
)

// LambdaAPI is the part of the Lambda client the invoker needs.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaInvoker sends the request as an API Gateway style event to a function; target is its ARN.
type LambdaInvoker struct {
	client LambdaAPI
	log    zerolog.Logger
}

func NewLambdaInvoker(client LambdaAPI, log zerolog.Logger) *LambdaInvoker {
	return &LambdaInvoker{
		client: client,
		log:    log.With().Str("client", "account_lambda").Logger(),
	}
}

// NewLambdaClient loads the default AWS credential chain. An empty region defers to the environment.
func NewLambdaClient(ctx context.Context, region string) (*lambda.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return lambda.NewFromConfig(cfg), nil
}

func (i *LambdaInvoker) Invoke(ctx context.Context, target string, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	out, err := i.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(target),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", target, err)
	}

	i.log.Info().
		Str("function", target).
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int32("status", out.StatusCode).
		Msg("account function responded")

	if out.FunctionError != nil {
		i.log.Error().Str("function_error", *out.FunctionError).Bytes("payload", out.Payload).Msg("account function failed")
		return nil, fmt.Errorf("function %s execution failed: %s", target, *out.FunctionError)
	}

	var resp Response
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from function %s: %w", target, err)
	}
	return &resp, nil
}
