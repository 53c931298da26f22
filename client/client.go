// Package client calls functions served by the local Invoke API with the
// AWS SDK.
package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// Response 同步调用的结果
type Response struct {
	Payload         []byte
	FunctionError   string
	Logs            string
	ExecutedVersion string
	StatusCode      int32
}

// Failed 函数是否报告了错误
func (r *Response) Failed() bool {
	return r.FunctionError != ""
}

// Client Invoke API 客户端
type Client struct {
	*Options
}

// NewClient 创建新的客户端实例
// 未注入 LambdaClient 时，使用本地静态凭证和 Endpoint 构建 SDK 客户端
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		Options: NewOptions(opts...),
	}
	if c.FunctionName == "" {
		return nil, errors.New("client: function name is required")
	}
	if c.LambdaClient != nil {
		return c, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("client: load aws config: %w", err)
	}
	c.LambdaClient = lambda.NewFromConfig(cfg, func(o *lambda.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
	})
	return c, nil
}

// Invoke 同步调用函数，并请求尾部日志
func (c *Client) Invoke(ctx context.Context, payload []byte) (*Response, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.LambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.FunctionName),
		InvocationType: types.InvocationTypeRequestResponse,
		LogType:        types.LogTypeTail,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("client: invoke %s: %w", c.FunctionName, err)
	}

	rsp := &Response{
		Payload:         out.Payload,
		FunctionError:   aws.ToString(out.FunctionError),
		ExecutedVersion: aws.ToString(out.ExecutedVersion),
		StatusCode:      out.StatusCode,
	}
	if out.LogResult != nil {
		logs, err := base64.StdEncoding.DecodeString(*out.LogResult)
		if err != nil {
			return nil, fmt.Errorf("client: decode log result: %w", err)
		}
		rsp.Logs = string(logs)
	}
	return rsp, nil
}

// Send 异步调用函数，InvocationType 为 Event，成功提交后立即返回
func (c *Client) Send(ctx context.Context, payload []byte) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.LambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.FunctionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("client: send %s: %w", c.FunctionName, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.DefaultTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.DefaultTimeout)
}
