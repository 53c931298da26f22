package client

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/mohae/deepcopy"
)

// LambdaClient 只需要 Invoke，*lambda.Client 与测试替身都可以注入
type LambdaClient interface {
	Invoke(context.Context, *lambda.InvokeInput, ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Options 描述如何连接本地 Invoke API
type Options struct {
	LambdaClient   LambdaClient
	FunctionName   string
	DefaultTimeout time.Duration
	Endpoint       string
	Region         string
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	DefaultTimeout: 30 * time.Second,
	Endpoint:       "http://127.0.0.1:3001",
	Region:         "us-east-1",
}

// NewOptions 在默认值副本上依次应用 opts
func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	return options
}

// WithLambdaClient 注入现成的客户端，跳过 SDK 配置加载
func WithLambdaClient(c LambdaClient) Option {
	return OptionFunc(func(o *Options) {
		o.LambdaClient = c
	})
}

// WithFunctionName 设置要调用的函数名
func WithFunctionName(name string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionName = name
	})
}

// WithDefaultTimeout 设置单次调用的超时，0 表示只受 ctx 约束
func WithDefaultTimeout(d time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = d
	})
}

// WithEndpoint 设置本地 Invoke API 地址
func WithEndpoint(endpoint string) Option {
	return OptionFunc(func(o *Options) {
		if endpoint != "" {
			o.Endpoint = endpoint
		}
	})
}

// WithRegion 设置签名使用的区域
func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		if region != "" {
			o.Region = region
		}
	})
}
