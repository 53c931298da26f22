// Package invocation synthesizes the runtime objects a Lambda handler
// receives: the invocation context with its completion methods and the
// callback signature.
package invocation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/google/uuid"
)

// Callback is the bare completion function passed to handlers next to the
// context.
type Callback func(err any, result any)

// Handler is the signature every loaded handler is reduced to.
type Handler func(event any, ctx *Context, callback Callback)

// Context mirrors the context object the platform hands to a handler.
type Context struct {
	AwsRequestID       string
	LogGroupName       string
	LogStreamName      string
	FunctionName       string
	FunctionVersion    string
	InvokedFunctionArn string
	MemoryLimitInMB    int
	StartTime          time.Time

	region   string
	timeout  time.Duration
	now      func() time.Time
	complete Completer
}

// Factory creates one Context per invocation.
type Factory struct {
	*Options
}

func NewFactory(opts ...Option) *Factory {
	return &Factory{
		Options: NewOptions(opts...),
	}
}

// New builds the context for a single invocation. Completions reported by
// the context are passed to complete.
func (f *Factory) New(timeout time.Duration, complete Completer) *Context {
	start := f.Now()
	id := f.NewRequestID()
	return &Context{
		AwsRequestID:       id,
		LogGroupName:       LogGroupName(f.FunctionName),
		LogStreamName:      LogStreamName(start, id),
		FunctionName:       f.FunctionName,
		FunctionVersion:    f.FunctionVersion,
		InvokedFunctionArn: FunctionArn(f.Region, f.AccountID, f.FunctionName),
		MemoryLimitInMB:    f.MemoryLimitInMB,
		StartTime:          start,
		region:             f.Region,
		timeout:            timeout,
		now:                f.Now,
		complete:           complete,
	}
}

// Environment returns the function-level variables the platform exports
// into the runtime environment.
func (f *Factory) Environment() map[string]string {
	return map[string]string{
		"AWS_LAMBDA_FUNCTION_NAME":        f.FunctionName,
		"AWS_LAMBDA_FUNCTION_VERSION":     f.FunctionVersion,
		"AWS_LAMBDA_FUNCTION_MEMORY_SIZE": strconv.Itoa(f.MemoryLimitInMB),
		"AWS_LAMBDA_LOG_GROUP_NAME":       LogGroupName(f.FunctionName),
		"AWS_REGION":                      f.Region,
		"AWS_DEFAULT_REGION":              f.Region,
	}
}

func newRequestID() string {
	return uuid.New().String()
}

func LogGroupName(functionName string) string {
	return "/aws/lambda/" + functionName
}

func LogStreamName(t time.Time, requestID string) string {
	return t.UTC().Format("2006/01/02") + "/[$LATEST]" + strings.ReplaceAll(requestID, "-", "")
}

func FunctionArn(region, account, functionName string) string {
	return arn.ARN{
		Partition: "aws",
		Service:   "lambda",
		Region:    region,
		AccountID: account,
		Resource:  "function:" + functionName,
	}.String()
}

// Deadline is the instant the invocation runs out of time.
func (c *Context) Deadline() time.Time {
	return c.StartTime.Add(c.timeout)
}

// GetRemainingTimeInMillis approximates the time left before the timeout.
// It never gates execution; the harness timer does.
func (c *Context) GetRemainingTimeInMillis() int64 {
	remaining := c.timeout - c.now().Sub(c.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining.Milliseconds()
}

// Succeed completes the invocation successfully, printing result as JSON
// when it is non-nil.
func (c *Context) Succeed(result any) {
	c.finish(Succeeded(result))
}

// Fail completes the invocation with a failure exit.
func (c *Context) Fail(err any) {
	c.finish(Failed(err))
}

// Done dispatches to Succeed when err is nil and to Fail otherwise.
func (c *Context) Done(err any, result any) {
	if IsNil(err) {
		c.Succeed(result)
		return
	}
	c.Fail(err)
}

func (c *Context) finish(completion Completion) {
	if c.complete != nil {
		c.complete(completion)
	}
}

// WithContext derives a context.Context carrying the aws-lambda-go
// LambdaContext and the invocation deadline.
func (c *Context) WithContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := lambdacontext.NewContext(parent, &lambdacontext.LambdaContext{
		AwsRequestID:       c.AwsRequestID,
		InvokedFunctionArn: c.InvokedFunctionArn,
	})
	return context.WithDeadline(ctx, c.Deadline())
}

// Environment returns the variables the platform would set for this
// invocation.
func (c *Context) Environment() map[string]string {
	return map[string]string{
		"AWS_LAMBDA_FUNCTION_NAME":        c.FunctionName,
		"AWS_LAMBDA_FUNCTION_VERSION":     c.FunctionVersion,
		"AWS_LAMBDA_FUNCTION_MEMORY_SIZE": strconv.Itoa(c.MemoryLimitInMB),
		"AWS_LAMBDA_LOG_GROUP_NAME":       c.LogGroupName,
		"AWS_LAMBDA_LOG_STREAM_NAME":      c.LogStreamName,
		"AWS_REGION":                      c.region,
		"AWS_DEFAULT_REGION":              c.region,
	}
}
