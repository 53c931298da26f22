package invocation_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aura-studio/lambda-local/invocation"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var requestIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFactoryDefaults(t *testing.T) {
	start := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	f := invocation.NewFactory(
		invocation.WithClock(fixedClock(start)),
		invocation.WithRequestIDGenerator(func() string { return "0a1b2c3d-0000-1111-2222-333344445555" }),
	)
	c := f.New(3*time.Second, nil)

	if c.FunctionName != "func" {
		t.Errorf("FunctionName = %q, want 'func'", c.FunctionName)
	}
	if c.FunctionVersion != "1.0" {
		t.Errorf("FunctionVersion = %q, want '1.0'", c.FunctionVersion)
	}
	if c.MemoryLimitInMB != 128 {
		t.Errorf("MemoryLimitInMB = %d, want 128", c.MemoryLimitInMB)
	}
	if c.LogGroupName != "/aws/lambda/func" {
		t.Errorf("LogGroupName = %q", c.LogGroupName)
	}
	if want := "2024/03/07/[$LATEST]0a1b2c3d000011112222333344445555"; c.LogStreamName != want {
		t.Errorf("LogStreamName = %q, want %q", c.LogStreamName, want)
	}
	if want := "arn:aws:lambda:aws-region:1234567890123:function:func"; c.InvokedFunctionArn != want {
		t.Errorf("InvokedFunctionArn = %q, want %q", c.InvokedFunctionArn, want)
	}
	if !c.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", c.StartTime, start)
	}
}

func TestFactoryOptions(t *testing.T) {
	f := invocation.NewFactory(
		invocation.WithFunctionName("orders"),
		invocation.WithFunctionVersion("7"),
		invocation.WithMemoryLimit(512),
		invocation.WithRegion("eu-west-1"),
		invocation.WithAccountID("111122223333"),
	)
	c := f.New(time.Second, nil)

	if c.InvokedFunctionArn != "arn:aws:lambda:eu-west-1:111122223333:function:orders" {
		t.Errorf("InvokedFunctionArn = %q", c.InvokedFunctionArn)
	}
	env := c.Environment()
	if env["AWS_LAMBDA_FUNCTION_MEMORY_SIZE"] != "512" {
		t.Errorf("memory env = %q", env["AWS_LAMBDA_FUNCTION_MEMORY_SIZE"])
	}
	if env["AWS_LAMBDA_LOG_STREAM_NAME"] != c.LogStreamName {
		t.Errorf("log stream env = %q", env["AWS_LAMBDA_LOG_STREAM_NAME"])
	}
	if env["AWS_REGION"] != "eu-west-1" {
		t.Errorf("region env = %q", env["AWS_REGION"])
	}
	if f.Environment()["AWS_LAMBDA_FUNCTION_VERSION"] != "7" {
		t.Errorf("factory version env = %q", f.Environment()["AWS_LAMBDA_FUNCTION_VERSION"])
	}
}

func TestRequestIDFormat(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	f := invocation.NewFactory()

	properties.Property("request ids are 8-4-4-4-12 hex groups", prop.ForAll(
		func(name string) bool {
			c := invocation.NewFactory(invocation.WithFunctionName(name)).New(time.Second, nil)
			return requestIDPattern.MatchString(c.AwsRequestID)
		},
		gen.Identifier(),
	))

	properties.Property("consecutive request ids differ", prop.ForAll(
		func(_ int) bool {
			return f.New(time.Second, nil).AwsRequestID != f.New(time.Second, nil).AwsRequestID
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}

func TestRemainingTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	f := invocation.NewFactory(invocation.WithClock(func() time.Time { return now }))
	c := f.New(3*time.Second, nil)

	if got := c.GetRemainingTimeInMillis(); got != 3000 {
		t.Errorf("remaining at start = %d, want 3000", got)
	}
	now = start.Add(1250 * time.Millisecond)
	if got := c.GetRemainingTimeInMillis(); got != 1750 {
		t.Errorf("remaining after 1.25s = %d, want 1750", got)
	}
	now = start.Add(5 * time.Second)
	if got := c.GetRemainingTimeInMillis(); got != 0 {
		t.Errorf("remaining after timeout = %d, want 0", got)
	}
}

func TestCompletionMethods(t *testing.T) {
	var got []invocation.Completion
	c := invocation.NewFactory().New(time.Second, func(comp invocation.Completion) {
		got = append(got, comp)
	})

	c.Succeed(map[string]bool{"ok": true})
	c.Succeed(nil)
	c.Fail("boom")
	c.Fail(nil)
	c.Done(nil, 42)
	c.Done(errors.New("bad"), 42)

	want := []struct {
		kind   invocation.Kind
		output string
		code   int
	}{
		{invocation.KindSuccess, `{"ok":true}`, 0},
		{invocation.KindSuccess, "", 0},
		{invocation.KindFailure, "boom", 1},
		{invocation.KindFailure, "", 1},
		{invocation.KindSuccess, "42", 0},
		{invocation.KindFailure, "bad", 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d completions, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Output != w.output || got[i].ExitCode != w.code {
			t.Errorf("completion %d = {%v %q %d}, want {%v %q %d}",
				i, got[i].Kind, got[i].Output, got[i].ExitCode, w.kind, w.output, w.code)
		}
	}
}

func TestDoneTreatsTypedNilAsNoError(t *testing.T) {
	var got invocation.Completion
	c := invocation.NewFactory().New(time.Second, func(comp invocation.Completion) { got = comp })

	var err *customError
	c.Done(err, "fine")

	if got.Kind != invocation.KindSuccess || got.Output != `"fine"` {
		t.Errorf("got {%v %q}, want success with \"fine\"", got.Kind, got.Output)
	}
}

func TestSucceedUnencodableResult(t *testing.T) {
	comp := invocation.Succeeded(make(chan int))
	if comp.Kind != invocation.KindFailure || comp.ExitCode != 1 {
		t.Errorf("got {%v %d}, want failure exit 1", comp.Kind, comp.ExitCode)
	}
}

func TestWithContext(t *testing.T) {
	c := invocation.NewFactory().New(2*time.Second, nil)
	ctx, cancel := c.WithContext(context.Background())
	defer cancel()

	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		t.Fatal("LambdaContext missing from context")
	}
	if lc.AwsRequestID != c.AwsRequestID || lc.InvokedFunctionArn != c.InvokedFunctionArn {
		t.Errorf("LambdaContext = %+v, want request id %q", lc, c.AwsRequestID)
	}
	deadline, ok := ctx.Deadline()
	if !ok || !deadline.Equal(c.Deadline()) {
		t.Errorf("deadline = %v, want %v", deadline, c.Deadline())
	}
}

func TestTimedOutMentionsTimeout(t *testing.T) {
	comp := invocation.TimedOut(100 * time.Millisecond)
	if comp.ExitCode != 0 || comp.Kind != invocation.KindTimeout {
		t.Errorf("got {%v %d}, want timeout exit 0", comp.Kind, comp.ExitCode)
	}
	if !regexp.MustCompile(`\b100\b`).MatchString(comp.Output) {
		t.Errorf("output %q should mention 100", comp.Output)
	}
}

type customError struct{}

func (*customError) Error() string { return "custom" }
