package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aura-studio/lambda-local/invocation"
	"github.com/aws/aws-lambda-go/lambda"
)

// Lambda adapts a function with any signature accepted by lambda.Start.
func Lambda(fn any) invocation.Handler {
	return FromLambdaHandler(lambda.NewHandler(fn))
}

// FromLambdaHandler adapts a lambda.Handler. The event is re-encoded as the
// JSON payload and the handler sees the invocation metadata through
// lambdacontext. Errors and results are reported through the callback.
func FromLambdaHandler(h lambda.Handler) invocation.Handler {
	return func(event any, c *invocation.Context, callback invocation.Callback) {
		payload, err := json.Marshal(event)
		if err != nil {
			callback(fmt.Errorf("handler: marshal event: %w", err), nil)
			return
		}

		ctx, cancel := c.WithContext(context.Background())
		defer cancel()

		out, err := h.Invoke(ctx, payload)
		if err != nil {
			callback(err, nil)
			return
		}
		callback(nil, rawResult(out))
	}
}

// rawResult keeps an encoded payload as-is so it is printed without a second
// round of encoding.
func rawResult(b []byte) any {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if !json.Valid(b) {
		return string(b)
	}
	return json.RawMessage(b)
}
