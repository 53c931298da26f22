package harness

import (
	"encoding/json"
	"fmt"

	"github.com/aura-studio/lambda-local/invocation"
)

// callbackCompletion renders the bare callback. It always exits 0, unlike
// Context.Fail.
func callbackCompletion(errValue any, result any, stack []byte) invocation.Completion {
	if invocation.IsNil(errValue) {
		c := invocation.Completion{Kind: invocation.KindSuccess, Result: result}
		if invocation.IsNil(result) {
			return c
		}
		b, err := json.Marshal(result)
		if err != nil {
			return invocation.Failed(fmt.Errorf("harness: marshal result: %w", err))
		}
		c.Output = string(b)
		return c
	}

	c := invocation.Completion{
		Kind:          invocation.KindSuccess,
		Err:           errValue,
		FunctionError: true,
	}
	if err, ok := errValue.(error); ok {
		payload := invocation.NewErrorPayload(err, string(stack))
		if b, mErr := json.Marshal(payload); mErr == nil {
			c.Output = string(b)
			return c
		}
	}
	c.Output = fmt.Sprintf("errorMessage: %v", errValue)
	return c
}
