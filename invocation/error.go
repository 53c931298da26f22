package invocation

import (
	"reflect"
)

// ErrorPayload is the structured error form printed for handler errors.
type ErrorPayload struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
	Stack        string `json:"stack"`
}

type errorTyper interface {
	ErrorType() string
}

type stackTracer interface {
	StackTrace() string
}

// NewErrorPayload builds the payload for err. Errors may provide their own
// type name and stack; otherwise the dynamic type and the given stack are
// used.
func NewErrorPayload(err error, stack string) ErrorPayload {
	p := ErrorPayload{
		ErrorMessage: err.Error(),
		ErrorType:    errorType(err),
		Stack:        stack,
	}
	if st, ok := err.(stackTracer); ok {
		if s := st.StackTrace(); s != "" {
			p.Stack = s
		}
	}
	return p
}

func errorType(err error) string {
	if et, ok := err.(errorTyper); ok {
		return et.ErrorType()
	}
	t := reflect.TypeOf(err)
	if t.Kind() == reflect.Ptr {
		return t.Elem().Name()
	}
	return t.Name()
}
