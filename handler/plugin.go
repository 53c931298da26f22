package handler

import (
	"fmt"
	"plugin"
	"reflect"

	"github.com/aura-studio/lambda-local/invocation"
	"github.com/aws/aws-lambda-go/lambda"
)

// loadPlugin opens a Go plugin and looks up symbol as the handler.
func loadPlugin(path, symbol string) (invocation.Handler, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("handler: open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("handler: lookup %s in %s: %w", symbol, path, err)
	}
	h, err := fromSymbol(sym)
	if err != nil {
		return nil, fmt.Errorf("handler: %s in %s: %w", symbol, path, err)
	}
	return h, nil
}

// fromSymbol accepts the native handler signature, a lambda.Handler, or any
// function lambda.NewHandler understands. Variables are looked up as
// pointers and dereferenced.
func fromSymbol(sym any) (invocation.Handler, error) {
	switch v := sym.(type) {
	case invocation.Handler:
		return v, nil
	case func(any, *invocation.Context, invocation.Callback):
		return v, nil
	case *invocation.Handler:
		return *v, nil
	case lambda.Handler:
		return FromLambdaHandler(v), nil
	}

	rv := reflect.ValueOf(sym)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return fromSymbol(rv.Elem().Interface())
	}
	if rv.Kind() == reflect.Func && !rv.IsNil() {
		return Lambda(sym), nil
	}
	return nil, fmt.Errorf("unsupported handler type %T", sym)
}
