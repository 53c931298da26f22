package server

import (
	"github.com/aura-studio/lambda-local/dynamic"
	"github.com/aura-studio/lambda-local/handler"
)

// ServeOption is an Option, a dynamic.Option or a handler.Option.
type ServeOption any

type serveOptionBag struct {
	server  []Option
	dynamic []dynamic.Option
	handler []handler.Option
	err     error
}

func (b *serveOptionBag) apply(opts ...ServeOption) {
	for _, opt := range opts {
		switch o := opt.(type) {
		case Option:
			b.server = append(b.server, o)
		case dynamic.Option:
			b.dynamic = append(b.dynamic, o)
		case handler.Option:
			b.handler = append(b.handler, o)
		case serveConfigOption:
			if o.err != nil && b.err == nil {
				b.err = o.err
			}
			if o.server != nil {
				b.server = append(b.server, o.server)
			}
			if o.dynamic != nil {
				b.dynamic = append(b.dynamic, o.dynamic)
			}
		}
	}
}
