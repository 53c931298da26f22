// Package server exposes local handlers through the Lambda Invoke API so SDK
// clients can call them over HTTP.
package server

import (
	"os"
	"sync"

	"github.com/aura-studio/lambda-local/dynamic"
	"github.com/aura-studio/lambda-local/handler"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type Engine struct {
	*Options
	*gin.Engine
	*dynamic.Dynamic

	loader *handler.Loader

	// Invocations share the process-wide streams and lambdacontext globals.
	mu sync.Mutex
	// stray names the first in-process function that outlived its
	// invocation. Guarded by mu.
	stray string
}

func NewEngine(opts ...ServeOption) *Engine {
	bag := &serveOptionBag{}
	bag.apply(opts...)
	if bag.err != nil {
		panic(bag.err)
	}

	options := NewOptions(bag.server...)
	if options.Logger == nil {
		options.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "server"})
	}
	if options.DebugMode {
		options.Logger.SetLevel(log.DebugLevel)
	}

	if !options.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	d := dynamic.NewDynamic(options.Logger, bag.dynamic...)
	loaderOpts := append([]handler.Option{
		handler.WithLogger(options.Logger),
		handler.WithDebugMode(options.DebugMode),
		handler.WithDynamic(d),
	}, bag.handler...)

	e := &Engine{
		Options: options,
		Engine:  gin.New(),
		Dynamic: d,
		loader:  handler.NewLoader(loaderOpts...),
	}
	e.Use(gin.Recovery())
	if e.DebugMode {
		e.Use(gin.Logger())
	}

	e.InstallHandlers()

	return e
}

// Close stops the handler binaries started for this engine.
func (e *Engine) Close() error {
	return e.loader.Close()
}
