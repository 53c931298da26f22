package server

import (
	"context"
	"net/http"
	"time"
)

var (
	srv    *http.Server
	engine *Engine
)

func Serve(opts ...ServeOption) error {
	engine = NewEngine(opts...)
	srv = &http.Server{
		Addr:    engine.Address,
		Handler: engine,
	}
	engine.Logger.Info("listening", "address", engine.Address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		engine.Close()
		return err
	}
	return nil
}

func Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return engine.Close()
}
