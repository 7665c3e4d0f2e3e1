package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
	"github.com/ericogr/chimera-battle/internal/version"
)

const (
	evictionInterval = time.Minute
	idleTTL          = 30 * time.Minute
)

// serve runs the router until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, addr string, router *gin.Engine) {
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("graceful shutdown failed", err, nil)
		}
	}()

	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr, "version": version.Get().String()})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to start server", err, nil)
	}
	logging.Info("Server stopped", nil)
}
