package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"

	"fluxstudio/internal/handler"
	"fluxstudio/internal/inject"
	"fluxstudio/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stderr)
	ctx := log.NewContext(context.Background(), logger)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(ctx)
	h := do.MustInvoke[*handler.Handler](injector)
	port := do.MustInvokeNamed[string](injector, "port")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), logger))
		c.Next()
	})
	h.Register(router)

	srv := &http.Server{Addr: ":" + port, Handler: router}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server failed", "error", err.Error())
		os.Exit(1)
	}
	_ = injector.Shutdown()
}
