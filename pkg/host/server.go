package host

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	maxHeaderBytes    = 1 << 20
)

// Run serves the host on cfg.Addr until ctx is cancelled or the process
// receives SIGINT/SIGTERM, then shuts down gracefully and runs the shutdown
// hooks.
func (h *Host) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.cfg.Addr)
	if err != nil {
		return err
	}
	return h.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (h *Host) Serve(ctx context.Context, ln net.Listener) error {
	if !h.serving.CompareAndSwap(false, true) {
		_ = ln.Close()
		return ErrAlreadyServed
	}
	defer h.serving.Store(false)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, fn := range h.onStart {
		if err := fn(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	server := &http.Server{
		Handler:           h.Handler(),
		ReadTimeout:       h.cfg.ReadTimeout,
		WriteTimeout:      h.cfg.WriteTimeout,
		IdleTimeout:       h.cfg.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	h.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), h.cfg.ShutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, fn := range h.onStop {
		if err := fn(shutdownCtx); err != nil {
			h.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	h.logger.Info("shutdown completed")
	return nil
}
