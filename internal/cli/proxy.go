package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"nimctl/internal/proxy"
)

// proxyServe runs the observability proxy in the foreground until the
// context is canceled (Ctrl+C).
func proxyServe(ctx context.Context, cfg *Config, addr string, corsEnabled bool, corsOrigins []string) error {
	target, err := url.Parse(cfg.ResolvedBaseURL())
	if err != nil {
		return fmt.Errorf("parse upstream url: %w", err)
	}

	proxy.SetLogger(logger)
	proxy.SetDefaultLogLevel(cfg.LogLvl)
	proxy.SetCORSOptions(corsEnabled, corsOrigins,
		[]string{"GET", "POST", "OPTIONS"},
		[]string{"Accept", "Authorization", "Content-Type", "X-Log-Level"})

	mux := proxy.NewMux(newClient(cfg), target)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("upstream", target.String()).Msg("proxy listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
