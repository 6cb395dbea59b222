// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package serve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/innovationmech/travelagent/internal/travelagent"
	"github.com/innovationmech/travelagent/internal/travelagent/config"
	"github.com/innovationmech/travelagent/internal/travelagent/db"
	"github.com/innovationmech/travelagent/internal/travelagent/tracing"
	"github.com/innovationmech/travelagent/pkg/logger"
)

// NewServeCmd creates the serve command. configPath points at the value of
// the root --config flag.
func NewServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the travel agent HTTP API",
		Long: `Start the travel agent HTTP API. Travel plans are booked across the
hotel, flight and taxi services configured in travel-agent.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := logger.InitLoggerWithConfig(cfg.Logging.Level, cfg.Logging.Development); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
}

// runServer serves until ctx is done or the server fails.
func runServer(ctx context.Context, cfg *config.Config) error {
	log := logger.GetLogger()
	log.Info("Starting travel agent...",
		zap.String("database", cfg.Database.Driver),
		zap.Bool("concurrent_booking", cfg.Saga.ConcurrentBooking))

	shutdownTracing, err := tracing.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	app, err := travelagent.NewApp(cfg, gormDB, log)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping server")
	case err, ok := <-app.Server.Errors():
		if ok {
			serveErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", zap.Error(err))
		return errors.Join(serveErr, err)
	}

	log.Info("Server stopped gracefully")
	return serveErr
}
