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

// Package travelagent assembles the travel plan service from configuration.
package travelagent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/innovationmech/travelagent/internal/travelagent/client"
	"github.com/innovationmech/travelagent/internal/travelagent/config"
	"github.com/innovationmech/travelagent/internal/travelagent/events"
	"github.com/innovationmech/travelagent/internal/travelagent/handler/travelplan"
	"github.com/innovationmech/travelagent/internal/travelagent/metrics"
	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/repository"
	"github.com/innovationmech/travelagent/internal/travelagent/saga"
	"github.com/innovationmech/travelagent/internal/travelagent/server"
	"github.com/innovationmech/travelagent/internal/travelagent/service"
	"github.com/innovationmech/travelagent/internal/travelagent/validator"
)

// App is the wired travel agent: remote clients, store, orchestrator and
// HTTP server.
type App struct {
	Service  service.TravelPlanService
	Server   *server.Server
	Metrics  *metrics.Collector
	notifier events.Notifier
	logger   *zap.Logger
}

// NewApp wires the application on top of an open database.
func NewApp(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	collector, err := metrics.NewCollector(&metrics.Config{RuntimeCollectors: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}

	clients, err := NewBookingClients(cfg.Remote, collector, logger)
	if err != nil {
		return nil, err
	}

	notifier, err := NewNotifier(cfg.Events, logger)
	if err != nil {
		return nil, err
	}

	agentIDs := make(map[model.Service]int64, len(model.Services))
	for _, s := range model.Services {
		agentIDs[s] = cfg.Remote.For(s).AgentCustomerID
	}

	svc, err := service.NewTravelPlanService(service.Options{
		Clients:           clients,
		Plans:             repository.NewTravelPlanRepository(db),
		Orphans:           repository.NewOrphanRepository(db),
		Validator:         validator.New(),
		Saga:              saga.NewCoordinator(logger.Named("saga"), collector),
		Notifier:          notifier,
		Observer:          collector,
		Logger:            logger,
		AgentCustomerIDs:  agentIDs,
		ConcurrentBooking: cfg.Saga.ConcurrentBooking,
	})
	if err != nil {
		notifier.Close()
		return nil, err
	}

	srv := server.New(cfg.Server, collector.Registry(), logger, travelplan.NewHandler(svc))

	return &App{
		Service:  svc,
		Server:   srv,
		Metrics:  collector,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// NewBookingClients creates the hotel, flight and taxi clients.
func NewBookingClients(remote config.RemoteConfig, observer client.CallObserver, logger *zap.Logger) ([]client.BookingClient, error) {
	clients := make([]client.BookingClient, 0, len(model.Services))
	for _, s := range model.Services {
		rc := remote.For(s)
		c, err := client.New(s, client.Options{
			BaseURL:      rc.BaseURL,
			Timeout:      rc.Timeout,
			RetryMax:     remote.Retry.MaxRetries,
			RetryWaitMin: remote.Retry.WaitMin,
			RetryWaitMax: remote.Retry.WaitMax,
			Logger:       logger.Named("client"),
			Observer:     observer,
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// NewNotifier creates the orphan notifiers enabled in cfg.
func NewNotifier(cfg config.EventsConfig, logger *zap.Logger) (events.Notifier, error) {
	var notifiers events.Multi
	if cfg.NATSURL != "" {
		n, err := events.NewNATSNotifier(cfg.NATSURL, cfg.Subject, logger.Named("nats"))
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if cfg.SentryDSN != "" {
		n, err := events.NewSentryNotifier(cfg.SentryDSN)
		if err != nil {
			notifiers.Close()
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if len(notifiers) == 0 {
		return events.Noop{}, nil
	}
	return notifiers, nil
}

// Start starts serving HTTP.
func (a *App) Start(ctx context.Context) error {
	return a.Server.Start(ctx)
}

// Stop shuts the HTTP server down and flushes notifiers.
func (a *App) Stop(ctx context.Context) error {
	err := a.Server.Stop(ctx)
	if cerr := a.notifier.Close(); cerr != nil {
		a.logger.Warn("failed to close notifier", zap.Error(cerr))
	}
	return err
}
