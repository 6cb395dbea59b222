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

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/innovationmech/travelagent/internal/travelagent/client"
	"github.com/innovationmech/travelagent/internal/travelagent/events"
	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/repository"
	"github.com/innovationmech/travelagent/internal/travelagent/saga"
	"github.com/innovationmech/travelagent/internal/travelagent/tracing"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
	"github.com/innovationmech/travelagent/internal/travelagent/validator"
)

const createSagaName = "create-travel-plan"

// TravelPlanService books and cancels travel plans across the remote
// booking services.
type TravelPlanService interface {
	// CreateTravelPlan books hotel, flight and taxi, in that order, and
	// stores the plan. On any failure the bookings made so far are reversed
	// and the triggering error is returned.
	CreateTravelPlan(ctx context.Context, req *model.BookingRequest) (*model.TravelPlan, error)
	// CancelTravelPlan reverses all three bookings and removes the plan,
	// even when a reversal fails.
	CancelTravelPlan(ctx context.Context, id uint64) error
	GetTravelPlan(ctx context.Context, id uint64) (*model.TravelPlan, error)
	ListTravelPlans(ctx context.Context) ([]model.TravelPlan, error)
	ListOrphans(ctx context.Context) ([]model.OrphanedBooking, error)
}

// OrphanObserver is told about every booking left behind by a failed reversal.
type OrphanObserver interface {
	OrphanRecorded(service model.Service)
}

// Options holds the collaborators of the travel plan service.
type Options struct {
	// Clients must hold exactly one client per remote service.
	Clients   []client.BookingClient
	Plans     repository.TravelPlanRepository
	Orphans   repository.OrphanRepository
	Validator *validator.TravelPlanValidator
	Saga      *saga.Coordinator
	Notifier  events.Notifier
	Observer  OrphanObserver
	Logger    *zap.Logger

	// AgentCustomerIDs are the travel agent's own accounts on each remote
	// service; remote bookings are made under them.
	AgentCustomerIDs map[model.Service]int64
	// ConcurrentBooking books the three services at the same time.
	ConcurrentBooking bool
}

type travelPlanService struct {
	clients           []client.BookingClient
	plans             repository.TravelPlanRepository
	orphans           repository.OrphanRepository
	validator         *validator.TravelPlanValidator
	saga              *saga.Coordinator
	notifier          events.Notifier
	observer          OrphanObserver
	logger            *zap.Logger
	agentCustomerIDs  map[model.Service]int64
	concurrentBooking bool

	cancels singleflight.Group
}

// NewTravelPlanService creates a new travel plan service.
func NewTravelPlanService(opts Options) (TravelPlanService, error) {
	if opts.Plans == nil {
		return nil, errors.New("travel plan repository is required")
	}

	byService := make(map[model.Service]client.BookingClient, len(opts.Clients))
	for _, c := range opts.Clients {
		if _, dup := byService[c.Service()]; dup {
			return nil, fmt.Errorf("duplicate %s client", c.Service())
		}
		byService[c.Service()] = c
	}
	clients := make([]client.BookingClient, 0, len(model.Services))
	for _, s := range model.Services {
		c, ok := byService[s]
		if !ok {
			return nil, fmt.Errorf("missing %s client", s)
		}
		clients = append(clients, c)
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	if opts.Saga == nil {
		opts.Saga = saga.NewCoordinator(opts.Logger, nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = events.Noop{}
	}

	return &travelPlanService{
		clients:           clients,
		plans:             opts.Plans,
		orphans:           opts.Orphans,
		validator:         opts.Validator,
		saga:              opts.Saga,
		notifier:          opts.Notifier,
		observer:          opts.Observer,
		logger:            opts.Logger.Named("travelplan"),
		agentCustomerIDs:  opts.AgentCustomerIDs,
		concurrentBooking: opts.ConcurrentBooking,
	}, nil
}

func (s *travelPlanService) CreateTravelPlan(ctx context.Context, req *model.BookingRequest) (_ *model.TravelPlan, err error) {
	ctx, span := tracing.StartSpan(ctx, "travelplan.create")
	defer func() { tracing.End(span, err) }()

	if violations := s.validator.ValidateRequest(req); len(violations) > 0 {
		return nil, &types.ValidationFailedError{Violations: violations}
	}
	span.SetAttributes(attribute.Int64("customer.id", req.CustomerID))

	plan := &model.TravelPlan{CustomerID: req.CustomerID}
	var planMu sync.Mutex

	steps := make([]saga.Step, 0, len(s.clients))
	for _, c := range s.clients {
		steps = append(steps, s.bookingStep(c, req, plan, &planMu))
	}

	exec, err := s.saga.Run(ctx, &saga.Definition{
		Name:       createSagaName,
		Steps:      steps,
		Concurrent: s.concurrentBooking,
		Commit: func(ctx context.Context) error {
			if violations := s.validator.Validate(plan); len(violations) > 0 {
				return &types.ValidationFailedError{Violations: violations}
			}
			if err := s.plans.Create(ctx, plan); err != nil {
				return &types.PersistenceFailedError{Operation: "create", Cause: err}
			}
			return nil
		},
	})
	if err != nil {
		fields := []zap.Field{zap.Int64("customer_id", req.CustomerID), zap.Error(err)}
		if exec != nil {
			fields = append(fields,
				zap.String("saga_id", exec.ID),
				zap.Strings("compensated", exec.Compensated))
			if exec.CompensationErr != nil {
				fields = append(fields, zap.NamedError("compensation_error", exec.CompensationErr))
			}
		}
		s.logger.Info("travel plan not created", fields...)
		return nil, err
	}

	span.SetAttributes(attribute.String("travelplan.id", strconv.FormatUint(plan.ID, 10)))
	s.logger.Info("travel plan created",
		zap.Uint64("travel_plan_id", plan.ID),
		zap.Int64("customer_id", plan.CustomerID),
		zap.String("saga_id", exec.ID),
		zap.Int64("hotel_booking_id", plan.HotelBookingID),
		zap.Int64("flight_booking_id", plan.FlightBookingID),
		zap.Int64("taxi_booking_id", plan.TaxiBookingID))
	return plan, nil
}

func (s *travelPlanService) bookingStep(c client.BookingClient, req *model.BookingRequest, plan *model.TravelPlan, planMu *sync.Mutex) saga.Step {
	svc := c.Service()
	var booked model.BookingRef

	return saga.Step{
		Name: svc.String(),
		Action: func(ctx context.Context) error {
			ref, err := c.Book(ctx, s.agentCustomerIDs[svc], req.ResourceID(svc), req.BookingDate)
			if err != nil {
				return err
			}
			booked = ref

			planMu.Lock()
			plan.SetBooking(ref)
			planMu.Unlock()
			return nil
		},
		Compensation: func(ctx context.Context) error {
			return s.reverse(ctx, c, booked, nil)
		},
	}
}

func (s *travelPlanService) CancelTravelPlan(ctx context.Context, id uint64) error {
	// Concurrent cancels of one plan share a single execution.
	_, err, _ := s.cancels.Do(strconv.FormatUint(id, 10), func() (interface{}, error) {
		return nil, s.cancel(ctx, id)
	})
	return err
}

func (s *travelPlanService) cancel(ctx context.Context, id uint64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "travelplan.cancel",
		attribute.String("travelplan.id", strconv.FormatUint(id, 10)))
	defer func() { tracing.End(span, err) }()

	plan, err := s.GetTravelPlan(ctx, id)
	if err != nil {
		return err
	}

	// Once started, a cancel runs to the end even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	var orphaned *multierror.Error
	for _, ref := range plan.Bookings() {
		c := s.clientFor(ref.Service)
		if err := s.reverse(ctx, c, ref, &plan.ID); err != nil {
			orphaned = multierror.Append(orphaned, err)
		}
	}

	if err := s.plans.Delete(ctx, plan); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.ErrNotFound
		}
		return &types.PersistenceFailedError{Operation: "delete", Cause: err}
	}

	if orphaned != nil {
		s.logger.Warn("travel plan cancelled with unreversed bookings",
			zap.Uint64("travel_plan_id", id),
			zap.Int("orphaned", orphaned.Len()),
			zap.Error(orphaned))
		return nil
	}
	s.logger.Info("travel plan cancelled", zap.Uint64("travel_plan_id", id))
	return nil
}

func (s *travelPlanService) GetTravelPlan(ctx context.Context, id uint64) (*model.TravelPlan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, &types.PersistenceFailedError{Operation: "find", Cause: err}
	}
	return plan, nil
}

func (s *travelPlanService) ListTravelPlans(ctx context.Context) ([]model.TravelPlan, error) {
	plans, err := s.plans.FindAll(ctx)
	if err != nil {
		return nil, &types.PersistenceFailedError{Operation: "list", Cause: err}
	}
	return plans, nil
}

func (s *travelPlanService) ListOrphans(ctx context.Context) ([]model.OrphanedBooking, error) {
	if s.orphans == nil {
		return []model.OrphanedBooking{}, nil
	}
	orphans, err := s.orphans.FindAll(ctx)
	if err != nil {
		return nil, &types.PersistenceFailedError{Operation: "list orphans", Cause: err}
	}
	return orphans, nil
}

func (s *travelPlanService) clientFor(svc model.Service) client.BookingClient {
	for _, c := range s.clients {
		if c.Service() == svc {
			return c
		}
	}
	return nil
}

// reverse cancels one remote booking. A failure is recorded as an orphan and
// returned; it never stops the caller from reversing the other bookings.
func (s *travelPlanService) reverse(ctx context.Context, c client.BookingClient, ref model.BookingRef, planID *uint64) error {
	err := c.Cancel(ctx, ref)
	if err == nil {
		return nil
	}
	s.recordOrphan(ctx, ref, planID, err)
	return err
}

func (s *travelPlanService) recordOrphan(ctx context.Context, ref model.BookingRef, planID *uint64, cause error) {
	orphan := &model.OrphanedBooking{
		Service:      ref.Service,
		BookingID:    ref.ID,
		TravelPlanID: planID,
		SagaID:       saga.IDFromContext(ctx),
		Reason:       cause.Error(),
	}

	s.logger.Warn("remote booking orphaned",
		zap.String("service", ref.Service.String()),
		zap.Int64("booking_id", ref.ID),
		zap.String("saga_id", orphan.SagaID),
		zap.Bool("orphaned", true),
		zap.Error(cause))

	if s.observer != nil {
		s.observer.OrphanRecorded(ref.Service)
	}
	if s.orphans != nil {
		if err := s.orphans.Create(ctx, orphan); err != nil {
			s.logger.Error("failed to record orphaned booking",
				zap.String("service", ref.Service.String()),
				zap.Int64("booking_id", ref.ID),
				zap.Error(err))
		}
	}
	if err := s.notifier.NotifyOrphan(ctx, events.NewOrphanEvent(orphan)); err != nil {
		s.logger.Error("failed to publish orphan event",
			zap.String("service", ref.Service.String()),
			zap.Int64("booking_id", ref.ID),
			zap.Error(err))
	}
}
