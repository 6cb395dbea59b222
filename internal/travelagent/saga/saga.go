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

// Package saga runs a fixed list of side-effecting steps and undoes the
// completed ones, newest first, when a later step fails.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of a saga execution.
//
//	Booking -> Committed
//	Booking -> Compensating -> Failed
type State string

const (
	StateBooking      State = "booking"
	StateCompensating State = "compensating"
	StateCommitted    State = "committed"
	StateFailed       State = "failed"
)

// Step is one forward action together with the action that undoes it.
type Step struct {
	Name         string
	Action       func(ctx context.Context) error
	Compensation func(ctx context.Context) error
}

// Definition describes a saga. Steps run in order, or all at once when
// Concurrent is set. Commit runs after every step succeeded; its failure
// compensates all steps.
type Definition struct {
	Name       string
	Steps      []Step
	Concurrent bool
	Commit     func(ctx context.Context) error
}

// Execution is the outcome of one saga run.
type Execution struct {
	ID          string
	Saga        string
	State       State
	Completed   []string
	Compensated []string
	// Err is the error that stopped the saga.
	Err error
	// CompensationErr aggregates compensation failures; it never replaces Err.
	CompensationErr error
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Observer receives execution events, typically to export metrics.
type Observer interface {
	StepFinished(saga, step string, duration time.Duration, err error)
	CompensationFinished(saga, step string, err error)
	SagaFinished(saga string, state State, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) StepFinished(string, string, time.Duration, error) {}
func (noopObserver) CompensationFinished(string, string, error)       {}
func (noopObserver) SagaFinished(string, State, time.Duration)        {}

type idKey struct{}

// IDFromContext returns the id of the saga execution running the caller.
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(idKey{}).(string)
	return id
}

// Coordinator executes saga definitions in-process.
type Coordinator struct {
	logger   *zap.Logger
	observer Observer
}

// NewCoordinator creates a coordinator. A nil observer disables events.
func NewCoordinator(logger *zap.Logger, observer Observer) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	return &Coordinator{logger: logger, observer: observer}
}

// Run executes def. On failure the completed steps are compensated in reverse
// completion order and the error of the failing step is returned unchanged.
func (c *Coordinator) Run(ctx context.Context, def *Definition) (*Execution, error) {
	if def == nil || len(def.Steps) == 0 {
		return nil, errors.New("invalid saga definition: nil or empty steps")
	}

	exec := &Execution{
		ID:        uuid.NewString(),
		Saga:      def.Name,
		State:     StateBooking,
		StartedAt: time.Now(),
	}
	ctx = context.WithValue(ctx, idKey{}, exec.ID)
	log := c.logger.With(zap.String("saga", def.Name), zap.String("saga_id", exec.ID))
	ledger := &Ledger{}

	var err error
	if def.Concurrent {
		err = c.runConcurrent(ctx, def, ledger)
	} else {
		err = c.runSequential(ctx, def, ledger)
	}
	if err == nil && def.Commit != nil {
		err = def.Commit(ctx)
	}

	exec.Completed = ledger.Steps()
	if err != nil {
		c.compensate(ctx, log, def, exec, ledger, err)
		return exec, err
	}

	exec.State = StateCommitted
	exec.FinishedAt = time.Now()
	c.observer.SagaFinished(def.Name, exec.State, exec.FinishedAt.Sub(exec.StartedAt))
	log.Debug("saga committed", zap.Strings("steps", exec.Completed))
	return exec, nil
}

func (c *Coordinator) runSequential(ctx context.Context, def *Definition, ledger *Ledger) error {
	for _, step := range def.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.runStep(ctx, def.Name, step); err != nil {
			return err
		}
		ledger.Record(step)
	}
	return nil
}

// runConcurrent waits for every step so that late successes still land in the
// ledger and get compensated.
func (c *Coordinator) runConcurrent(ctx context.Context, def *Definition, ledger *Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var g errgroup.Group
	for _, step := range def.Steps {
		g.Go(func() error {
			if err := c.runStep(ctx, def.Name, step); err != nil {
				return err
			}
			ledger.Record(step)
			return nil
		})
	}
	return g.Wait()
}

func (c *Coordinator) runStep(ctx context.Context, sagaName string, step Step) error {
	if step.Action == nil {
		return fmt.Errorf("step %q has no action", step.Name)
	}
	start := time.Now()
	err := step.Action(ctx)
	c.observer.StepFinished(sagaName, step.Name, time.Since(start), err)
	return err
}

func (c *Coordinator) compensate(ctx context.Context, log *zap.Logger, def *Definition, exec *Execution, ledger *Ledger, cause error) {
	exec.State = StateCompensating
	exec.Err = cause
	log.Info("saga failed, compensating",
		zap.Error(cause),
		zap.Strings("completed", exec.Completed))

	// Rollback must outlive a caller that gave up.
	compCtx := context.WithoutCancel(ctx)

	var result *multierror.Error
	entries := ledger.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.compensation == nil {
			continue
		}

		err := entry.compensation(compCtx)
		c.observer.CompensationFinished(def.Name, entry.Step, err)
		if err != nil {
			log.Warn("compensation failed",
				zap.String("step", entry.Step),
				zap.Bool("orphaned", true),
				zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("compensate %s: %w", entry.Step, err))
			continue
		}
		exec.Compensated = append(exec.Compensated, entry.Step)
	}

	exec.CompensationErr = result.ErrorOrNil()
	exec.State = StateFailed
	exec.FinishedAt = time.Now()
	c.observer.SagaFinished(def.Name, exec.State, exec.FinishedAt.Sub(exec.StartedAt))
}
