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

// Package events tells operators about remote bookings that could not be
// reversed and need manual reconciliation.
package events

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
)

// OrphanEvent is published for every failed compensation.
type OrphanEvent struct {
	Service      model.Service `json:"service"`
	BookingID    int64         `json:"bookingId"`
	TravelPlanID *uint64       `json:"travelPlanId,omitempty"`
	SagaID       string        `json:"sagaId,omitempty"`
	Reason       string        `json:"reason"`
	OccurredAt   time.Time     `json:"occurredAt"`
}

// NewOrphanEvent builds the event for a recorded orphan.
func NewOrphanEvent(o *model.OrphanedBooking) OrphanEvent {
	occurred := o.CreatedAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return OrphanEvent{
		Service:      o.Service,
		BookingID:    o.BookingID,
		TravelPlanID: o.TravelPlanID,
		SagaID:       o.SagaID,
		Reason:       o.Reason,
		OccurredAt:   occurred,
	}
}

// Notifier delivers orphan events.
type Notifier interface {
	NotifyOrphan(ctx context.Context, event OrphanEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) NotifyOrphan(context.Context, OrphanEvent) error { return nil }
func (Noop) Close() error                                    { return nil }

// Multi fans an event out to several notifiers. Every notifier is tried.
type Multi []Notifier

func (m Multi) NotifyOrphan(ctx context.Context, event OrphanEvent) error {
	var result *multierror.Error
	for _, n := range m {
		if err := n.NotifyOrphan(ctx, event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m Multi) Close() error {
	var result *multierror.Error
	for _, n := range m {
		if err := n.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
