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

package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// SentryNotifier reports orphan events to Sentry as warnings.
type SentryNotifier struct {
	hub *sentry.Hub
}

// NewSentryNotifier creates a notifier with its own Sentry client.
func NewSentryNotifier(dsn string) (*SentryNotifier, error) {
	return newSentryNotifier(sentry.ClientOptions{
		Dsn:        dsn,
		SampleRate: 1.0,
	})
}

func newSentryNotifier(opts sentry.ClientOptions) (*SentryNotifier, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}
	return &SentryNotifier{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *SentryNotifier) NotifyOrphan(_ context.Context, event OrphanEvent) error {
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("service", event.Service.String())
		scope.SetTag("booking_id", strconv.FormatInt(event.BookingID, 10))
		if event.SagaID != "" {
			scope.SetTag("saga_id", event.SagaID)
		}
		ctx := sentry.Context{"reason": event.Reason}
		if event.TravelPlanID != nil {
			ctx["travel_plan_id"] = *event.TravelPlanID
		}
		scope.SetContext("orphan", ctx)
		s.hub.CaptureMessage(fmt.Sprintf("orphaned %s booking %d", event.Service, event.BookingID))
	})
	return nil
}

// Close flushes buffered events.
func (s *SentryNotifier) Close() error {
	s.hub.Flush(sentryFlushTimeout)
	return nil
}
