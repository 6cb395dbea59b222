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
	"fmt"
	"sort"
	"sync"

	"github.com/innovationmech/travelagent/internal/travelagent/events"
	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
)

// callLog records remote calls across all fake clients in call order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeClient struct {
	service model.Service
	log     *callLog

	mu            sync.Mutex
	nextID        int64
	bookErr       error
	cancelErr     error
	bookHook      func(ctx context.Context)
	cancelHook    func()
	customerIDs   []int64
	resourceIDs   []int64
	cancelled     []int64
	cancelCtxErrs []error
}

func newFakeClient(service model.Service, log *callLog, id int64) *fakeClient {
	return &fakeClient{service: service, log: log, nextID: id}
}

func (f *fakeClient) Service() model.Service {
	return f.service
}

func (f *fakeClient) Book(ctx context.Context, customerID, resourceID int64, _ model.BookingDate) (model.BookingRef, error) {
	if f.bookHook != nil {
		f.bookHook(ctx)
	}
	f.log.add("book:%s", f.service)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerIDs = append(f.customerIDs, customerID)
	f.resourceIDs = append(f.resourceIDs, resourceID)
	if f.bookErr != nil {
		return model.BookingRef{}, &types.BookingFailedError{Service: f.service, Cause: f.bookErr}
	}
	return model.BookingRef{Service: f.service, ID: f.nextID}, nil
}

func (f *fakeClient) Cancel(ctx context.Context, ref model.BookingRef) error {
	if f.cancelHook != nil {
		f.cancelHook()
	}
	f.log.add("cancel:%s:%d", ref.Service, ref.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, ref.ID)
	f.cancelCtxErrs = append(f.cancelCtxErrs, ctx.Err())
	if f.cancelErr != nil {
		return &types.CompensationFailedError{Service: f.service, BookingID: ref.ID, Cause: f.cancelErr}
	}
	return nil
}

func (f *fakeClient) bookCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resourceIDs)
}

func (f *fakeClient) cancelledIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.cancelled...)
}

type fakePlanRepo struct {
	mu        sync.Mutex
	plans     map[uint64]model.TravelPlan
	nextID    uint64
	createErr error
	findErr   error
	deleteErr error
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uint64]model.TravelPlan), nextID: 1}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *model.TravelPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	plan.ID = r.nextID
	r.nextID++
	r.plans[plan.ID] = *plan
	return nil
}

func (r *fakePlanRepo) FindByID(_ context.Context, id uint64) (*model.TravelPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	plan, ok := r.plans[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &plan, nil
}

func (r *fakePlanRepo) FindAll(_ context.Context) ([]model.TravelPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	plans := make([]model.TravelPlan, 0, len(r.plans))
	for _, p := range r.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

func (r *fakePlanRepo) Delete(_ context.Context, plan *model.TravelPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.plans[plan.ID]; !ok {
		return types.ErrNotFound
	}
	delete(r.plans, plan.ID)
	return nil
}

type fakeOrphanRepo struct {
	mu        sync.Mutex
	orphans   []model.OrphanedBooking
	createErr error
}

func (r *fakeOrphanRepo) Create(_ context.Context, orphan *model.OrphanedBooking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	orphan.ID = uint64(len(r.orphans) + 1)
	r.orphans = append(r.orphans, *orphan)
	return nil
}

func (r *fakeOrphanRepo) FindAll(_ context.Context) ([]model.OrphanedBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.OrphanedBooking{}, r.orphans...), nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []events.OrphanEvent
}

func (n *fakeNotifier) NotifyOrphan(_ context.Context, e events.OrphanEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *fakeNotifier) Close() error { return nil }

type fakeObserver struct {
	mu     sync.Mutex
	counts map[model.Service]int
}

func (o *fakeObserver) OrphanRecorded(s model.Service) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[model.Service]int)
	}
	o.counts[s]++
}
