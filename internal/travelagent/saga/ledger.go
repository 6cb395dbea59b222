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

package saga

import (
	"context"
	"sync"
	"time"
)

// LedgerEntry records one step whose action succeeded.
type LedgerEntry struct {
	Step         string
	CompletedAt  time.Time
	compensation func(ctx context.Context) error
}

// Ledger tracks, in completion order, the steps that must be undone if the
// saga fails. It is safe for concurrent use and lives for one execution only.
type Ledger struct {
	mu      sync.Mutex
	entries []LedgerEntry
}

// Record appends a completed step.
func (l *Ledger) Record(step Step) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, LedgerEntry{
		Step:         step.Name,
		CompletedAt:  time.Now(),
		compensation: step.Compensation,
	})
}

// Entries returns a copy of the recorded steps in completion order.
func (l *Ledger) Entries() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]LedgerEntry(nil), l.entries...)
}

// Steps returns the names of the completed steps in completion order.
func (l *Ledger) Steps() []string {
	entries := l.Entries()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Step)
	}
	return names
}

// Len returns the number of recorded steps.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
