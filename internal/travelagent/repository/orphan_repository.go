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

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/tracing"
)

// OrphanRepository stores remote bookings whose reversal failed.
type OrphanRepository interface {
	Create(ctx context.Context, orphan *model.OrphanedBooking) error
	FindAll(ctx context.Context) ([]model.OrphanedBooking, error)
}

type orphanRepository struct {
	db *gorm.DB
}

// NewOrphanRepository creates a new orphaned booking repository.
func NewOrphanRepository(db *gorm.DB) OrphanRepository {
	return &orphanRepository{db: db}
}

func (r *orphanRepository) Create(ctx context.Context, orphan *model.OrphanedBooking) (err error) {
	ctx, span := tracing.StartSpan(ctx, "db.orphaned_bookings.create",
		tracing.DatabaseAttributes{Operation: "insert", Table: "orphaned_bookings"}.ToAttributes()...)
	defer func() { tracing.End(span, err) }()

	return r.db.WithContext(ctx).Create(orphan).Error
}

func (r *orphanRepository) FindAll(ctx context.Context) (_ []model.OrphanedBooking, err error) {
	ctx, span := tracing.StartSpan(ctx, "db.orphaned_bookings.list",
		tracing.DatabaseAttributes{Operation: "select", Table: "orphaned_bookings"}.ToAttributes()...)
	defer func() { tracing.End(span, err) }()

	orphans := make([]model.OrphanedBooking, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&orphans).Error; err != nil {
		return nil, err
	}
	return orphans, nil
}
