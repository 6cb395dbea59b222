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
	"errors"

	"gorm.io/gorm"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/tracing"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
)

// TravelPlanRepository is the durable store of committed travel plans.
type TravelPlanRepository interface {
	Create(ctx context.Context, plan *model.TravelPlan) error
	FindByID(ctx context.Context, id uint64) (*model.TravelPlan, error)
	FindAll(ctx context.Context) ([]model.TravelPlan, error)
	Delete(ctx context.Context, plan *model.TravelPlan) error
}

type travelPlanRepository struct {
	db *gorm.DB
}

// NewTravelPlanRepository creates a new travel plan repository.
func NewTravelPlanRepository(db *gorm.DB) TravelPlanRepository {
	return &travelPlanRepository{db: db}
}

// Create inserts the plan and assigns its id.
func (r *travelPlanRepository) Create(ctx context.Context, plan *model.TravelPlan) (err error) {
	ctx, span := tracing.StartSpan(ctx, "db.travel_plans.create",
		tracing.DatabaseAttributes{Operation: "insert", Table: "travel_plans"}.ToAttributes()...)
	defer func() { tracing.End(span, err) }()

	return r.db.WithContext(ctx).Create(plan).Error
}

// FindByID returns types.ErrNotFound when no plan has the id.
func (r *travelPlanRepository) FindByID(ctx context.Context, id uint64) (_ *model.TravelPlan, err error) {
	ctx, span := tracing.StartSpan(ctx, "db.travel_plans.find",
		tracing.DatabaseAttributes{Operation: "select", Table: "travel_plans"}.ToAttributes()...)
	defer func() { tracing.End(span, err) }()

	var plan model.TravelPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindAll returns every plan in ascending id order.
func (r *travelPlanRepository) FindAll(ctx context.Context) (_ []model.TravelPlan, err error) {
	ctx, span := tracing.StartSpan(ctx, "db.travel_plans.list",
		tracing.DatabaseAttributes{Operation: "select", Table: "travel_plans"}.ToAttributes()...)
	defer func() { tracing.End(span, err) }()

	plans := make([]model.TravelPlan, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Delete removes the plan. It returns types.ErrNotFound when the plan was
// already gone, so only one of two racing deletes succeeds.
func (r *travelPlanRepository) Delete(ctx context.Context, plan *model.TravelPlan) (err error) {
	ctx, span := tracing.StartSpan(ctx, "db.travel_plans.delete",
		tracing.DatabaseAttributes{Operation: "delete", Table: "travel_plans"}.ToAttributes()...)
	defer func() { tracing.End(span, err) }()

	result := r.db.WithContext(ctx).Delete(&model.TravelPlan{}, plan.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.ErrNotFound
	}
	return nil
}
