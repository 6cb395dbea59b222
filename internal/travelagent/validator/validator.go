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

// Package validator performs the structural checks a travel plan must pass
// before it is stored. Validation is pure: no I/O and no side effects.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
)

// TravelPlanValidator checks travel plans and booking requests.
type TravelPlanValidator struct {
	validate *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *TravelPlanValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &TravelPlanValidator{validate: v}
}

// Validate checks that the plan references a customer and carries a positive
// booking id for each of the three remote services. It returns nil when the
// plan is valid.
func (v *TravelPlanValidator) Validate(plan *model.TravelPlan) []types.ConstraintViolation {
	if plan == nil {
		return []types.ConstraintViolation{{Field: "travelPlan", Message: "is required"}}
	}
	return v.violations(v.validate.Struct(plan))
}

// ValidateRequest checks that every field of a booking request is present.
func (v *TravelPlanValidator) ValidateRequest(req *model.BookingRequest) []types.ConstraintViolation {
	if req == nil {
		return []types.ConstraintViolation{{Field: "travelSketch", Message: "is required"}}
	}
	violations := v.violations(v.validate.Struct(req))
	if req.BookingDate.IsZero() {
		violations = append(violations, types.ConstraintViolation{Field: "bookingDate", Message: "is required"})
	}
	return violations
}

func (v *TravelPlanValidator) violations(err error) []types.ConstraintViolation {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []types.ConstraintViolation{{Field: "", Message: err.Error()}}
	}

	out := make([]types.ConstraintViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, types.ConstraintViolation{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
