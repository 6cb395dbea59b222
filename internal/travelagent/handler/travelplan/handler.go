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

package travelplan

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/service"
	"github.com/innovationmech/travelagent/internal/travelagent/tracing"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
)

// Handler exposes the travel plan service over HTTP.
type Handler struct {
	service service.TravelPlanService
}

// NewHandler creates a new travel plan HTTP handler
func NewHandler(svc service.TravelPlanService) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes registers HTTP routes with the router
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	plans := router.Group("/travelplans")
	{
		plans.GET("", h.ListTravelPlans)
		plans.POST("", h.CreateTravelPlan)
		plans.GET("/:id", h.GetTravelPlan)
		plans.DELETE("/:id", h.CancelTravelPlan)
	}
	router.GET("/orphans", h.ListOrphans)
}

// ListTravelPlans returns every travel plan in ascending id order.
func (h *Handler) ListTravelPlans(c *gin.Context) {
	plans, err := h.service.ListTravelPlans(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreateTravelPlan books a trip from the travel sketch in the request body.
func (h *Handler) CreateTravelPlan(c *gin.Context) {
	ctx, span := tracing.StartSpan(c.Request.Context(), "handler.createTravelPlan",
		attribute.String("http.method", http.MethodPost),
		attribute.String("http.route", "/travelplans"))
	defer span.End()

	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.String("error.type", "bind_error"))
		tracing.SetSpanError(span, err)
		writeError(c, types.ErrBadRequest(err.Error()))
		return
	}

	plan, err := h.service.CreateTravelPlan(ctx, &req)
	if err != nil {
		tracing.SetSpanError(span, err)
		writeError(c, err)
		return
	}

	tracing.AddEvent(span, "travelplan.created",
		attribute.String("travelplan.id", strconv.FormatUint(plan.ID, 10)))
	tracing.SetSpanSuccess(span)
	c.JSON(http.StatusCreated, plan)
}

// GetTravelPlan returns one travel plan.
func (h *Handler) GetTravelPlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	plan, err := h.service.GetTravelPlan(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// CancelTravelPlan reverses the remote bookings of a plan and deletes it.
func (h *Handler) CancelTravelPlan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.CancelTravelPlan(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListOrphans returns the remote bookings that still need manual reversal.
func (h *Handler) ListOrphans(c *gin.Context) {
	orphans, err := h.service.ListOrphans(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orphans)
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(c, types.ErrBadRequest("travel plan id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	svcErr := types.ToServiceError(err)
	c.AbortWithStatusJSON(svcErr.HTTPStatus, svcErr)
}
