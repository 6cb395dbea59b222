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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
)

type mockTravelPlanService struct {
	mock.Mock
}

func (m *mockTravelPlanService) CreateTravelPlan(ctx context.Context, req *model.BookingRequest) (*model.TravelPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TravelPlan), args.Error(1)
}

func (m *mockTravelPlanService) CancelTravelPlan(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTravelPlanService) GetTravelPlan(ctx context.Context, id uint64) (*model.TravelPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TravelPlan), args.Error(1)
}

func (m *mockTravelPlanService) ListTravelPlans(ctx context.Context) ([]model.TravelPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TravelPlan), args.Error(1)
}

func (m *mockTravelPlanService) ListOrphans(ctx context.Context) ([]model.OrphanedBooking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrphanedBooking), args.Error(1)
}

func setupRouter(svc *mockTravelPlanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router)
	return router
}

func perform(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func samplePlan() *model.TravelPlan {
	return &model.TravelPlan{ID: 1, CustomerID: 42, HotelBookingID: 101, FlightBookingID: 202, TaxiBookingID: 303}
}

func TestHandler_CreateTravelPlan(t *testing.T) {
	body := []byte(`{"customerId":42,"hotelId":7,"flightId":9,"taxiId":3,"bookingDate":"2030-01-01"}`)
	wantReq := &model.BookingRequest{
		CustomerID:  42,
		HotelID:     7,
		FlightID:    9,
		TaxiID:      3,
		BookingDate: model.NewBookingDate(2030, time.January, 1),
	}

	tests := []struct {
		name       string
		body       []byte
		setupMock  func(m *mockTravelPlanService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: body,
			setupMock: func(m *mockTravelPlanService) {
				m.On("CreateTravelPlan", mock.Anything, wantReq).Return(samplePlan(), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed_json",
			body:       []byte(`{"customerId":`),
			setupMock:  func(m *mockTravelPlanService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   types.ErrCodeBadRequest,
		},
		{
			name:       "malformed_date",
			body:       []byte(`{"customerId":42,"hotelId":7,"flightId":9,"taxiId":3,"bookingDate":"01/01/2030"}`),
			setupMock:  func(m *mockTravelPlanService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   types.ErrCodeBadRequest,
		},
		{
			name: "validation_failed",
			body: body,
			setupMock: func(m *mockTravelPlanService) {
				m.On("CreateTravelPlan", mock.Anything, mock.Anything).Return(nil,
					&types.ValidationFailedError{Violations: []types.ConstraintViolation{{Field: "taxiId", Message: "is required"}}})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   types.ErrCodeValidationFailed,
		},
		{
			name: "booking_failed",
			body: body,
			setupMock: func(m *mockTravelPlanService) {
				m.On("CreateTravelPlan", mock.Anything, mock.Anything).Return(nil,
					&types.BookingFailedError{Service: model.ServiceFlight, Cause: errors.New("unexpected status 409")})
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   types.ErrCodeBookingFailed,
		},
		{
			name: "persistence_failed",
			body: body,
			setupMock: func(m *mockTravelPlanService) {
				m.On("CreateTravelPlan", mock.Anything, mock.Anything).Return(nil,
					&types.PersistenceFailedError{Operation: "create", Cause: errors.New("disk full")})
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   types.ErrCodePersistenceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTravelPlanService{}
			tt.setupMock(svc)

			w := perform(setupRouter(svc), http.MethodPost, "/travelplans", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var errBody types.ServiceError
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
				assert.Equal(t, tt.wantCode, errBody.Code)
			} else {
				var plan model.TravelPlan
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
				assert.Equal(t, int64(101), plan.HotelBookingID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_GetTravelPlan(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setupMock  func(m *mockTravelPlanService)
		wantStatus int
	}{
		{
			name: "found",
			path: "/travelplans/1",
			setupMock: func(m *mockTravelPlanService) {
				m.On("GetTravelPlan", mock.Anything, uint64(1)).Return(samplePlan(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not_found",
			path: "/travelplans/2",
			setupMock: func(m *mockTravelPlanService) {
				m.On("GetTravelPlan", mock.Anything, uint64(2)).Return(nil, types.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid_id",
			path:       "/travelplans/abc",
			setupMock:  func(m *mockTravelPlanService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero_id",
			path:       "/travelplans/0",
			setupMock:  func(m *mockTravelPlanService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTravelPlanService{}
			tt.setupMock(svc)

			w := perform(setupRouter(svc), http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ListTravelPlans(t *testing.T) {
	svc := &mockTravelPlanService{}
	svc.On("ListTravelPlans", mock.Anything).Return([]model.TravelPlan{*samplePlan(), {ID: 2, CustomerID: 43}}, nil)

	w := perform(setupRouter(svc), http.MethodGet, "/travelplans", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var plans []model.TravelPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plans))
	require.Len(t, plans, 2)
	assert.Equal(t, uint64(1), plans[0].ID)
	assert.Equal(t, uint64(2), plans[1].ID)
}

func TestHandler_ListTravelPlans_Empty(t *testing.T) {
	svc := &mockTravelPlanService{}
	svc.On("ListTravelPlans", mock.Anything).Return([]model.TravelPlan{}, nil)

	w := perform(setupRouter(svc), http.MethodGet, "/travelplans", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_CancelTravelPlan(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "cancelled", wantStatus: http.StatusNoContent},
		{name: "not_found", err: types.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "store_failure", err: &types.PersistenceFailedError{Operation: "delete", Cause: errors.New("read only")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTravelPlanService{}
			svc.On("CancelTravelPlan", mock.Anything, uint64(5)).Return(tt.err)

			w := perform(setupRouter(svc), http.MethodDelete, "/travelplans/5", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ListOrphans(t *testing.T) {
	svc := &mockTravelPlanService{}
	svc.On("ListOrphans", mock.Anything).Return([]model.OrphanedBooking{
		{ID: 1, Service: model.ServiceHotel, BookingID: 101, Reason: "timeout"},
	}, nil)

	w := perform(setupRouter(svc), http.MethodGet, "/orphans", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var orphans []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orphans))
	require.Len(t, orphans, 1)
	assert.Equal(t, "hotel", orphans[0]["service"])
	assert.Equal(t, float64(101), orphans[0]["bookingId"])
}
