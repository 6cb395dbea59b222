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

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IsValid(t *testing.T) {
	for _, s := range Services {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Service("car").IsValid())
	assert.Equal(t, "flightId", ServiceFlight.ResourceField())
}

func TestBookingRef_String(t *testing.T) {
	assert.Equal(t, "hotel#101", BookingRef{Service: ServiceHotel, ID: 101}.String())
}

func TestBookingDate_JSON(t *testing.T) {
	var req BookingRequest
	err := json.Unmarshal([]byte(`{"customerId":42,"hotelId":7,"flightId":9,"taxiId":3,"bookingDate":"2030-01-01"}`), &req)
	require.NoError(t, err)

	assert.Equal(t, NewBookingDate(2030, time.January, 1), req.BookingDate)
	assert.Equal(t, int64(7), req.ResourceID(ServiceHotel))
	assert.Equal(t, int64(9), req.ResourceID(ServiceFlight))
	assert.Equal(t, int64(3), req.ResourceID(ServiceTaxi))

	out, err := json.Marshal(req.BookingDate)
	require.NoError(t, err)
	assert.Equal(t, `"2030-01-01"`, string(out))
}

func TestBookingDate_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "with_time", input: `"2030-01-01T10:00:00Z"`},
		{name: "garbage", input: `"tomorrow"`},
		{name: "not_a_string", input: `20300101`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d BookingDate
			assert.Error(t, json.Unmarshal([]byte(tt.input), &d))
		})
	}
}

func TestBookingDate_Empty(t *testing.T) {
	var d BookingDate
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.String())
}

func TestTravelPlan_Bookings(t *testing.T) {
	plan := &TravelPlan{CustomerID: 42}
	plan.SetBooking(BookingRef{Service: ServiceHotel, ID: 101})
	plan.SetBooking(BookingRef{Service: ServiceFlight, ID: 202})
	plan.SetBooking(BookingRef{Service: ServiceTaxi, ID: 303})

	assert.Equal(t, []BookingRef{
		{Service: ServiceHotel, ID: 101},
		{Service: ServiceFlight, ID: 202},
		{Service: ServiceTaxi, ID: 303},
	}, plan.Bookings())
}
