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
	"fmt"
	"strconv"
	"time"
)

// Service identifies one of the remote booking services.
type Service string

const (
	ServiceHotel  Service = "hotel"
	ServiceFlight Service = "flight"
	ServiceTaxi   Service = "taxi"
)

// Services lists the remote services in booking order.
var Services = []Service{ServiceHotel, ServiceFlight, ServiceTaxi}

// IsValid checks if the service is one of the known remote services
func (s Service) IsValid() bool {
	switch s {
	case ServiceHotel, ServiceFlight, ServiceTaxi:
		return true
	}
	return false
}

// ResourceField returns the JSON field name the remote service expects for
// the booked resource, e.g. "hotelId".
func (s Service) ResourceField() string {
	return string(s) + "Id"
}

// String returns string representation of the service
func (s Service) String() string {
	return string(s)
}

// BookingRef is the identifier a remote service returned for a created booking.
// The id is only meaningful together with the service that issued it.
type BookingRef struct {
	Service Service `json:"service"`
	ID      int64   `json:"id"`
}

// String renders the reference as "service#id".
func (r BookingRef) String() string {
	return r.Service.String() + "#" + strconv.FormatInt(r.ID, 10)
}

// DateLayout is the wire format of a BookingDate.
const DateLayout = "2006-01-02"

// BookingDate is a calendar date without a time component.
type BookingDate struct {
	time.Time
}

// NewBookingDate returns the date at midnight UTC.
func NewBookingDate(year int, month time.Month, day int) BookingDate {
	return BookingDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseBookingDate parses a date in DateLayout.
func ParseBookingDate(s string) (BookingDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return BookingDate{}, fmt.Errorf("invalid booking date %q: expected YYYY-MM-DD", s)
	}
	return BookingDate{Time: t}, nil
}

// String formats the date in DateLayout; the zero date renders as "".
func (d BookingDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d BookingDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *BookingDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("booking date must be a string: %w", err)
	}
	if s == "" {
		*d = BookingDate{}
		return nil
	}
	parsed, err := ParseBookingDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BookingRequest is the travel sketch submitted by a caller: the customer and
// the hotel, flight and taxi they want on a given date.
type BookingRequest struct {
	CustomerID  int64       `json:"customerId" validate:"required,gt=0"`
	HotelID     int64       `json:"hotelId" validate:"required,gt=0"`
	FlightID    int64       `json:"flightId" validate:"required,gt=0"`
	TaxiID      int64       `json:"taxiId" validate:"required,gt=0"`
	BookingDate BookingDate `json:"bookingDate"`
}

// ResourceID returns the requested resource for the given service.
func (r *BookingRequest) ResourceID(s Service) int64 {
	switch s {
	case ServiceHotel:
		return r.HotelID
	case ServiceFlight:
		return r.FlightID
	case ServiceTaxi:
		return r.TaxiID
	}
	return 0
}
