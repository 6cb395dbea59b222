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
	"time"
)

// TravelPlan is the committed composite record referencing one booking on
// each remote service.
type TravelPlan struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID      int64     `gorm:"not null;index" json:"customerId" validate:"required,gt=0"`
	HotelBookingID  int64     `gorm:"not null" json:"hotelBookingId" validate:"required,gt=0"`
	FlightBookingID int64     `gorm:"not null" json:"flightBookingId" validate:"required,gt=0"`
	TaxiBookingID   int64     `gorm:"not null" json:"taxiBookingId" validate:"required,gt=0"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName overrides the gorm table name
func (TravelPlan) TableName() string {
	return "travel_plans"
}

// SetBooking stores a remote booking reference in the matching slot.
func (p *TravelPlan) SetBooking(ref BookingRef) {
	switch ref.Service {
	case ServiceHotel:
		p.HotelBookingID = ref.ID
	case ServiceFlight:
		p.FlightBookingID = ref.ID
	case ServiceTaxi:
		p.TaxiBookingID = ref.ID
	}
}

// Bookings returns the remote references in booking order (hotel, flight, taxi).
func (p *TravelPlan) Bookings() []BookingRef {
	return []BookingRef{
		{Service: ServiceHotel, ID: p.HotelBookingID},
		{Service: ServiceFlight, ID: p.FlightBookingID},
		{Service: ServiceTaxi, ID: p.TaxiBookingID},
	}
}

// OrphanedBooking records a remote booking that could not be reversed and
// needs manual reconciliation with the remote service.
type OrphanedBooking struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Service      Service   `gorm:"type:varchar(16);not null;index" json:"service"`
	BookingID    int64     `gorm:"not null" json:"bookingId"`
	TravelPlanID *uint64   `json:"travelPlanId,omitempty"`
	SagaID       string    `gorm:"type:varchar(36)" json:"sagaId,omitempty"`
	Reason       string    `gorm:"type:text" json:"reason"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TableName overrides the gorm table name
func (OrphanedBooking) TableName() string {
	return "orphaned_bookings"
}
