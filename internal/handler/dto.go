package handler

import (
	"github.com/iliyamo/dorm-booking/internal/model"
	"github.com/iliyamo/dorm-booking/internal/utils"
)

type laundryBookingRequest struct {
	Machine uint8  `json:"machine" validate:"required,gt=0"`
	Date    string `json:"date" validate:"required,isodate"`
	Start   string `json:"start" validate:"required,hhmm"`
}

type restroomBookingRequest struct {
	Date     string `json:"date" validate:"required,isodate"`
	Start    string `json:"start" validate:"required,hhmm"`
	Duration int    `json:"duration" validate:"required,oneof=30 60 90 120"`
}

type registerRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=128"`
}

type machineStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type settingRequest struct {
	Value string `json:"value"`
}

type resetRequest struct {
	Scope string `json:"scope" validate:"omitempty,oneof=all schedule"`
}

// BookingResponse is the wire form of both booking kinds. Times are HH:MM
// and dates YYYY-MM-DD.
type BookingResponse struct {
	ID       uint64 `json:"id"`
	Type     string `json:"type"`
	UserID   uint64 `json:"user_id"`
	Machine  uint8  `json:"machine,omitempty"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int    `json:"duration"`
	Status   string `json:"status"`
}

func laundryResponse(b model.LaundryBooking) BookingResponse {
	return BookingResponse{
		ID:       b.ID,
		Type:     string(model.ResourceLaundry),
		UserID:   b.UserID,
		Machine:  b.MachineID,
		Date:     utils.FormatDate(b.Date),
		Start:    utils.FormatMinutes(b.Start),
		End:      utils.FormatMinutes(b.End),
		Duration: b.End - b.Start,
		Status:   string(b.Status),
	}
}

func restroomResponse(b model.RestroomBooking) BookingResponse {
	return BookingResponse{
		ID:       b.ID,
		Type:     string(model.ResourceRestroom),
		UserID:   b.UserID,
		Date:     utils.FormatDate(b.Date),
		Start:    utils.FormatMinutes(b.Start),
		End:      utils.FormatMinutes(b.End),
		Duration: b.Duration,
		Status:   string(b.Status),
	}
}

func laundryResponses(bs []model.LaundryBooking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, laundryResponse(b))
	}
	return out
}

func restroomResponses(bs []model.RestroomBooking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, restroomResponse(b))
	}
	return out
}

// slotResponse is one free lounge mark.
type slotResponse struct {
	Time string `json:"time"`
}

func timeSlots(xs []string) []slotResponse {
	out := make([]slotResponse, len(xs))
	for i, x := range xs {
		out[i] = slotResponse{Time: x}
	}
	return out
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
