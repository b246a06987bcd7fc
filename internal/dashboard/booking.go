package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"

	"parkview-dashboard/internal/backend"
	"parkview-dashboard/internal/prefs"
)

// ErrNoSelection is returned when booking input arrives without an expanded
// card.
var ErrNoSelection = errors.New("no lot selected")

// SetBookingHour records the requested hour (0-23) for the selected lot,
// moving the booking machine to hour-selected.
func (s *Session) SetBookingHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour must be between 0 and 23, got %d", hour)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return ErrNoSelection
	}
	h := hour
	s.booking = BookingState{Phase: BookingHourSelected, Hour: &h}
	return nil
}

// SubmitBooking submits the booking for the selected lot. With no selected
// lot or no hour it is a no-op and issues no request (submitted=false). On
// success the cross-view refresh flag is raised before the navigation target
// is exposed; on failure the server message is surfaced and the lot and hour
// stay intact for a retry.
func (s *Session) SubmitBooking(ctx context.Context) (submitted bool, err error) {
	s.mu.Lock()
	if s.selected == nil || s.booking.Hour == nil {
		s.mu.Unlock()
		return false, nil
	}
	lotID := s.selected.ID
	hour := *s.booking.Hour
	s.booking.Phase = BookingSubmitting
	s.booking.Error = ""
	s.mu.Unlock()

	if err := s.lotsAPI.Book(ctx, lotID, hour); err != nil {
		msg := "Booking failed. Please try again."
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		s.mu.Lock()
		s.booking.Phase = BookingFailed
		s.booking.Error = msg
		s.mu.Unlock()
		return true, err
	}

	// The flag must be visible to other views before this one navigates away.
	if err := prefs.SignalBookingsChanged(ctx, s.store); err != nil {
		log.Printf("session %s: failed to raise bookings-changed flag: %v", s.id, err)
	}

	s.mu.Lock()
	s.selected = nil
	s.booking = BookingState{Phase: BookingSucceeded, NavigateTo: "/bookings"}
	s.mu.Unlock()
	return true, nil
}
