package get_venue_reservations

import (
	"errors"
	"strconv"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

// ToServiceRequest собирает запрос сервиса из параметров URL
func ToServiceRequest(venueID, userID int64, dateStr, courtStr, includeInactiveStr string) (*models.GetVenueReservationsRequest, error) {
	if dateStr == "" {
		return nil, errors.New("date is required")
	}

	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	req := &models.GetVenueReservationsRequest{
		UserID:  userID,
		VenueID: venueID,
		Date:    date,
	}

	if courtStr != "" {
		court, err := strconv.Atoi(courtStr)
		if err != nil {
			return nil, err
		}
		req.Court = &court
	}

	if includeInactiveStr != "" {
		req.IncludeInactive, err = strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, err
		}
	}

	return req, nil
}
