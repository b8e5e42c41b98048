package get_station_bookings

import (
	"strconv"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/service/reservations/models"
)

// ToServiceRequest собирает запрос к сервису из path и query параметров.
// Параметр date задает один день; startDate/endDate задают период.
func ToServiceRequest(stationID, userID int64, portIDStr, statusStr, dateStr, startDateStr, endDateStr, includeInactiveStr string) (*models.GetStationReservationsRequest, error) {
	req := &models.GetStationReservationsRequest{
		UserID:    userID,
		StationID: stationID,
	}

	if portIDStr != "" {
		portID, err := strconv.ParseInt(portIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		req.PortID = &portID
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	// date - сокращение для периода в один день
	if dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
		req.EndDate = &date
	} else {
		if startDateStr != "" {
			startDate, err := time.Parse(domain.DateFormat, startDateStr)
			if err != nil {
				return nil, err
			}
			req.StartDate = &startDate
		}
		if endDateStr != "" {
			endDate, err := time.Parse(domain.DateFormat, endDateStr)
			if err != nil {
				return nil, err
			}
			req.EndDate = &endDate
		}
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
