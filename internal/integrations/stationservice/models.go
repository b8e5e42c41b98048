package stationservice

import "github.com/m04kA/EVC-BookingService/pkg/types"

// Station модель зарядной станции из StationService
type Station struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	City       string     `json:"city"`
	OperatorID int64      `json:"operator_id"`
	ManagerIDs []int64    `json:"manager_ids"`
	Hours      WeekHours  `json:"working_hours"`
	Pricing    Pricing    `json:"pricing"`
	PeakHours  *PeakHours `json:"peak_hours,omitempty"`
}

// WeekHours расписание работы станции по дням недели
type WeekHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// DaySchedule расписание работы станции на один день
type DaySchedule struct {
	IsOpen    bool    `json:"is_open"`
	OpenTime  *string `json:"open_time,omitempty"`  // "08:00"
	CloseTime *string `json:"close_time,omitempty"` // "21:00"
}

// Pricing тарифная сетка станции по режимам зарядки
type Pricing struct {
	Normal Tariff `json:"normal"`
	Fast   Tariff `json:"fast"`
}

// Tariff базовая и пиковая цена за кВт·ч
type Tariff struct {
	BaseRate float64 `json:"base_rate"`
	PeakRate float64 `json:"peak_rate"`
}

// PeakHours окно пиковой нагрузки станции
type PeakHours struct {
	Start string `json:"start"` // "17:00"
	End   string `json:"end"`   // "21:00"
}

// RateFor возвращает цену за кВт·ч для режима зарядки на момент startTime.
// Пиковый тариф действует, если начало слота попадает в пиковое окно.
func (s *Station) RateFor(mode string, startTime types.TimeString) float64 {
	tariff := s.Pricing.Normal
	if mode == "fast" {
		tariff = s.Pricing.Fast
	}

	if s.PeakHours == nil {
		return tariff.BaseRate
	}

	peakStart, err := types.NewTimeStringFromString(s.PeakHours.Start)
	if err != nil {
		return tariff.BaseRate
	}
	peakEnd, err := types.NewTimeStringFromString(s.PeakHours.End)
	if err != nil {
		return tariff.BaseRate
	}

	// полуинтервал [peakStart, peakEnd)
	if !startTime.IsBefore(peakStart) && startTime.IsBefore(peakEnd) {
		return tariff.PeakRate
	}
	return tariff.BaseRate
}

// ErrorResponse модель ошибки от StationService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
