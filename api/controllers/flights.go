package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	flightsvc "github.com/andresvelarde/skyfare-backend/internal/flights"
	ticketsvc "github.com/andresvelarde/skyfare-backend/internal/tickets"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
)

type flightResponse struct {
	ID            uuid.UUID        `json:"id"`
	FlightNumber  string           `json:"flight_number"`
	Airline       string           `json:"airline"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	DepartureTime time.Time        `json:"departure_time"`
	ArrivalTime   time.Time        `json:"arrival_time"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Currency      string           `json:"currency"`
	SeatRows      int              `json:"seat_rows"`
}

type flightListResponse struct {
	Flights    []flightResponse `json:"flights"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type seatMapResponse struct {
	FlightID    uuid.UUID `json:"flight_id"`
	SeatRows    int       `json:"seat_rows"`
	SeatLetters []string  `json:"seat_letters"`
	BookedSeats []string  `json:"booked_seats"`
}

// FlightSearch lists catalog flights filtered by origin, destination, and date.
func FlightSearch(svc flightsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Search(r.Context(), flightsvc.SearchInput{
			Origin:        validators.SanitizeString(r.URL.Query().Get("origin"), 64),
			Destination:   validators.SanitizeString(r.URL.Query().Get("destination"), 64),
			DepartureDate: date,
			Limit:         limit,
			Cursor:        r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flights := make([]flightResponse, 0, len(result.Flights))
		for _, flight := range result.Flights {
			flights = append(flights, newFlightResponse(flight))
		}
		responses.WriteSuccess(w, flightListResponse{Flights: flights, NextCursor: result.NextCursor})
	}
}

// FlightGet returns one catalog flight.
func FlightGet(svc flightsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flightID, err := validators.ParseURLUUID(chi.URLParam(r, "flightID"), "flightID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flight, err := svc.GetByID(r.Context(), flightID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFlightResponse(*flight))
	}
}

// FlightSeatMap returns the flight layout plus currently occupied seats.
func FlightSeatMap(svc ticketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flightID, err := validators.ParseURLUUID(chi.URLParam(r, "flightID"), "flightID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seatMap, err := svc.SeatMap(r.Context(), flightID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seatMapResponse{
			FlightID:    seatMap.FlightID,
			SeatRows:    seatMap.SeatRows,
			SeatLetters: seatMap.SeatLetters,
			BookedSeats: seatMap.BookedSeats,
		})
	}
}

func newFlightResponse(flight models.Flight) flightResponse {
	return flightResponse{
		ID:            flight.ID,
		FlightNumber:  flight.FlightNumber,
		Airline:       flight.Airline,
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		Price:         flight.Price,
		Currency:      flight.Currency.String(),
		SeatRows:      flight.SeatRows,
	}
}
