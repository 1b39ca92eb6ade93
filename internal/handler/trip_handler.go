package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wanderplan/trip-service/internal/auction"
	"github.com/wanderplan/trip-service/internal/dto"
	"github.com/wanderplan/trip-service/internal/ledger"
	"github.com/wanderplan/trip-service/internal/models"
	"github.com/wanderplan/trip-service/internal/planner"
	"github.com/wanderplan/trip-service/internal/repository"
	"github.com/wanderplan/trip-service/internal/service"
)

type TripHandler struct {
	svc service.TripService
}

func NewTripHandler(svc service.TripService) *TripHandler {
	return &TripHandler{svc: svc}
}

func (h *TripHandler) RegisterRoutes(e *echo.Echo) {
	trips := e.Group("/api/v1/trips")
	trips.POST("", h.GenerateDraft)
	trips.GET("", h.ListTrips)
	trips.GET("/:id", h.GetTrip)
	trips.DELETE("/:id", h.DeleteTrip)
	trips.GET("/:id/budget", h.BudgetSnapshot)
	trips.POST("/:id/expenses", h.AddManualExpense)

	trips.POST("/:id/activities", h.AddActivity)
	trips.DELETE("/:id/activities/:activityId", h.RemoveActivity)
	trips.POST("/:id/activities/:activityId/auction", h.ActivateAuction)
	trips.POST("/:id/activities/:activityId/confirm", h.ConfirmActivity)
	trips.POST("/:id/activities/:activityId/cancel", h.CancelActivity)

	trips.POST("/:id/watches/:watchId/offers", h.RecordOffer)
	trips.POST("/:id/watches/:watchId/pause", h.PauseWatch)
	trips.POST("/:id/watches/:watchId/resume", h.ResumeWatch)

	e.POST("/api/v1/watches/tick", h.Tick)
}

// toHTTPError maps domain errors onto status codes: validation 400,
// missing resources 404, state conflicts 409.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, planner.ErrInvalidInput),
		errors.Is(err, planner.ErrInvalidDateRange),
		errors.Is(err, auction.ErrInvalidWatch),
		errors.Is(err, ledger.ErrUnknownCategory):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrTripNotFound),
		errors.Is(err, service.ErrActivityNotFound),
		errors.Is(err, service.ErrWatchNotFound),
		errors.Is(err, service.ErrDayNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition),
		errors.Is(err, ledger.ErrInsufficientBucket),
		errors.Is(err, service.ErrActivityHasWatch),
		errors.Is(err, service.ErrActivityInUse),
		errors.Is(err, auction.ErrNotWatching),
		errors.Is(err, auction.ErrNotPaused):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusConflict, "superseded by a newer draft")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *TripHandler) GenerateDraft(c echo.Context) error {
	var req dto.GenerateDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	input, err := req.Plan.ToModel()
	if err != nil {
		return toHTTPError(err)
	}

	flights := planner.FlightCost{Outbound: req.FlightCost.Outbound, Return: req.FlightCost.Return}
	trip, err := h.svc.GenerateDraft(c.Request().Context(), req.TripID, input, flights)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.DraftResponse{
		Trip:       trip,
		Evaluation: planner.Evaluate(trip.Days, trip.Plan.BudgetAmount),
	})
}

func (h *TripHandler) GetTrip(c echo.Context) error {
	trip, err := h.svc.GetTrip(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) ListTrips(c echo.Context) error {
	trips, err := h.svc.ListTrips(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.TripSummaryResponse, len(trips))
	for i, t := range trips {
		resp[i] = dto.ToTripSummary(t)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TripHandler) DeleteTrip(c echo.Context) error {
	if err := h.svc.DeleteTrip(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TripHandler) BudgetSnapshot(c echo.Context) error {
	report, err := h.svc.BudgetSnapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *TripHandler) AddActivity(c echo.Context) error {
	var req dto.AddActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	trip, err := h.svc.AddActivity(c.Request().Context(), c.Param("id"), req.DayNumber,
		req.Name, models.Category(req.Category), models.TimeSlot(req.TimeSlot), req.EstimatedCost)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, trip)
}

func (h *TripHandler) RemoveActivity(c echo.Context) error {
	trip, err := h.svc.RemoveActivity(c.Request().Context(), c.Param("id"), c.Param("activityId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) AddManualExpense(c echo.Context) error {
	var req dto.ManualExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	trip, err := h.svc.AddManualExpense(c.Request().Context(), c.Param("id"), models.Category(req.Category), req.Amount, req.Name)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) ActivateAuction(c echo.Context) error {
	var req dto.ActivateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	watch, err := h.svc.ActivateAuction(c.Request().Context(), c.Param("id"), c.Param("activityId"), req.TargetPrice, req.MaxWaitDays)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, watch)
}

func (h *TripHandler) ConfirmActivity(c echo.Context) error {
	var req dto.ConfirmActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	trip, err := h.svc.ConfirmActivity(c.Request().Context(), c.Param("id"), c.Param("activityId"), req.PaidAmount, req.ConfirmationLink)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) CancelActivity(c echo.Context) error {
	trip, err := h.svc.CancelActivity(c.Request().Context(), c.Param("id"), c.Param("activityId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) RecordOffer(c echo.Context) error {
	var req dto.RecordOfferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	watch, err := h.svc.RecordOffer(c.Request().Context(), c.Param("id"), c.Param("watchId"), req.Price, req.Source)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, watch)
}

func (h *TripHandler) PauseWatch(c echo.Context) error {
	watch, err := h.svc.PauseWatch(c.Request().Context(), c.Param("id"), c.Param("watchId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, watch)
}

func (h *TripHandler) ResumeWatch(c echo.Context) error {
	watch, err := h.svc.ResumeWatch(c.Request().Context(), c.Param("id"), c.Param("watchId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, watch)
}

func (h *TripHandler) Tick(c echo.Context) error {
	transitioned, err := h.svc.Tick(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return toHTTPError(err)
	}
	if transitioned == nil {
		transitioned = []models.AuctionWatch{}
	}
	return c.JSON(http.StatusOK, transitioned)
}
