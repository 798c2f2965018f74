package handler

import (
	"time"

	"appointment-scanner/internal/features/availability/domain"
	"appointment-scanner/internal/features/availability/ports"

	"github.com/gofiber/fiber/v2"
)

// StatusHandler serves the health probe and the latest cycle snapshot.
type StatusHandler struct {
	snapshots ports.SnapshotStore
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(snapshots ports.SnapshotStore) *StatusHandler {
	return &StatusHandler{
		snapshots: snapshots,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// SnapshotResponse is the serialized form of the latest cycle result.
type SnapshotResponse struct {
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Locations   int             `json:"locations"`
	FailedDates []string        `json:"failed_dates"`
	Entries     []EntryResponse `json:"entries"`
}

// EntryResponse is one (date, location) pair in the snapshot.
type EntryResponse struct {
	Date        string `json:"date"`
	ID          int    `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	City        string `json:"city"`
	Address     string `json:"address"`
	PostalCode  string `json:"postal_code"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Healthz godoc
// @Summary Liveness probe
// @Description Reports that the scanner process is up
// @Tags status
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *StatusHandler) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// LatestAvailability godoc
// @Summary Latest cycle result
// @Description Returns the filtered result of the most recent scan cycle
// @Tags status
// @Produce json
// @Success 200 {object} SnapshotResponse
// @Failure 404 {object} ErrorResponse
// @Router /availability/latest [get]
func (h *StatusHandler) LatestAvailability(c *fiber.Ctx) error {
	result, ok := h.snapshots.Latest()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: "no cycle completed yet",
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(toSnapshotResponse(result))
}

// toSnapshotResponse maps a domain result onto the API shape.
func toSnapshotResponse(result *domain.AggregatedResult) SnapshotResponse {
	entries := make([]EntryResponse, 0, len(result.Entries))
	for _, entry := range result.Entries {
		rec := entry.Record
		entries = append(entries, EntryResponse{
			Date:        entry.Date.Format(domain.DateKeyLayout),
			ID:          rec.ID,
			Name:        rec.Name,
			State:       rec.State,
			City:        rec.City,
			Address:     rec.Address,
			PostalCode:  rec.PostalCode,
			PhoneNumber: rec.PhoneNumber,
		})
	}

	return SnapshotResponse{
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
		Locations:   len(result.Entries),
		FailedDates: result.FailedDates(),
		Entries:     entries,
	}
}
