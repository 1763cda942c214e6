package events

import (
	"strconv"

	"event-sync/core/logger"
	"event-sync/core/mapping"
	"event-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for synchronization runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MappingsResponse lists the stored mappings of one kind.
type MappingsResponse struct {
	Kind    string            `json:"kind"`
	Count   int               `json:"count"`
	Entries []mapping.Mapping `json:"entries"`
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sync", h.HandleSync)
	app.Get("/sync/last", h.HandleLastRun)
	app.Get("/mappings/:kind", h.HandleMappings)
}

// HandleSync runs a synchronization pass and returns its report.
// @Summary Run Sync
// @Description Reconcile the source catalog with the remote catalog. Joins a run already in progress.
// @Tags sync
// @Produce json
// @Param full query bool false "Ignore the last run and reconcile every record"
// @Success 200 {object} RunReport "Run Report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} RunReport "Run aborted"
// @Router /sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var opts Options
	if raw := c.Query("full"); raw != "" {
		full, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid full parameter",
			})
		}
		opts.Full = full
	}

	l.Info("Sync requested", zap.Bool("full", opts.Full))
	report, err := h.service.Sync(c.UserContext(), opts)
	if err != nil {
		l.Error("Sync request aborted", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if report.Error != "" {
		return c.Status(fiber.StatusInternalServerError).JSON(report)
	}
	return c.JSON(report)
}

// HandleLastRun returns the report of the most recent run.
// @Summary Last Run
// @Description Get the report of the most recent synchronization run.
// @Tags sync
// @Produce json
// @Success 200 {object} RunReport "Run Report"
// @Failure 404 {object} map[string]string "No run yet"
// @Router /sync/last [get]
func (h *Handler) HandleLastRun(c *fiber.Ctx) error {
	report := h.service.LastReport()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no run recorded yet",
		})
	}
	return c.JSON(report)
}

// HandleMappings lists the stored mappings of a kind.
// @Summary List Mappings
// @Description List source key to remote id mappings of one kind.
// @Tags mappings
// @Produce json
// @Param kind path string true "Entity kind (event, place, organizer)"
// @Success 200 {object} MappingsResponse "Mappings"
// @Failure 400 {object} map[string]string "Unknown kind"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mappings/{kind} [get]
func (h *Handler) HandleMappings(c *fiber.Ctx) error {
	kind := reconcile.Kind(c.Params("kind"))
	l := logger.WithRayID(h.service.logger, c)

	if !isKind(kind) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown kind " + string(kind),
		})
	}

	entries, err := h.service.Mappings(c.UserContext(), kind)
	if err != nil {
		l.Error("Failed to list mappings", zap.String("kind", string(kind)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(MappingsResponse{Kind: string(kind), Count: len(entries), Entries: entries})
}
