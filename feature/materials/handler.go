package materials

import (
	"errors"
	"strings"

	"material-reconciler/core/logger"
	"material-reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for material reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the materials routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	rec := app.Group("/reconcile")
	rec.Post("/", h.HandleReconcile)
	rec.Get("/:session", h.HandleGetSession)
	rec.Post("/:session/confirm", h.HandleConfirm)

	app.Get("/catalog/search", h.HandleSearch)

	m := app.Group("/mappings")
	m.Post("/", h.HandleCreateMapping)
	m.Get("/lookup", h.HandleLookupMapping)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, reconcile.ErrNotFound),
		errors.Is(err, reconcile.ErrMappingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, reconcile.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, reconcile.ErrCatalogUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Debug(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
}

// HandleReconcile reconciles a batch of calculator materials.
// @Summary Reconcile Materials
// @Description Matches calculator materials against the warehouse catalog. Known and confidently matched lines are processed; the rest come back with ranked suggestions.
// @Tags reconcile
// @Accept json
// @Produce json
// @Param request body ReconcileRequest true "Calculator materials"
// @Success 200 {object} reconcile.Result "Reconciliation Result"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 503 {object} map[string]string "Catalog Unavailable"
// @Failure 504 {object} map[string]string "Timeout"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	res, err := h.service.Reconcile(c.UserContext(), req)
	if err != nil {
		return h.fail(c, l, "Reconciliation failed", err)
	}

	l.Info("Reconciliation completed",
		zap.String("session", res.SessionID),
		zap.Int("processed", res.Summary.Processed),
		zap.Int("unmapped", res.Summary.Unmapped))

	return c.JSON(res)
}

// HandleGetSession returns a reconciliation session.
// @Summary Get Session
// @Description Returns the current partition of a reconciliation session, including operator confirmations.
// @Tags reconcile
// @Produce json
// @Param session path string true "Session ID"
// @Success 200 {object} SessionView "Session"
// @Failure 404 {object} map[string]string "Session Not Found"
// @Router /reconcile/{session} [get]
func (h *Handler) HandleGetSession(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	view, err := h.service.Session(c.Params("session"))
	if err != nil {
		return h.fail(c, l, "Session lookup failed", err)
	}
	return c.JSON(view)
}

// HandleConfirm confirms a warehouse entry for an unmapped line.
// @Summary Confirm Match
// @Description Stores a manual mapping for the line's normalized name and moves every line with that name to processed.
// @Tags reconcile
// @Accept json
// @Produce json
// @Param session path string true "Session ID"
// @Param request body ConfirmRequest true "Confirmation"
// @Success 200 {object} reconcile.Confirmation "Confirmation"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 404 {object} map[string]string "Session, Material or Warehouse Entry Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile/{session}/confirm [post]
func (h *Handler) HandleConfirm(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	conf, err := h.service.Confirm(c.UserContext(), c.Params("session"), req, logger.Operator(c))
	if err != nil {
		return h.fail(c, l, "Confirmation failed", err)
	}
	if !conf.Persisted {
		l.Warn("Confirmed mapping was not persisted", zap.String("error", conf.Error))
	}
	return c.JSON(conf)
}

// HandleSearch ranks the catalog against a search term.
// @Summary Search Catalog
// @Description Ranks warehouse materials by similarity to a free-text term.
// @Tags catalog
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Maximum results (default 5, max 50)"
// @Success 200 {array} reconcile.Candidate "Ranked Materials"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 503 {object} map[string]string "Catalog Unavailable"
// @Router /catalog/search [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must not be negative"})
	}

	results, err := h.service.Search(c.UserContext(), term, limit)
	if err != nil {
		return h.fail(c, l, "Catalog search failed", err)
	}
	if results == nil {
		results = []reconcile.Candidate{}
	}
	return c.JSON(results)
}

// HandleCreateMapping creates or replaces a mapping.
// @Summary Create Mapping
// @Description Stores a mapping from a normalized calculator name to a warehouse entry. An existing mapping for the same key is replaced.
// @Tags mappings
// @Accept json
// @Produce json
// @Param request body MappingCreateRequest true "Mapping"
// @Success 201 {object} reconcile.MaterialMapping "Stored Mapping"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 404 {object} map[string]string "Warehouse Entry Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mappings [post]
func (h *Handler) HandleCreateMapping(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req MappingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	m, err := h.service.CreateMapping(c.UserContext(), req, logger.Operator(c))
	if err != nil {
		return h.fail(c, l, "Mapping creation failed", err)
	}

	l.Info("Mapping stored",
		zap.String("calculator_name", m.CalculatorName),
		zap.Int64("warehouse_id", m.WarehouseID),
		zap.String("mapping_type", string(m.MappingType)))

	return c.Status(fiber.StatusCreated).JSON(m)
}

// HandleLookupMapping returns the mapping stored for a name.
// @Summary Lookup Mapping
// @Description Normalizes the name and category and returns the stored mapping.
// @Tags mappings
// @Produce json
// @Param name query string true "Calculator material name"
// @Param category query string false "Calculator category"
// @Success 200 {object} reconcile.MaterialMapping "Mapping"
// @Failure 400 {object} map[string]string "Invalid Request"
// @Failure 404 {object} map[string]string "Mapping Not Found"
// @Router /mappings/lookup [get]
func (h *Handler) HandleLookupMapping(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	m, err := h.service.LookupMapping(c.UserContext(), c.Query("name"), c.Query("category"))
	if err != nil {
		return h.fail(c, l, "Mapping lookup failed", err)
	}
	return c.JSON(m)
}
