package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ratebook/core/internal/domain/entities"
	"github.com/ratebook/core/internal/infrastructure/logger"
	"github.com/ratebook/core/internal/ports"
)

// PairHandler handles forex pair requests
type PairHandler struct {
	pairService ports.PairService
	logger      *logger.Logger
}

// NewPairHandler creates a new pair handler
func NewPairHandler(pairService ports.PairService, logger *logger.Logger) *PairHandler {
	return &PairHandler{
		pairService: pairService,
		logger:      logger,
	}
}

// CreatePair handles POST /forex_pair
func (h *PairHandler) CreatePair(c echo.Context) error {
	var pair entities.ForexPair
	if err := c.Bind(&pair); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.pairService.CreatePair(c.Request().Context(), pair); err != nil {
		h.logger.Error("Create pair failed", "error", err, "pair_id", pair.ID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist pair")
	}

	return c.NoContent(http.StatusOK)
}

// GetPair handles GET /forex_pair/:id
func (h *PairHandler) GetPair(c echo.Context) error {
	id, err := parsePairID(c)
	if err != nil {
		return err
	}

	pair, err := h.pairService.GetPair(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, entities.ErrPairNotFound) {
			// 404 carries no body, matching the original wire behavior.
			return c.NoContent(http.StatusNotFound)
		}
		h.logger.Error("Get pair failed", "error", err, "pair_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read pair")
	}

	return c.JSON(http.StatusOK, pair)
}

// ListPairs handles GET /forex_pairs
func (h *PairHandler) ListPairs(c echo.Context) error {
	pairs, err := h.pairService.ListPairs(c.Request().Context())
	if err != nil {
		h.logger.Error("List pairs failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read pairs")
	}

	return c.JSON(http.StatusOK, pairs)
}

// UpdatePair handles PUT /forex_pair
func (h *PairHandler) UpdatePair(c echo.Context) error {
	var pair entities.ForexPair
	if err := c.Bind(&pair); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.pairService.UpdatePair(c.Request().Context(), pair); err != nil {
		h.logger.Error("Update pair failed", "error", err, "pair_id", pair.ID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist pair")
	}

	return c.NoContent(http.StatusOK)
}

// DeletePair handles DELETE /forex_pair/:id
func (h *PairHandler) DeletePair(c echo.Context) error {
	id, err := parsePairID(c)
	if err != nil {
		return err
	}

	if err := h.pairService.DeletePair(c.Request().Context(), id); err != nil {
		h.logger.Error("Delete pair failed", "error", err, "pair_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to persist pair")
	}

	return c.NoContent(http.StatusOK)
}

func parsePairID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid pair id")
	}
	return id, nil
}
