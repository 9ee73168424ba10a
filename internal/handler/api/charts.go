package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"HydroPull/internal/usecase"
	"HydroPull/pkg/config"
	xhttp "HydroPull/pkg/http"
	xlogger "HydroPull/pkg/logger"
)

// ChartsHandler serves the generated chart inventory and the aggregate
// results of the last generation cycle.
type ChartsHandler struct {
	logger *xlogger.Logger
	gen    *usecase.Generator
	outDir string
}

func NewChartsHandler(logger *xlogger.Logger, gen *usecase.Generator, cfg *config.Config) *ChartsHandler {
	return &ChartsHandler{logger: logger, gen: gen, outDir: cfg.Output.Dir}
}

func (h *ChartsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/charts", h.ListCharts)
	g.GET("/charts/:name", h.GetChart)
	g.GET("/zones/aggregates", h.ZoneAggregates)
	g.GET("/system/evolution", h.SystemEvolution)
	g.POST("/generate", h.Generate)
}

// ListChartsRequest filters the chart listing.
type ListChartsRequest struct {
	Prefix string `query:"prefix" validate:"omitempty,max=128"`
	Limit  int    `query:"limit" validate:"gte=0"`
}

// ListCharts returns the chart images currently present on disk.
func (h *ChartsHandler) ListCharts(c echo.Context) error {
	req := &ListChartsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entries, err := os.ReadDir(h.outDir)
	if err != nil {
		if os.IsNotExist(err) {
			return xhttp.ListResponse(c, []string{}, 0)
		}
		h.logger.Error("list charts", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		if req.Prefix != "" && !strings.HasPrefix(e.Name(), req.Prefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	total := int64(len(names))
	if req.Limit > 0 && len(names) > req.Limit {
		names = names[:req.Limit]
	}
	return xhttp.ListResponse(c, names, total)
}

// GetChart streams one chart image.
func (h *ChartsHandler) GetChart(c echo.Context) error {
	name := c.Param("name")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return xhttp.BadRequestResponse(c, &xhttp.ValidationError{
			Field:   "name",
			Message: "invalid chart name",
		})
	}
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}

	path := filepath.Join(h.outDir, name)
	if _, err := os.Stat(path); err != nil {
		return xhttp.NotFoundResponse(c, "chart not found")
	}
	return c.File(path)
}

// ZoneAggregates returns the per-zone balance aggregates of the last run.
func (h *ChartsHandler) ZoneAggregates(c echo.Context) error {
	last := h.gen.Last()
	if last == nil {
		return xhttp.NotFoundResponse(c, "no generation cycle has completed yet")
	}
	return xhttp.ListResponse(c, last.Aggregates, int64(len(last.Aggregates)))
}

// SystemEvolution returns the basin-wide net balance series of the last run.
func (h *ChartsHandler) SystemEvolution(c echo.Context) error {
	last := h.gen.Last()
	if last == nil {
		return xhttp.NotFoundResponse(c, "no generation cycle has completed yet")
	}
	return xhttp.SuccessResponse(c, last.Evolution)
}

// Generate kicks off a generation cycle in the background.
func (h *ChartsHandler) Generate(c echo.Context) error {
	if err := h.gen.Trigger(c.Request().Context()); err != nil {
		if errors.Is(err, usecase.ErrGenerationRunning) {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_GENERATION_RUNNING",
				"a generation cycle is already running", http.StatusConflict))
		}
		h.logger.Error("trigger generation", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.AcceptedResponse(c, map[string]string{"status": "started"})
}
