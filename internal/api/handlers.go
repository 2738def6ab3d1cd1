package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ngmaloney/weather-terminal/internal/logger"
	"github.com/ngmaloney/weather-terminal/internal/models"
	"github.com/ngmaloney/weather-terminal/internal/refresh"
	"github.com/ngmaloney/weather-terminal/internal/tiles"
)

// Dashboard is the part of the refresh controller the API reads and drives
type Dashboard interface {
	Display() refresh.Display
	OnViewportChanged(vp models.Viewport) ([]tiles.Layer, error)
}

// LayerSelector picks overlay tiles without touching dashboard state
type LayerSelector interface {
	Select(vp models.Viewport) ([]tiles.Layer, error)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// DashboardResponse is the display plus resolved icon image URLs
type DashboardResponse struct {
	refresh.Display
	CurrentIconURL string   `json:"current_icon_url,omitempty"`
	DailyIconURLs  []string `json:"daily_icon_urls,omitempty"`
}

type LayersResponse struct {
	Layers []tiles.Layer `json:"layers"`
}

type Handler struct {
	dashboard Dashboard
	selector  LayerSelector
	logger    logger.Logger
}

func NewHandler(dashboard Dashboard, selector LayerSelector, log logger.Logger) *Handler {
	return &Handler{
		dashboard: dashboard,
		selector:  selector,
		logger:    logger.Component(log, "api_handler"),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// GetDashboard returns everything the terminal currently shows
func (h *Handler) GetDashboard(c *gin.Context) {
	d := h.dashboard.Display()

	resp := DashboardResponse{Display: d}
	if d.Current != nil {
		resp.CurrentIconURL = models.IconURL(d.Current.Icon)
	}
	if d.Daily != nil {
		resp.DailyIconURLs = make([]string, len(d.Daily.Days))
		for i, day := range d.Daily.Days {
			resp.DailyIconURLs[i] = models.IconURL(day.Icon)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetLayers selects overlays for a viewport given as query parameters:
// lat, lon, zoom and an optional bounds=lat1,lon1,lat2,lon2.
func (h *Handler) GetLayers(c *gin.Context) {
	vp, err := viewportFromQuery(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	layers, err := h.selector.Select(vp)
	if err != nil {
		h.respondSelectError(c, err)
		return
	}

	c.JSON(http.StatusOK, LayersResponse{Layers: layers})
}

// PostViewport records a map widget's viewport and returns its layers
func (h *Handler) PostViewport(c *gin.Context) {
	var vp models.Viewport
	if err := c.ShouldBindJSON(&vp); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid viewport body: %v", err))
		return
	}

	layers, err := h.dashboard.OnViewportChanged(vp)
	if err != nil {
		h.respondSelectError(c, err)
		return
	}

	c.JSON(http.StatusOK, LayersResponse{Layers: layers})
}

func (h *Handler) NotFound(c *gin.Context) {
	h.respondError(c, http.StatusNotFound, fmt.Sprintf("route %s not found", c.Request.URL.Path))
}

func (h *Handler) respondSelectError(c *gin.Context, err error) {
	if errors.Is(err, tiles.ErrInvalidViewport) {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Errorf("layer selection failed: %v", err)
	h.respondError(c, http.StatusInternalServerError, "layer selection failed")
}

func (h *Handler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func viewportFromQuery(c *gin.Context) (models.Viewport, error) {
	var vp models.Viewport

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return vp, fmt.Errorf("valid lat parameter is required")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return vp, fmt.Errorf("valid lon parameter is required")
	}
	vp.Center = [2]float64{lat, lon}

	if z := c.Query("zoom"); z != "" {
		vp.Zoom, err = strconv.Atoi(z)
		if err != nil {
			return vp, fmt.Errorf("zoom must be an integer")
		}
	}

	raw := c.Query("bounds")
	if raw == "" {
		return vp, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return vp, fmt.Errorf("%w: bounds needs lat1,lon1,lat2,lon2", tiles.ErrInvalidViewport)
	}
	values := make([]float64, 4)
	for i, p := range parts {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vp, fmt.Errorf("%w: bad bounds value %q", tiles.ErrInvalidViewport, p)
		}
	}
	vp.Bounds = [][]float64{{values[0], values[1]}, {values[2], values[3]}}

	return vp, nil
}
