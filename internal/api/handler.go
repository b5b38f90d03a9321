package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/crime-dashboard/internal/dashboard"
	"github.com/mr1hm/crime-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	pageTitle = "Crime Patterns Dashboard"
	plotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"
)

//go:embed templates/index.html
var templateFS embed.FS

type Handler struct {
	svc     *dashboard.Service
	metrics *observability.Metrics
	page    *template.Template
}

func NewHandler(svc *dashboard.Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		svc:     svc,
		metrics: metrics,
		page:    template.Must(template.ParseFS(templateFS, "templates/index.html")),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(h.page)

	r.GET("/", h.index)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/api/locations", h.getLocations)
	r.GET("/api/figures", h.getFigures)
	r.POST("/api/figures", h.postFigures)
	r.GET("/api/figures/:id/png", h.getFigurePNG)
	r.GET("/api/incidents", h.getIncidents)
}

type figuresRequest struct {
	Location *string `json:"location"`
}

func (h *Handler) index(c *gin.Context) {
	table := h.svc.Table()
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     pageTitle,
		"PlotlyURL": plotlyURL,
		"Locations": table.Locations(),
		"Selected":  table.DefaultLocation(),
		"FigureIDs": dashboard.FigureIDs,
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"incidents": h.svc.Table().Len(),
	})
}

func (h *Handler) getLocations(c *gin.Context) {
	table := h.svc.Table()
	c.JSON(http.StatusOK, gin.H{
		"locations": table.Locations(),
		"default":   table.DefaultLocation(),
	})
}

func (h *Handler) postFigures(c *gin.Context) {
	var req figuresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	location := h.svc.Table().DefaultLocation()
	if req.Location != nil {
		location = *req.Location
	}
	h.writeFigures(c, location)
}

func (h *Handler) getFigures(c *gin.Context) {
	h.writeFigures(c, h.location(c))
}

func (h *Handler) writeFigures(c *gin.Context, location string) {
	c.JSON(http.StatusOK, gin.H{
		"location": location,
		"figures":  h.svc.Figures(location),
	})
}

func (h *Handler) getFigurePNG(c *gin.Context) {
	id := c.Param("id")
	location := h.location(c)

	var buf bytes.Buffer
	err := h.svc.RenderPNG(&buf, id, location)
	switch {
	case err == nil:
		h.metrics.PNGRenders.WithLabelValues(id, "ok").Inc()
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	case errors.Is(err, dashboard.ErrUnknownFigure):
		// Unknown ids are not used as label values.
		h.metrics.PNGRenders.WithLabelValues("unknown", "error").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, dashboard.ErrNotRenderable), errors.Is(err, dashboard.ErrNoData):
		h.metrics.PNGRenders.WithLabelValues(id, "error").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.metrics.PNGRenders.WithLabelValues(id, "error").Inc()
		slog.Error("png render failed", "figure", id, "location", location, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to render figure",
		})
	}
}

func (h *Handler) getIncidents(c *gin.Context) {
	location := h.location(c)

	fc := toGeoJSON(h.svc.Table().Filter(location))
	body, err := fc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to encode incidents",
		})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", body)
}

// location reads the location query parameter. Absent means the default
// selection; present but empty is an ordinary (unknown) location.
func (h *Handler) location(c *gin.Context) string {
	if loc, ok := c.GetQuery("location"); ok {
		return loc
	}
	return h.svc.Table().DefaultLocation()
}
