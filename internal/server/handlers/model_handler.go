package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/biomethane/internal/domain/models"
	"github.com/mamadbah2/biomethane/internal/service/reporting"
)

// ModelService is the evaluation surface exposed over HTTP.
type ModelService interface {
	Evaluate(ctx context.Context, scenario models.Scenario) (*models.Evaluation, error)
	Sensitivity(ctx context.Context, scenario models.Scenario, drivers []string) (*models.SensitivityReport, error)
}

// Catalog looks up feedstock reference profiles.
type Catalog interface {
	Profile(ctx context.Context, kind string) (models.FeedstockProfile, error)
}

// ModelHandler handles the model HTTP endpoints.
type ModelHandler struct {
	svc      ModelService
	catalog  Catalog
	scenario models.Scenario
	logger   *zap.Logger
}

// NewModelHandler constructs the HTTP handler adapter. defaultScenario is
// served as the base case in effect.
func NewModelHandler(svc ModelService, catalog Catalog, defaultScenario models.Scenario, logger *zap.Logger) *ModelHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelHandler{svc: svc, catalog: catalog, scenario: defaultScenario, logger: logger}
}

// ScenarioRequest is the JSON body of an evaluation.
type ScenarioRequest struct {
	Feedstocks []models.FeedstockRecord    `json:"feedstocks"`
	Market     models.MarketAssumptions    `json:"market"`
	Operating  models.OperatingAssumptions `json:"operating"`
	Capital    models.CapitalStructure     `json:"capital"`
	CO2Policy  string                      `json:"co2_policy" binding:"omitempty,oneof=methane_shortfall flat_fraction"`
}

// Scenario converts the request into the domain type.
func (r ScenarioRequest) Scenario() models.Scenario {
	return models.Scenario{
		Feedstocks: r.Feedstocks,
		Market:     r.Market,
		Operating:  r.Operating,
		Capital:    r.Capital,
		CO2Policy:  r.CO2Policy,
	}
}

// SensitivityRequest is the JSON body of a tornado-only run.
type SensitivityRequest struct {
	ScenarioRequest
	Drivers []string `json:"drivers"`
}

// Evaluate runs the full model. With ?format=text the plain-text summary
// is returned instead of JSON.
func (h *ModelHandler) Evaluate(c *gin.Context) {
	var req ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid evaluation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	eval, err := h.svc.Evaluate(c.Request.Context(), req.Scenario())
	if err != nil {
		h.respondError(c, "evaluation failed", err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, reporting.FormatSummary(eval))
		return
	}
	c.JSON(http.StatusOK, eval)
}

// Sensitivity runs only the tornado sweep.
func (h *ModelHandler) Sensitivity(c *gin.Context) {
	var req SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sensitivity payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	report, err := h.svc.Sensitivity(c.Request.Context(), req.Scenario(), req.Drivers)
	if err != nil {
		h.respondError(c, "sensitivity failed", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DefaultScenario returns the base scenario in effect.
func (h *ModelHandler) DefaultScenario(c *gin.Context) {
	c.JSON(http.StatusOK, h.scenario)
}

// Feedstock returns the catalog profile of one kind.
func (h *ModelHandler) Feedstock(c *gin.Context) {
	profile, err := h.catalog.Profile(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.respondError(c, "catalog lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ModelHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidScenario):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrProfileNotFound):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream dependency failed"})
	}
}
