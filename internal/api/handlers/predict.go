package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
	"github.com/crickwise/dream11-optimizer/internal/selector"
	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/utils"
)

type PredictHandler struct {
	predictor *services.PredictorService
	logger    *logrus.Logger
}

type PredictRequest struct {
	Team1      string   `json:"team1" binding:"required"`
	Team2      string   `json:"team2" binding:"required"`
	Venue      string   `json:"venue"`
	PitchType  string   `json:"pitch_type"`
	Budget     float64  `json:"budget"`
	TeamSize   int      `json:"team_size"`
	Strategies []string `json:"strategies"`
}

func NewPredictHandler(predictor *services.PredictorService, logger *logrus.Logger) *PredictHandler {
	return &PredictHandler{predictor: predictor, logger: logger}
}

// Predict builds one recommended lineup per requested strategy.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid prediction request", err.Error())
		return
	}

	strategies := make([]cricket.Strategy, len(req.Strategies))
	for i, s := range req.Strategies {
		strategies[i] = cricket.Strategy(s)
	}

	result, err := h.predictor.Predict(c.Request.Context(), services.PredictionRequest{
		Team1:      req.Team1,
		Team2:      req.Team2,
		Venue:      req.Venue,
		PitchType:  cricket.PitchType(req.PitchType),
		Budget:     req.Budget,
		TeamSize:   req.TeamSize,
		Strategies: strategies,
	})
	if err != nil {
		h.sendPredictionError(c, err)
		return
	}

	utils.SendSuccess(c, result)
}

// sendPredictionError translates the selection error taxonomy into API
// responses: bad configuration is the caller's fault, an infeasible pool or
// budget is a valid request the data cannot satisfy.
func (h *PredictHandler) sendPredictionError(c *gin.Context, err error) {
	var invalidCfg *selector.InvalidConfigurationError
	if errors.As(err, &invalidCfg) {
		utils.SendValidationError(c, "Invalid prediction configuration", invalidCfg.Error())
		return
	}

	var insufficient *selector.InsufficientPlayersError
	if errors.As(err, &insufficient) {
		utils.SendUnprocessable(c, utils.NewAppError(utils.ErrCodeInfeasible, "Candidate pool cannot satisfy the lineup constraints", insufficient.Error()))
		return
	}

	var budget *selector.BudgetInfeasibleError
	if errors.As(err, &budget) {
		utils.SendUnprocessable(c, utils.NewAppError(utils.ErrCodeInfeasible, "No valid lineup fits the budget", budget.Error()))
		return
	}

	h.logger.Errorf("Prediction failed: %v", err)
	utils.SendInternalError(c, "Prediction failed")
}

// ListPredictions returns stored prediction runs, newest first.
func (h *PredictHandler) ListPredictions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	predictions, total, err := h.predictor.ListPredictions(perPage, (page-1)*perPage)
	if err != nil {
		h.logger.Errorf("Failed to list predictions: %v", err)
		utils.SendInternalError(c, "Failed to load predictions")
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	utils.SendSuccessWithMeta(c, predictions, &utils.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetPrediction returns one stored run with its lineup members.
func (h *PredictHandler) GetPrediction(c *gin.Context) {
	prediction, err := h.predictor.GetPrediction(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "Prediction not found")
			return
		}
		h.logger.Errorf("Failed to load prediction: %v", err)
		utils.SendInternalError(c, "Failed to load prediction")
		return
	}

	utils.SendSuccess(c, prediction)
}
