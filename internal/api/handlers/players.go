package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crickwise/dream11-optimizer/internal/models"
	"github.com/crickwise/dream11-optimizer/pkg/database"
	"github.com/crickwise/dream11-optimizer/pkg/utils"
)

type PlayerHandler struct {
	db *database.DB
}

func NewPlayerHandler(db *database.DB) *PlayerHandler {
	return &PlayerHandler{db: db}
}

// ListPlayers returns the player pool with optional filters and pagination.
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	query := h.db.DB.Model(&models.Player{}).Preload("Team")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if maxCost := c.Query("max_cost"); maxCost != "" {
		cost, err := strconv.ParseFloat(maxCost, 64)
		if err != nil {
			utils.SendValidationError(c, "Invalid max_cost", err.Error())
			return
		}
		query = query.Where("cost <= ?", cost)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.SendInternalError(c, "Failed to count players")
		return
	}

	var players []models.Player
	if err := query.
		Order("cost DESC, name").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&players).Error; err != nil {
		utils.SendInternalError(c, "Failed to load players")
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	utils.SendSuccessWithMeta(c, players, &utils.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetPlayer returns one player by external id.
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	externalID := c.Param("id")

	var player models.Player
	if err := h.db.DB.Preload("Team").Where("external_id = ?", externalID).First(&player).Error; err != nil {
		utils.SendNotFound(c, "Player not found")
		return
	}

	utils.SendSuccess(c, player)
}
