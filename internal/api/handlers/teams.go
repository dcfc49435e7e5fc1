package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crickwise/dream11-optimizer/internal/models"
	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/database"
	"github.com/crickwise/dream11-optimizer/pkg/utils"
)

const teamsCacheTTL = time.Hour

type TeamHandler struct {
	db    *database.DB
	cache *services.CacheService
}

func NewTeamHandler(db *database.DB, cache *services.CacheService) *TeamHandler {
	return &TeamHandler{db: db, cache: cache}
}

// ListTeams returns every known team.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	ctx := context.Background()
	cacheKey := services.TeamsCacheKey()

	var teams []models.Team
	if h.cache != nil {
		if err := h.cache.Get(ctx, cacheKey, &teams); err == nil {
			utils.SendSuccess(c, teams)
			return
		}
	}

	if err := h.db.DB.Order("name").Find(&teams).Error; err != nil {
		utils.SendInternalError(c, "Failed to load teams")
		return
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, cacheKey, teams, teamsCacheTTL)
	}

	utils.SendSuccess(c, teams)
}

// GetTeamPlayers returns one team's squad.
func (h *TeamHandler) GetTeamPlayers(c *gin.Context) {
	teamID := c.Param("id")

	var team models.Team
	if err := h.db.DB.First(&team, "id = ?", teamID).Error; err != nil {
		utils.SendNotFound(c, "Team not found")
		return
	}

	var players []models.Player
	query := h.db.DB.Where("team_id = ?", team.ID)
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Order("cost DESC, name").Find(&players).Error; err != nil {
		utils.SendInternalError(c, "Failed to load players")
		return
	}

	utils.SendSuccess(c, gin.H{
		"team":    team,
		"players": players,
	})
}
