package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
	"github.com/crickwise/dream11-optimizer/internal/models"
	"github.com/crickwise/dream11-optimizer/internal/providers"
	"github.com/crickwise/dream11-optimizer/internal/scoring"
	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/config"
	"github.com/crickwise/dream11-optimizer/pkg/database"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type RouterSuite struct {
	suite.Suite
	db     *database.DB
	router *gin.Engine
	cfg    *config.Config
	logger *logrus.Logger
}

func (s *RouterSuite) SetupTest() {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	s.db = &database.DB{DB: gormDB}
	s.Require().NoError(s.db.AutoMigrate(
		&models.Team{},
		&models.Venue{},
		&models.Player{},
		&models.Prediction{},
		&models.PredictionPlayer{},
	))

	s.cfg = &config.Config{
		JWTSecret:     "test-secret",
		AdminUser:     "admin",
		AdminPassword: "hunter2",
	}
	s.logger = logrus.New()
	s.logger.SetLevel(logrus.PanicLevel)

	s.router = s.newRouter(services.NewClientRateLimiter(100, 100))
	s.seedSquads()
}

// newRouter mounts the production route tree against the suite's database,
// with no redis behind the cache.
func (s *RouterSuite) newRouter(limiter *services.ClientRateLimiter) *gin.Engine {
	predictor := services.NewPredictorService(
		s.db,
		nil,
		scoring.DefaultConfig(),
		services.PredictionDefaults{Budget: 100, TeamSize: 11, MaxBacktracks: 20},
		0,
		s.logger,
	)
	fetcher := services.NewDataFetcherService(
		s.db, nil,
		providers.NewCSVProvider(s.datasetDir(), s.logger),
		cricket.DefaultClassifierConfig(), s.logger, time.Hour,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router.Group("/api/v1"), Deps{
		DB:          s.db,
		Predictor:   predictor,
		DataFetcher: fetcher,
		RateLimiter: limiter,
		Config:      s.cfg,
		Logger:      s.logger,
	})
	return router
}

func (s *RouterSuite) datasetDir() string {
	dir := s.T().TempDir()

	auction := `Team,Player,Role,Price
Gujarat Titans,,,
,Shubman Gill,Batsman,16.5
,Rashid Khan,Bowler,18.0
`
	runs := `Player,Matches,Runs,Average,Strike Rate
Shubman Gill,15,650,46.4,155.9
`
	wickets := `Player,Matches,Wickets,Economy,Average
Rashid Khan,15,21,8.2,24.8
`

	s.Require().NoError(os.WriteFile(filepath.Join(dir, "ipl data - auction_2025.csv"), []byte(auction), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "ipl data - most_runs.csv"), []byte(runs), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "ipl data - most_wickets.csv"), []byte(wickets), 0o644))
	return dir
}

func (s *RouterSuite) seedSquads() {
	squads := map[string][]struct {
		name string
		role cricket.Role
		cost float64
		runs int
		wkts int
	}{
		"Mumbai Indians": {
			{"MI Keeper One", cricket.RoleWicketKeeper, 9.0, 900, 0},
			{"MI Keeper Two", cricket.RoleWicketKeeper, 6.5, 400, 0},
			{"MI Bat One", cricket.RoleBatsman, 10.5, 1500, 0},
			{"MI Bat Two", cricket.RoleBatsman, 9.0, 1100, 0},
			{"MI Bat Three", cricket.RoleBatsman, 7.5, 700, 0},
			{"MI Bat Four", cricket.RoleBatsman, 6.0, 350, 0},
			{"MI Allround One", cricket.RoleAllRounder, 9.5, 800, 30},
			{"MI Allround Two", cricket.RoleAllRounder, 7.0, 450, 18},
			{"MI Bowl One", cricket.RoleBowler, 9.0, 100, 55},
			{"MI Bowl Two", cricket.RoleBowler, 7.5, 60, 38},
			{"MI Bowl Three", cricket.RoleBowler, 6.0, 30, 22},
		},
		"Chennai Super Kings": {
			{"CSK Keeper One", cricket.RoleWicketKeeper, 8.5, 850, 0},
			{"CSK Keeper Two", cricket.RoleWicketKeeper, 6.0, 380, 0},
			{"CSK Bat One", cricket.RoleBatsman, 10.0, 1400, 0},
			{"CSK Bat Two", cricket.RoleBatsman, 8.5, 1000, 0},
			{"CSK Bat Three", cricket.RoleBatsman, 7.0, 650, 0},
			{"CSK Bat Four", cricket.RoleBatsman, 5.5, 300, 0},
			{"CSK Allround One", cricket.RoleAllRounder, 9.0, 750, 28},
			{"CSK Allround Two", cricket.RoleAllRounder, 6.5, 420, 15},
			{"CSK Bowl One", cricket.RoleBowler, 8.5, 90, 50},
			{"CSK Bowl Two", cricket.RoleBowler, 7.0, 55, 35},
			{"CSK Bowl Three", cricket.RoleBowler, 5.5, 25, 20},
		},
	}

	for teamName, players := range squads {
		team := models.Team{Name: teamName}
		s.Require().NoError(s.db.Create(&team).Error)

		for _, p := range players {
			matches := 40
			player := models.Player{
				ExternalID:        services.PlayerExternalID(p.name, teamName),
				Name:              p.name,
				TeamID:            team.ID,
				RawRole:           string(p.role),
				Role:              string(p.role),
				Cost:              p.cost,
				BattingMatches:    matches,
				BattingRuns:       p.runs,
				BattingAverage:    float64(p.runs) / float64(matches),
				BattingStrikeRate: 130,
			}
			if p.wkts > 0 {
				player.BowlingMatches = matches
				player.BowlingWickets = p.wkts
				player.BowlingEconomy = 7.5
			}
			s.Require().NoError(s.db.Create(&player).Error)
		}
	}
}

func (s *RouterSuite) do(router *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *RouterSuite) login() string {
	w, resp := s.do(s.router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": s.cfg.AdminUser,
		"password": s.cfg.AdminPassword,
	}, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &data))
	s.Require().NotEmpty(data.Token)
	return data.Token
}

func (s *RouterSuite) predictBody() gin.H {
	return gin.H{
		"team1":      "Mumbai Indians",
		"team2":      "Chennai Super Kings",
		"venue":      "Wankhede Stadium",
		"pitch_type": "BAL",
		"strategies": []string{"AGG", "BAL"},
	}
}

func (s *RouterSuite) TestPredictReturnsLineups() {
	w, resp := s.do(s.router, http.MethodPost, "/api/v1/predict", s.predictBody(), "")
	s.Equal(http.StatusOK, w.Code)
	s.True(resp.Success)

	var data struct {
		ID      string `json:"id"`
		Lineups []struct {
			Strategy string `json:"strategy"`
			Lineup   struct {
				Players []json.RawMessage `json:"players"`
			} `json:"lineup"`
		} `json:"lineups"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &data))
	s.NotEmpty(data.ID)
	s.Require().Len(data.Lineups, 2)
	s.Equal("AGG", data.Lineups[0].Strategy)
	s.Equal("BAL", data.Lineups[1].Strategy)
	for _, sl := range data.Lineups {
		s.Len(sl.Lineup.Players, 11)
	}
}

func (s *RouterSuite) TestPredictSameTeamsBadRequest() {
	body := s.predictBody()
	body["team2"] = body["team1"]

	w, resp := s.do(s.router, http.MethodPost, "/api/v1/predict", body, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
}

func (s *RouterSuite) TestPredictMissingTeamBadRequest() {
	body := s.predictBody()
	delete(body, "team2")

	w, resp := s.do(s.router, http.MethodPost, "/api/v1/predict", body, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
}

func (s *RouterSuite) TestPredictUnknownTeamUnprocessable() {
	body := s.predictBody()
	body["team2"] = "Rajasthan Royals"

	w, resp := s.do(s.router, http.MethodPost, "/api/v1/predict", body, "")
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("INFEASIBLE", resp.Error.Code)
}

func (s *RouterSuite) TestPredictBudgetInfeasibleUnprocessable() {
	body := s.predictBody()
	body["budget"] = 10.0

	w, resp := s.do(s.router, http.MethodPost, "/api/v1/predict", body, "")
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("INFEASIBLE", resp.Error.Code)
}

func (s *RouterSuite) TestPredictionHistoryRequiresAuth() {
	w, resp := s.do(s.router, http.MethodGet, "/api/v1/predictions", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("UNAUTHORIZED", resp.Error.Code)

	w, _ = s.do(s.router, http.MethodGet, "/api/v1/predictions/some-id", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(s.router, http.MethodGet, "/api/v1/predictions", nil, "not-a-token")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestPredictionHistoryWithToken() {
	w, resp := s.do(s.router, http.MethodPost, "/api/v1/predict", s.predictBody(), "")
	s.Require().Equal(http.StatusOK, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &created))

	token := s.login()

	w, resp = s.do(s.router, http.MethodGet, "/api/v1/predictions", nil, token)
	s.Equal(http.StatusOK, w.Code)
	s.True(resp.Success)

	w, _ = s.do(s.router, http.MethodGet, "/api/v1/predictions/"+created.ID, nil, token)
	s.Equal(http.StatusOK, w.Code)

	w, resp = s.do(s.router, http.MethodGet, "/api/v1/predictions/no-such-id", nil, token)
	s.Equal(http.StatusNotFound, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("NOT_FOUND", resp.Error.Code)
}

func (s *RouterSuite) TestLoginRejectsBadCredentials() {
	w, resp := s.do(s.router, http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": "admin",
		"password": "wrong",
	}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("UNAUTHORIZED", resp.Error.Code)
}

func (s *RouterSuite) TestPredictRateLimited() {
	// Burst of one: the second request in quick succession must be rejected.
	router := s.newRouter(services.NewClientRateLimiter(0.01, 1))

	w, _ := s.do(router, http.MethodPost, "/api/v1/predict", s.predictBody(), "")
	s.Equal(http.StatusOK, w.Code)

	w, resp := s.do(router, http.MethodPost, "/api/v1/predict", s.predictBody(), "")
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("RATE_LIMITED", resp.Error.Code)
}

func (s *RouterSuite) TestStatsRoutesAuthGated() {
	w, _ := s.do(s.router, http.MethodPost, "/api/v1/stats/refresh", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	token := s.login()

	w, resp := s.do(s.router, http.MethodPost, "/api/v1/stats/refresh", nil, token)
	s.Equal(http.StatusOK, w.Code)
	s.True(resp.Success)

	var count int64
	s.Require().NoError(s.db.Model(&models.Player{}).Where("external_id = ?", services.PlayerExternalID("Shubman Gill", "Gujarat Titans")).Count(&count).Error)
	s.EqualValues(1, count)

	w, resp = s.do(s.router, http.MethodGet, "/api/v1/stats/status", nil, token)
	s.Equal(http.StatusOK, w.Code)
	s.True(resp.Success)
}

func (s *RouterSuite) TestListTeamsAndPlayers() {
	w, resp := s.do(s.router, http.MethodGet, "/api/v1/teams", nil, "")
	s.Equal(http.StatusOK, w.Code)

	var teams []models.Team
	s.Require().NoError(json.Unmarshal(resp.Data, &teams))
	s.Require().Len(teams, 2)

	path := fmt.Sprintf("/api/v1/teams/%d/players", teams[0].ID)
	w, _ = s.do(s.router, http.MethodGet, path, nil, "")
	s.Equal(http.StatusOK, w.Code)

	w, resp = s.do(s.router, http.MethodGet, "/api/v1/players?role=BWL", nil, "")
	s.Equal(http.StatusOK, w.Code)

	var players []models.Player
	s.Require().NoError(json.Unmarshal(resp.Data, &players))
	s.Require().NotEmpty(players)
	for _, p := range players {
		s.Equal("BWL", p.Role)
	}

	w, resp = s.do(s.router, http.MethodGet, "/api/v1/players/no-such-player", nil, "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Require().NotNil(resp.Error)
	s.Equal("NOT_FOUND", resp.Error.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
