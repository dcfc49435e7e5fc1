package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gorm.io/datatypes"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
	"github.com/crickwise/dream11-optimizer/internal/models"
	"github.com/crickwise/dream11-optimizer/internal/scoring"
	"github.com/crickwise/dream11-optimizer/internal/selector"
	"github.com/crickwise/dream11-optimizer/pkg/database"
)

// poolCacheTTL keeps squad rows hot between back-to-back predictions for the
// same match without holding stale stats for long after a refresh.
const poolCacheTTL = 5 * time.Minute

// PredictionDefaults are applied when a request omits the optional knobs.
type PredictionDefaults struct {
	Budget        float64
	TeamSize      int
	MaxBacktracks int
}

// PredictionRequest is the normalized prediction input after handler-level
// decoding. Strategies keeps the caller's order; it is never empty.
type PredictionRequest struct {
	Team1      string
	Team2      string
	Venue      string
	PitchType  cricket.PitchType
	Budget     float64
	TeamSize   int
	Strategies []cricket.Strategy
}

// StrategyLineup pairs a strategy with the lineup it produced.
type StrategyLineup struct {
	Strategy cricket.Strategy `json:"strategy"`
	Lineup   cricket.Lineup   `json:"lineup"`
}

// PoolAnalytics summarizes the scored candidate pool a prediction drew from.
type PoolAnalytics struct {
	PoolSize     int     `json:"pool_size"`
	MeanPoints   float64 `json:"mean_points"`
	MedianPoints float64 `json:"median_points"`
	P90Points    float64 `json:"p90_points"`
}

// PredictionResult is the full response snapshot, also stored as the
// prediction's JSON result column.
type PredictionResult struct {
	ID             string                `json:"id"`
	Team1          string                `json:"team1"`
	Team2          string                `json:"team2"`
	Venue          string                `json:"venue,omitempty"`
	PitchType      cricket.PitchType     `json:"pitch_type,omitempty"`
	Budget         float64               `json:"budget"`
	TeamSize       int                   `json:"team_size"`
	RulesetVersion string                `json:"ruleset_version"`
	Lineups        []StrategyLineup      `json:"lineups"`
	Analytics      PoolAnalytics         `json:"analytics"`
	Warnings       []cricket.DataWarning `json:"warnings,omitempty"`
	Cached         bool                  `json:"cached"`
	CreatedAt      time.Time             `json:"created_at"`
}

// PredictorService runs the full pipeline: load the candidate pool for the
// two sides, score it, select one lineup per requested strategy, persist the
// run and cache the response.
type PredictorService struct {
	db       *database.DB
	cache    *CacheService
	scorer   *scoring.Scorer
	scoring  scoring.Config
	defaults PredictionDefaults
	cacheTTL time.Duration
	logger   *logrus.Logger
}

func NewPredictorService(
	db *database.DB,
	cache *CacheService,
	scoringCfg scoring.Config,
	defaults PredictionDefaults,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) *PredictorService {
	return &PredictorService{
		db:       db,
		cache:    cache,
		scorer:   scoring.NewScorer(scoringCfg),
		scoring:  scoringCfg,
		defaults: defaults,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Predict builds one lineup per requested strategy. Identical requests hit
// the cache; any selection failure fails the whole run so a caller never
// receives a partial set of lineups.
func (s *PredictorService) Predict(ctx context.Context, req PredictionRequest) (*PredictionResult, error) {
	s.applyDefaults(&req)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	cacheKey := s.cacheKey(req)
	if s.cache != nil {
		var cached PredictionResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			cached.Cached = true
			s.logger.WithField("prediction_id", cached.ID).Debug("Prediction served from cache")
			return &cached, nil
		}
	}

	pool, warnings, err := s.buildScoredPool(ctx, req)
	if err != nil {
		return nil, err
	}

	matchCtx := cricket.MatchContext{
		Team1:     req.Team1,
		Team2:     req.Team2,
		Venue:     req.Venue,
		PitchType: req.PitchType,
	}

	lineups, err := s.runStrategies(req, pool, matchCtx)
	if err != nil {
		return nil, err
	}

	result := &PredictionResult{
		ID:             uuid.New().String(),
		Team1:          req.Team1,
		Team2:          req.Team2,
		Venue:          req.Venue,
		PitchType:      req.PitchType,
		Budget:         req.Budget,
		TeamSize:       req.TeamSize,
		RulesetVersion: s.scoring.Table.Version,
		Lineups:        lineups,
		Analytics:      analyzePool(pool),
		Warnings:       warnings,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.persist(result); err != nil {
		s.logger.Errorf("Failed to persist prediction %s: %v", result.ID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warnf("Failed to cache prediction %s: %v", result.ID, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"prediction_id": result.ID,
		"teams":         req.Team1 + " vs " + req.Team2,
		"strategies":    len(lineups),
		"pool_size":     len(pool),
	}).Info("Prediction complete")

	return result, nil
}

func (s *PredictorService) applyDefaults(req *PredictionRequest) {
	if req.Budget <= 0 {
		req.Budget = s.defaults.Budget
	}
	if req.TeamSize <= 0 {
		req.TeamSize = s.defaults.TeamSize
	}
	if len(req.Strategies) == 0 {
		req.Strategies = []cricket.Strategy{cricket.StrategyBalanced}
	}
}

func (s *PredictorService) validateRequest(req PredictionRequest) error {
	if req.Team1 == "" || req.Team2 == "" {
		return &selector.InvalidConfigurationError{Field: "match", Reason: "both teams are required"}
	}
	if req.Team1 == req.Team2 {
		return &selector.InvalidConfigurationError{Field: "match", Reason: "team1 and team2 must differ"}
	}
	seen := make(map[cricket.Strategy]bool, len(req.Strategies))
	for _, st := range req.Strategies {
		if !st.Valid() {
			return &selector.InvalidConfigurationError{Field: "strategies", Reason: fmt.Sprintf("unknown strategy %q", st)}
		}
		if seen[st] {
			return &selector.InvalidConfigurationError{Field: "strategies", Reason: fmt.Sprintf("strategy %q requested twice", st)}
		}
		seen[st] = true
	}
	return nil
}

// buildScoredPool loads both squads and scores them for the requested match
// context. Raw squad rows are cached briefly per team pair; scoring itself is
// cheap and always runs against the request's context.
func (s *PredictorService) buildScoredPool(ctx context.Context, req PredictionRequest) ([]cricket.ScoredPlayer, []cricket.DataWarning, error) {
	teams, err := s.loadTeams(req.Team1, req.Team2)
	if err != nil {
		return nil, nil, err
	}

	poolKey := PlayerPoolCacheKey(req.Team1, req.Team2)
	var players []models.Player
	cached := false
	if s.cache != nil {
		if err := s.cache.Get(ctx, poolKey, &players); err == nil {
			cached = true
		}
	}

	if !cached {
		if err := s.db.DB.
			Where("team_id IN ?", []uint{teams[req.Team1].ID, teams[req.Team2].ID}).
			Order("external_id").
			Find(&players).Error; err != nil {
			return nil, nil, fmt.Errorf("load players: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, poolKey, players, poolCacheTTL); err != nil {
				s.logger.Warnf("Failed to cache player pool %s: %v", poolKey, err)
			}
		}
	}

	teamNames := map[uint]string{
		teams[req.Team1].ID: req.Team1,
		teams[req.Team2].ID: req.Team2,
	}

	records := make([]cricket.PlayerRecord, 0, len(players))
	for i := range players {
		rec, err := players[i].ToRecord(teamNames[players[i].TeamID], cricket.DefaultClassifierConfig())
		if err != nil {
			s.logger.Warnf("Skipping player %s: %v", players[i].ExternalID, err)
			continue
		}
		records = append(records, rec)
	}

	matchCtx := cricket.MatchContext{
		Team1:     req.Team1,
		Team2:     req.Team2,
		Venue:     req.Venue,
		PitchType: req.PitchType,
	}
	scored, warnings := s.scorer.ScorePool(records, matchCtx)
	return scored, warnings, nil
}

func (s *PredictorService) loadTeams(names ...string) (map[string]models.Team, error) {
	teams := make(map[string]models.Team, len(names))
	for _, name := range names {
		var team models.Team
		if err := s.db.DB.Where("name = ?", name).First(&team).Error; err != nil {
			return nil, &selector.InsufficientPlayersError{Team: name, Required: 1, Available: 0}
		}
		teams[name] = team
	}
	return teams, nil
}

// runStrategies executes the selector once per strategy in parallel. Output
// order follows the request order regardless of completion order.
func (s *PredictorService) runStrategies(req PredictionRequest, pool []cricket.ScoredPlayer, matchCtx cricket.MatchContext) ([]StrategyLineup, error) {
	lineups := make([]*cricket.Lineup, len(req.Strategies))
	errs := make([]error, len(req.Strategies))

	var wg sync.WaitGroup
	for i, strategy := range req.Strategies {
		wg.Add(1)
		go func(i int, strategy cricket.Strategy) {
			defer wg.Done()
			cfg := selector.Config{
				Budget:        req.Budget,
				TeamSize:      req.TeamSize,
				Strategy:      strategy,
				MaxBacktracks: s.defaults.MaxBacktracks,
			}
			sel, err := selector.New(cfg)
			if err != nil {
				errs[i] = err
				return
			}
			lineups[i], errs[i] = sel.Select(pool, matchCtx)
		}(i, strategy)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make([]StrategyLineup, len(req.Strategies))
	for i := range req.Strategies {
		out[i] = StrategyLineup{Strategy: req.Strategies[i], Lineup: *lineups[i]}
	}
	return out, nil
}

func (s *PredictorService) persist(result *PredictionResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal prediction result: %w", err)
	}

	prediction := models.Prediction{
		ExternalID: result.ID,
		Team1:      result.Team1,
		Team2:      result.Team2,
		Venue:      result.Venue,
		PitchType:  string(result.PitchType),
		Budget:     result.Budget,
		TeamSize:   result.TeamSize,
		Result:     datatypes.JSON(blob),
		CreatedAt:  result.CreatedAt,
	}

	for _, sl := range result.Lineups {
		for _, slot := range sl.Lineup.Players {
			prediction.Players = append(prediction.Players, models.PredictionPlayer{
				Strategy:       string(sl.Strategy),
				PlayerID:       slot.Player.ID,
				PlayerName:     slot.Player.Name,
				Team:           slot.Player.Team,
				Role:           string(slot.Player.Role),
				Cost:           slot.Player.Cost,
				ExpectedPoints: slot.ExpectedPoints,
				IsCaptain:      slot.IsCaptain,
				IsViceCaptain:  slot.IsViceCaptain,
			})
		}
	}

	return s.db.DB.Create(&prediction).Error
}

// ListPredictions returns stored runs, newest first.
func (s *PredictorService) ListPredictions(limit, offset int) ([]models.Prediction, int64, error) {
	var total int64
	if err := s.db.DB.Model(&models.Prediction{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count predictions: %w", err)
	}

	var predictions []models.Prediction
	if err := s.db.DB.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&predictions).Error; err != nil {
		return nil, 0, fmt.Errorf("list predictions: %w", err)
	}
	return predictions, total, nil
}

// GetPrediction loads one stored run with its lineup members.
func (s *PredictorService) GetPrediction(externalID string) (*models.Prediction, error) {
	var prediction models.Prediction
	err := s.db.DB.
		Preload("Players").
		Where("external_id = ?", externalID).
		First(&prediction).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// analyzePool computes summary percentiles over the scored pool so callers
// can judge how strong the candidate field was.
func analyzePool(pool []cricket.ScoredPlayer) PoolAnalytics {
	if len(pool) == 0 {
		return PoolAnalytics{}
	}

	points := make([]float64, len(pool))
	for i := range pool {
		points[i] = pool[i].ExpectedPoints
	}
	sort.Float64s(points)

	return PoolAnalytics{
		PoolSize:     len(pool),
		MeanPoints:   stat.Mean(points, nil),
		MedianPoints: stat.Quantile(0.5, stat.Empirical, points, nil),
		P90Points:    stat.Quantile(0.9, stat.Empirical, points, nil),
	}
}

func (s *PredictorService) cacheKey(req PredictionRequest) string {
	strategies := make([]string, len(req.Strategies))
	for i, st := range req.Strategies {
		strategies[i] = string(st)
	}
	return PredictionCacheKey(
		s.scoring.Table.Version,
		req.Team1, req.Team2, req.Venue, string(req.PitchType),
		req.Budget, req.TeamSize, strategies,
	)
}
