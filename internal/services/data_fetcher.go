package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
	"github.com/crickwise/dream11-optimizer/internal/models"
	"github.com/crickwise/dream11-optimizer/internal/providers"
	"github.com/crickwise/dream11-optimizer/pkg/database"
)

// DataFetcherService keeps the player and team tables in sync with the
// configured stats provider on a fixed schedule.
type DataFetcherService struct {
	db            *database.DB
	cache         *CacheService
	provider      providers.Provider
	classifier    cricket.ClassifierConfig
	logger        *logrus.Logger
	cron          *cron.Cron
	mu            sync.Mutex
	isRunning     bool
	lastFetch     time.Time
	fetchInterval time.Duration
}

func NewDataFetcherService(
	db *database.DB,
	cache *CacheService,
	provider providers.Provider,
	classifier cricket.ClassifierConfig,
	logger *logrus.Logger,
	fetchInterval time.Duration,
) *DataFetcherService {
	return &DataFetcherService{
		db:            db,
		cache:         cache,
		provider:      provider,
		classifier:    classifier,
		logger:        logger,
		cron:          cron.New(),
		fetchInterval: fetchInterval,
	}
}

// Start begins the scheduled refresh. When skipInitial is false an immediate
// fetch runs in the background so the pool is populated on boot.
func (s *DataFetcherService) Start(skipInitial bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("data fetcher is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.fetchInterval.String())
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RefreshPlayers(context.Background()); err != nil {
			s.logger.Errorf("Scheduled player refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule data fetcher: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	if !skipInitial {
		go func() {
			if err := s.RefreshPlayers(context.Background()); err != nil {
				s.logger.Errorf("Initial player refresh failed: %v", err)
			}
		}()
	}

	s.logger.WithField("interval", s.fetchInterval.String()).Info("Data fetcher service started")
	return nil
}

// Stop halts the scheduled refresh.
func (s *DataFetcherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Data fetcher service stopped")
}

// RefreshPlayers pulls the full dataset from the provider and upserts teams
// and players. Stale cache entries for the pool and team list are dropped so
// the next prediction sees the fresh data.
func (s *DataFetcherService) RefreshPlayers(ctx context.Context) error {
	s.logger.WithField("provider", s.provider.Name()).Info("Starting player data refresh")

	data, err := s.provider.FetchPlayers(ctx)
	if err != nil {
		return fmt.Errorf("fetch players from %s: %w", s.provider.Name(), err)
	}
	if len(data) == 0 {
		return fmt.Errorf("provider %s returned no players", s.provider.Name())
	}

	teamIDs := make(map[string]uint)
	now := time.Now()
	upserted := 0

	for _, pd := range data {
		teamID, ok := teamIDs[pd.Team]
		if !ok {
			teamID, err = s.upsertTeam(pd.Team)
			if err != nil {
				s.logger.Errorf("Failed to upsert team %s: %v", pd.Team, err)
				continue
			}
			teamIDs[pd.Team] = teamID
		}

		if err := s.upsertPlayer(pd, teamID, now); err != nil {
			s.logger.Errorf("Failed to upsert player %s: %v", pd.Name, err)
			continue
		}
		upserted++
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, staleCacheKeys(teamIDs)...); err != nil {
			s.logger.Warnf("Failed to invalidate caches after refresh: %v", err)
		}
	}

	s.mu.Lock()
	s.lastFetch = now
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"players": upserted,
		"teams":   len(teamIDs),
	}).Info("Player data refresh complete")
	return nil
}

func (s *DataFetcherService) upsertTeam(name string) (uint, error) {
	var team models.Team
	err := s.db.DB.Where("name = ?", name).First(&team).Error
	if err == nil {
		return team.ID, nil
	}

	team = models.Team{Name: name, ShortName: shortName(name)}
	if err := s.db.DB.Create(&team).Error; err != nil {
		return 0, err
	}
	return team.ID, nil
}

func (s *DataFetcherService) upsertPlayer(pd providers.PlayerData, teamID uint, now time.Time) error {
	externalID := PlayerExternalID(pd.Name, pd.Team)
	role := cricket.ResolveRole(pd.Role, pd.Batting, pd.Bowling, s.classifier)

	player := models.Player{
		ExternalID:        externalID,
		Name:              pd.Name,
		TeamID:            teamID,
		RawRole:           pd.Role,
		Role:              string(role),
		Cost:              pd.Price,
		BattingMatches:    pd.Batting.Matches,
		BattingRuns:       pd.Batting.Runs,
		BattingAverage:    pd.Batting.Average,
		BattingStrikeRate: pd.Batting.StrikeRate,
		BowlingMatches:    pd.Bowling.Matches,
		BowlingWickets:    pd.Bowling.Wickets,
		BowlingAverage:    pd.Bowling.Average,
		BowlingEconomy:    pd.Bowling.Economy,
		LastStatsUpdate:   now,
	}

	var err error
	if player.RecentMatches, err = marshalJSONField(pd.Recent); err != nil {
		return err
	}
	if player.OppositionRating, err = marshalJSONField(pd.OppositionRating); err != nil {
		return err
	}
	if player.VenueRating, err = marshalJSONField(pd.VenueRating); err != nil {
		return err
	}

	var existing models.Player
	if err := s.db.DB.Where("external_id = ?", externalID).First(&existing).Error; err == nil {
		player.ID = existing.ID
		player.CreatedAt = existing.CreatedAt
		return s.db.DB.Save(&player).Error
	}
	return s.db.DB.Create(&player).Error
}

// GetFetchStatus reports the scheduler state for the admin endpoint.
func (s *DataFetcherService) GetFetchStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	status := map[string]interface{}{
		"is_running":     s.isRunning,
		"provider":       s.provider.Name(),
		"fetch_interval": s.fetchInterval.String(),
		"next_runs":      nextRuns,
	}
	if !s.lastFetch.IsZero() {
		status["last_fetch"] = s.lastFetch
	}
	return status
}

// staleCacheKeys lists every cache entry a refresh invalidates: the team list
// plus the pool entry for every pairing of the refreshed teams, so a manual
// refresh never leaves pre-refresh stats serving predictions.
func staleCacheKeys(teamIDs map[string]uint) []string {
	names := make([]string, 0, len(teamIDs))
	for name := range teamIDs {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := []string{TeamsCacheKey()}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			keys = append(keys, PlayerPoolCacheKey(names[i], names[j]))
		}
	}
	return keys
}

// PlayerExternalID builds the stable identifier used across refreshes. Two
// players with the same name on different teams stay distinct.
func PlayerExternalID(name, team string) string {
	return slugify(team) + "-" + slugify(name)
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func shortName(team string) string {
	words := strings.Fields(team)
	if len(words) == 1 {
		upper := strings.ToUpper(words[0])
		if len(upper) > 3 {
			return upper[:3]
		}
		return upper
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteByte(strings.ToUpper(w)[0])
	}
	return b.String()
}

func marshalJSONField(v interface{}) (datatypes.JSON, error) {
	switch val := v.(type) {
	case []cricket.MatchStats:
		if len(val) == 0 {
			return nil, nil
		}
	case map[string]float64:
		if len(val) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
