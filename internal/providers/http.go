package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// HTTPProvider pulls the player dataset from a remote stats API. Calls run
// through a circuit breaker so a flaky upstream does not stall the fetch
// schedule, and outbound requests are rate limited to stay inside the
// upstream's quota.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

func NewHTTPProvider(baseURL string, timeout time.Duration, logger *logrus.Logger) *HTTPProvider {
	settings := gobreaker.Settings{
		Name:        "stats-api",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &HTTPProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:  logger,
	}
}

func (p *HTTPProvider) Name() string {
	return "stats-api"
}

// Remote payload shapes. The stats API exposes the same aggregate fields the
// CSV export carries, plus optional per-match history and matchup ratings.
type statsPlayerResponse struct {
	Players []statsPlayer `json:"players"`
}

type statsPlayer struct {
	Name    string  `json:"name"`
	Team    string  `json:"team"`
	Role    string  `json:"role"`
	Price   float64 `json:"price"`
	Batting struct {
		Matches    int     `json:"matches"`
		Runs       int     `json:"runs"`
		Average    float64 `json:"average"`
		StrikeRate float64 `json:"strike_rate"`
	} `json:"batting"`
	Bowling struct {
		Matches int     `json:"matches"`
		Wickets int     `json:"wickets"`
		Average float64 `json:"average"`
		Economy float64 `json:"economy"`
	} `json:"bowling"`
	Recent           []cricket.MatchStats `json:"recent"`
	OppositionRating map[string]float64   `json:"opposition_rating"`
	VenueRating      map[string]float64   `json:"venue_rating"`
}

func (p *HTTPProvider) FetchPlayers(ctx context.Context) ([]PlayerData, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]PlayerData), nil
}

func (p *HTTPProvider) fetch(ctx context.Context) ([]PlayerData, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := p.baseURL + "/players"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch players from stats API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats API returned status %d", resp.StatusCode)
	}

	var payload statsPlayerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}

	players := make([]PlayerData, 0, len(payload.Players))
	for _, sp := range payload.Players {
		if sp.Name == "" || sp.Team == "" {
			continue
		}
		players = append(players, PlayerData{
			Name:  sp.Name,
			Team:  sp.Team,
			Role:  sp.Role,
			Price: sp.Price,
			Batting: cricket.BattingAggregates{
				Matches:    sp.Batting.Matches,
				Runs:       sp.Batting.Runs,
				Average:    sp.Batting.Average,
				StrikeRate: sp.Batting.StrikeRate,
			},
			Bowling: cricket.BowlingAggregates{
				Matches: sp.Bowling.Matches,
				Wickets: sp.Bowling.Wickets,
				Average: sp.Bowling.Average,
				Economy: sp.Bowling.Economy,
			},
			Recent:           sp.Recent,
			OppositionRating: sp.OppositionRating,
			VenueRating:      sp.VenueRating,
		})
	}

	p.logger.WithFields(logrus.Fields{
		"provider": p.Name(),
		"players":  len(players),
	}).Info("Fetched player dataset from stats API")

	return players, nil
}
