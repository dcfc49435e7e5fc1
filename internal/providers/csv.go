package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// Dataset file names follow the published IPL spreadsheet exports.
const (
	auctionFile = "ipl data - auction_2025.csv"
	runsFile    = "ipl data - most_runs.csv"
	wicketsFile = "ipl data - most_wickets.csv"
)

// CSVProvider loads the player dataset from the local IPL CSV dump. The
// auction sheet interleaves team header rows (first column set, second empty)
// with player rows underneath them.
type CSVProvider struct {
	folder string
	logger *logrus.Logger
}

func NewCSVProvider(folder string, logger *logrus.Logger) *CSVProvider {
	return &CSVProvider{folder: folder, logger: logger}
}

func (p *CSVProvider) Name() string {
	return "csv"
}

func (p *CSVProvider) FetchPlayers(_ context.Context) ([]PlayerData, error) {
	players, err := p.loadAuction()
	if err != nil {
		return nil, err
	}

	batting, err := p.loadBattingStats()
	if err != nil {
		return nil, err
	}
	bowling, err := p.loadBowlingStats()
	if err != nil {
		return nil, err
	}

	for i := range players {
		if stats, ok := batting[players[i].Name]; ok {
			players[i].Batting = stats
		}
		if stats, ok := bowling[players[i].Name]; ok {
			players[i].Bowling = stats
		}
	}

	p.logger.WithFields(logrus.Fields{
		"players": len(players),
		"batting": len(batting),
		"bowling": len(bowling),
	}).Info("Loaded player dataset from CSV")

	return players, nil
}

func (p *CSVProvider) loadAuction() ([]PlayerData, error) {
	rows, err := p.readAll(auctionFile)
	if err != nil {
		return nil, err
	}

	var players []PlayerData
	currentTeam := ""
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[1])
		if header := strings.TrimSpace(row[0]); header != "" && name == "" {
			currentTeam = header
			continue
		}
		if currentTeam == "" || name == "" {
			continue
		}

		player := PlayerData{Name: name, Team: currentTeam}
		if len(row) > 2 {
			player.Role = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			player.Price = parseFloat(row[3])
		}
		players = append(players, player)
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("auction file %s contains no player rows", auctionFile)
	}
	return players, nil
}

func (p *CSVProvider) loadBattingStats() (map[string]cricket.BattingAggregates, error) {
	rows, err := p.readAll(runsFile)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]cricket.BattingAggregates, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		stats[name] = cricket.BattingAggregates{
			Matches:    parseInt(row[1]),
			Runs:       parseInt(row[2]),
			Average:    parseFloat(row[3]),
			StrikeRate: parseFloat(row[4]),
		}
	}
	return stats, nil
}

func (p *CSVProvider) loadBowlingStats() (map[string]cricket.BowlingAggregates, error) {
	rows, err := p.readAll(wicketsFile)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]cricket.BowlingAggregates, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		stats[name] = cricket.BowlingAggregates{
			Matches: parseInt(row[1]),
			Wickets: parseInt(row[2]),
			Economy: parseFloat(row[3]),
			Average: parseFloat(row[4]),
		}
	}
	return stats, nil
}

func (p *CSVProvider) readAll(filename string) ([][]string, error) {
	path := filepath.Join(p.folder, filename)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return v
}
