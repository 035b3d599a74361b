package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/examworld/awr/pkg/logger"
)

type leaderboardEntry struct {
	Name       string  `json:"name"`
	TotalMarks int     `json:"totalMarks"`
	Percentage float64 `json:"percentage"`
	AWR        int     `json:"awr"`
}

// verifyLeaderboard fetches the top-N projection and checks ordering:
// ranks dense and ascending from 1, totals non-increasing.
func verifyLeaderboard(ctx context.Context, client *http.Client, cfg *Config) error {
	log := logger.Get().Named("loadgen")

	url := fmt.Sprintf("%s/api/leaderboard?limit=%d", cfg.BaseURL, cfg.TopN)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected leaderboard status %d", resp.StatusCode)
	}

	var entries []leaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("decode leaderboard: %w", err)
	}
	if len(entries) > cfg.TopN {
		return fmt.Errorf("leaderboard returned %d entries, limit was %d", len(entries), cfg.TopN)
	}

	for i, e := range entries {
		if e.AWR != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, e.AWR, i+1)
		}
		if i > 0 && entries[i-1].TotalMarks < e.TotalMarks {
			return fmt.Errorf("entry %d breaks descending total order (%d < %d)",
				i, entries[i-1].TotalMarks, e.TotalMarks)
		}
	}

	log.Info(ctx, "leaderboard verified",
		logger.Int("entries", len(entries)),
	)
	return nil
}
