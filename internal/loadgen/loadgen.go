// Package loadgen submits synthetic exam submissions against a running
// service and verifies the resulting leaderboard ordering.
package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/examworld/awr/pkg/logger"
	"github.com/google/uuid"
)

// Config controls a load-generation run.
type Config struct {
	BaseURL        string
	NumSubmissions int
	Workers        int
	Timeout        time.Duration
	TopN           int
}

// Stats collects counters across a run.
type Stats struct {
	StartTime time.Time
	Created   atomic.Int64
	Returning atomic.Int64
	Conflicts atomic.Int64
	Errors    atomic.Int64
}

// firstNames feed the synthetic participant generator.
var firstNames = []string{
	"Asha", "Bob", "Chitra", "Dev", "Esha", "Farhan", "Gita", "Hari",
	"Indira", "Jai", "Kiran", "Lata", "Mohan", "Nisha", "Om", "Priya",
	"Rahul", "Sita", "Tara", "Uma", "Vishal", "Yash", "Zara",
}

type submission struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type submitResponse struct {
	ID       string `json:"id"`
	AWR      int    `json:"awr"`
	Conflict bool   `json:"conflict"`
}

// generateSubmissions produces unique synthetic participants.
func generateSubmissions(n int) []submission {
	subs := make([]submission, n)
	for i := range subs {
		name := firstNames[i%len(firstNames)]
		subs[i] = submission{
			Name:  fmt.Sprintf("%s %d", name, i),
			Email: fmt.Sprintf("%s@load.example.com", uuid.NewString()),
		}
	}
	return subs
}

// Run executes the complete load test.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadgen")

	log.Info(ctx, "starting submission load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("submissions", cfg.NumSubmissions),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
	)

	client := &http.Client{Timeout: cfg.Timeout}

	if err := checkHealth(ctx, client, cfg.BaseURL); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	subs := generateSubmissions(cfg.NumSubmissions)

	jobs := make(chan submission)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				submitOne(ctx, client, cfg.BaseURL, sub, stats, log)
			}
		}()
	}

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return fmt.Errorf("load test canceled: %w", ctx.Err())
		case jobs <- sub:
		}
	}
	close(jobs)
	wg.Wait()

	log.Info(ctx, "submissions finished",
		logger.Int("created", int(stats.Created.Load())),
		logger.Int("returning", int(stats.Returning.Load())),
		logger.Int("conflicts", int(stats.Conflicts.Load())),
		logger.Int("errors", int(stats.Errors.Load())),
		logger.String("elapsed", time.Since(stats.StartTime).String()),
	)

	if err := verifyLeaderboard(ctx, client, cfg); err != nil {
		return fmt.Errorf("leaderboard verification failed: %w", err)
	}

	log.Info(ctx, "load test passed")
	return nil
}

func submitOne(ctx context.Context, client *http.Client, baseURL string, sub submission, stats *Stats, log logger.Logger) {
	body, err := json.Marshal(sub)
	if err != nil {
		stats.Errors.Add(1)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/results", bytes.NewReader(body))
	if err != nil {
		stats.Errors.Add(1)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		stats.Errors.Add(1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		stats.Errors.Add(1)
		log.Warn(ctx, "submission rejected",
			logger.String("email", sub.Email),
			logger.Int("status", resp.StatusCode),
		)
		return
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		stats.Errors.Add(1)
		return
	}

	switch {
	case out.Conflict:
		stats.Conflicts.Add(1)
	case out.AWR > 0:
		stats.Created.Add(1)
	default:
		stats.Returning.Add(1)
	}
}

func checkHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", resp.StatusCode)
	}
	return nil
}
