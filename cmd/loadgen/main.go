package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/examworld/awr/internal/loadgen"
	"github.com/examworld/awr/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumSubmissions = 1000
	defaultTopN           = 10
	defaultWorkerFactor   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		num     = flag.Int("submissions", defaultNumSubmissions, "Number of submissions to generate")
		topN    = flag.Int("top", defaultTopN, "Number of leaderboard entries to verify")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkerFactor, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:        *baseURL,
		NumSubmissions: *num,
		Workers:        *workers,
		Timeout:        *timeout,
		TopN:           *topN,
	}

	if err := loadgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		os.Exit(1)
	}
}
