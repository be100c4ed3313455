package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/poprzeczka/internal/simulate"
	"github.com/okian/poprzeczka/pkg/logger"
)

// Default configuration constants.
const (
	defaultDays           = 20
	defaultFailRate       = 0.2
	defaultCorrectionRate = 0.05
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		edition        = flag.String("edition", "", "Edition id to play")
		days           = flag.Int("days", defaultDays, "Days to play")
		failRate       = flag.Float64("fail-rate", defaultFailRate, "Chance a report is a fail")
		correctionRate = flag.Float64("correction-rate", defaultCorrectionRate, "Chance a report is corrected later")
		seed           = flag.Uint64("seed", 1, "Plan seed")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent submitters")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	_, err := simulate.Run(ctx, &simulate.Config{
		BaseURL:        *baseURL,
		Edition:        *edition,
		Days:           *days,
		FailRate:       *failRate,
		CorrectionRate: *correctionRate,
		Seed:           *seed,
		Workers:        *workers,
		Timeout:        *timeout,
		Verbose:        *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
