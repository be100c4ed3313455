package simulate

import "os"

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Poprzeczka season simulator
===========================

Plays a season of one edition against a running service and checks the
live ranking it reports against the ranking the plan should produce.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string          Base URL of the service (default "http://localhost:9080")
  -edition string      Edition id to play (required)
  -days int            Days to play (default 20)
  -fail-rate float     Chance a report is a fail (default 0.2)
  -correction-rate f   Chance a report is corrected later (default 0.05)
  -seed uint           Plan seed (default 1)
  -workers int         Concurrent submitters (default CPU cores * 2)
  -timeout duration    HTTP request timeout (default 30s)
  -verbose             Log every day and failure
  -help                Show this help message

Example:
  go run ./cmd/simulate -edition 2026-03 -days 30 -fail-rate 0.3
`)
}
