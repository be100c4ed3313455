package simulate

import "time"

// Config holds the parameters of one simulated season.
type Config struct {
	BaseURL        string        // base URL of the service
	Edition        string        // edition id to play
	Days           int           // number of days to play
	FailRate       float64       // chance a report is a fail, 0..1
	CorrectionRate float64       // chance a report is later corrected, 0..1
	Seed           uint64        // seed of the plan; equal seeds give equal plans
	Workers        int           // concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	Verbose        bool
}

// Stats holds the outcome counters of a run.
type Stats struct {
	Planned     int
	Submitted   int
	Accepted    int
	Duplicate   int
	Failed      int
	Corrections int
	Eliminated  int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
