// Package drill replays synthetic mock interviews against a running
// service over HTTP. It exercises the session endpoints concurrently and
// reports throughput and the grade distribution.
package drill

import (
	"runtime"
	"time"
)

// Config holds configuration for a drill run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Sessions       int           // Number of interviews to run
	Workers        int           // Number of concurrent interviews
	Questions      int           // Questions per interview, 0 for the server default
	Role           string        // Role to drill, empty to rotate through all roles
	Timeout        time.Duration // HTTP request timeout
	DuplicateEvery int           // Resubmit every Nth answer id, 0 disables
	Seed           uint64        // Seed for answer selection
	Verbose        bool          // Log every interview
}

// DefaultConfig returns the settings used when flags are omitted.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:9080",
		Sessions:       100,
		Workers:        runtime.NumCPU() * 2,
		Timeout:        30 * time.Second,
		DuplicateEvery: 10,
		Seed:           1,
	}
}

// Stats holds drill statistics.
type Stats struct {
	SessionsStarted  int            `json:"sessions_started"`
	SessionsFinished int            `json:"sessions_finished"`
	SessionsFailed   int            `json:"sessions_failed"`
	Answers          int            `json:"answers"`
	Skips            int            `json:"skips"`
	Duplicates       int            `json:"duplicates"`
	Backpressure     int            `json:"backpressure"`
	Grades           map[string]int `json:"grades"`
	StartTime        time.Time      `json:"start_time"`
	EndTime          time.Time      `json:"end_time"`
	Duration         time.Duration  `json:"duration"`
}
