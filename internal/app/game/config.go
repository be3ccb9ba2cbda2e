package game

import "time"

type Config struct {
	// FinishedRetention is how long a finished game stays in the live registry.
	FinishedRetention time.Duration
	// AbandonAfter is how long a seated player may stay disconnected from an active game. Zero disables.
	AbandonAfter time.Duration
	// WaitingExpiry is how long a game may wait for an opponent before it is aborted. Zero disables.
	WaitingExpiry time.Duration
	AnalysisDepth int
	StoreTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		FinishedRetention: 10 * time.Minute,
		AbandonAfter:      60 * time.Second,
		WaitingExpiry:     30 * time.Minute,
		AnalysisDepth:     18,
		StoreTimeout:      5 * time.Second,
	}
}
