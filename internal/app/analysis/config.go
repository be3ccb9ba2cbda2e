package analysis

import "time"

type Config struct {
	StockfishPath string
	Depth         int
	QueueSize     int
	Timeout       time.Duration
	Threads       int
	Hash          int
}

func DefaultConfig() Config {
	return Config{
		Depth:     18,
		QueueSize: 64,
		Timeout:   30 * time.Second,
		Threads:   2,
		Hash:      128,
	}
}
