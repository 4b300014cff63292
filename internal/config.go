package internal

import "time"

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8000"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	JournalPath       string        `env:"JOURNAL_PATH"`
	PolicyFile        string        `env:"POLICY_FILE"`
	RebalanceInterval time.Duration `env:"REBALANCE_INTERVAL,default=0s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=5s"`
}
