package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MANAGER_ADDR points at a running manager, e.g. "http://localhost:8000".
	// When unset, the e2e scenarios skip themselves.
	ManagerAddr string `envconfig:"MANAGER_ADDR"`
	// E2E_DEBUG_JSON allows dumping full request/response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
