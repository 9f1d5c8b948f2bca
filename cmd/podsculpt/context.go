package main

import (
	"errors"
	"strings"

	"podsculpt/internal/config"
)

// commandContext carries lazily-loaded configuration and the API client
// shared across subcommands.
type commandContext struct {
	addrFlag   *string
	configFlag *string

	cfg *config.Config
}

func newCommandContext(addrFlag, configFlag *string) *commandContext {
	return &commandContext{addrFlag: addrFlag, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		return *c.configFlag
	}
	return ""
}

// client resolves the daemon address from the --addr flag or configuration.
func (c *commandContext) client() (*apiClient, error) {
	if c.addrFlag != nil && strings.TrimSpace(*c.addrFlag) != "" {
		return newAPIClient(*c.addrFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	addr := strings.TrimSpace(cfg.Paths.APIBind)
	if addr == "" {
		return nil, errors.New("daemon API address not configured; set paths.api_bind or pass --addr")
	}
	return newAPIClient(addr), nil
}
