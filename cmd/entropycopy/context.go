package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"entropycopy/internal/config"
	"entropycopy/internal/ipc"
)

type commandContext struct {
	configFlag *string
	pipeFlag   *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag, pipeFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		pipeFlag:   pipeFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.pipeFlag != nil {
			cfg = cfg.WithChannelName(*c.pipeFlag)
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) endpoint() string {
	cfg := c.configValue()
	if cfg == nil {
		return ""
	}
	return ipc.Endpoint(cfg.Channel.Name, cfg.Paths.LogDir)
}

func wrapDialError(err error, endpoint string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to server: channel %s not found; start it with `entropycopy serve`", endpoint)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to server: channel %s refused the connection; verify the server is running", endpoint)
	default:
		return fmt.Errorf("connect to server: %w", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
