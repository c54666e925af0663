package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateChannel(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DestinationDir) == "" {
		return errors.New("paths.destination_dir must be set")
	}
	if !filepath.IsAbs(c.Paths.DestinationDir) {
		return fmt.Errorf("paths.destination_dir must be absolute, got %q", c.Paths.DestinationDir)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateChannel() error {
	if c.Channel.Name == "" {
		return errors.New("channel.name must be set")
	}
	if strings.ContainsRune(c.Channel.Name, 0) {
		return errors.New("channel.name must not contain NUL characters")
	}
	if c.Channel.ConnectTimeoutMS <= 0 {
		return errors.New("channel.connect_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
