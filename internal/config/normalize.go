package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeChannel()
	c.normalizeLogging()
	return c.normalizeHistory()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DestinationDir) == "" {
		c.Paths.DestinationDir = defaultDestinationDir
	}
	if c.Paths.DestinationDir, err = expandPath(c.Paths.DestinationDir); err != nil {
		return fmt.Errorf("paths.destination_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeChannel clamps the wire bounds; the configured values may shrink
// the payload limits but never grow them past the protocol maxima.
func (c *Config) normalizeChannel() {
	c.Channel.Name = strings.TrimSpace(c.Channel.Name)
	if c.Channel.Name == "" {
		c.Channel.Name = defaultChannelName
	}
	if c.Channel.ConnectTimeoutMS <= 0 {
		c.Channel.ConnectTimeoutMS = defaultConnectTimeoutMS
	}
	if c.Channel.RequestMax <= 0 || c.Channel.RequestMax > RequestMax {
		c.Channel.RequestMax = RequestMax
	}
	if c.Channel.ResponseMax <= 0 || c.Channel.ResponseMax > ResponseMax {
		c.Channel.ResponseMax = ResponseMax
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeHistory() error {
	if c.History.Keep <= 0 {
		c.History.Keep = defaultHistoryKeep
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.LogDir, "history.db")
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}
