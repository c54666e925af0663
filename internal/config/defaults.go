package config

import "time"

const (
	defaultDestinationDir   = "~/Documents/entropy"
	defaultLogDir           = "~/.local/share/entropycopy/logs"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultChannelName      = "copyfiletoentropyfile"
	defaultConnectTimeoutMS = 1000
	defaultHistoryKeep      = 1000

	// RequestMax bounds the inbound path payload in text units.
	RequestMax = 80
	// ResponseMax bounds the outbound status payload in text units.
	ResponseMax = RequestMax + 100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DestinationDir: defaultDestinationDir,
			LogDir:         defaultLogDir,
		},
		Channel: Channel{
			Name:             defaultChannelName,
			ConnectTimeoutMS: defaultConnectTimeoutMS,
			RequestMax:       RequestMax,
			ResponseMax:      ResponseMax,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
	}
}

// ConnectTimeout returns the channel's bounded connect interval.
func (c *Config) ConnectTimeout() time.Duration {
	if c.Channel.ConnectTimeoutMS <= 0 {
		return defaultConnectTimeoutMS * time.Millisecond
	}
	return time.Duration(c.Channel.ConnectTimeoutMS) * time.Millisecond
}
