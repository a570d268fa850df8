package config

import "time"

// Config is the top-level prloop configuration.
type Config struct {
	GitHub GitHubConfig `json:"github"`
	Checks ChecksConfig `json:"checks"`
	Poll   PollConfig   `json:"poll"`
}

// GitHubConfig holds platform credentials.
type GitHubConfig struct {
	Token string `json:"token,omitempty"`
}

// ChecksConfig controls which CI checks participate in classification.
type ChecksConfig struct {
	// Include lists glob patterns a check name must match to be considered.
	// Empty means every check is included.
	Include []string `json:"include"`
	// Exclude lists glob patterns that remove checks from consideration.
	Exclude []string `json:"exclude"`
	// Require blocks the happy state when no checks are reported at all,
	// for repos where CI is expected but may not have started yet.
	Require bool `json:"require"`
}

// PollConfig holds wait-loop timing settings.
type PollConfig struct {
	Interval    string `json:"interval"`
	SettleDelay string `json:"settle_delay"`
}

// ParseInterval returns the poll interval as a time.Duration.
func (p PollConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(p.Interval)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// ParseSettleDelay returns the post-push settle delay as a time.Duration.
func (p PollConfig) ParseSettleDelay() time.Duration {
	d, err := time.ParseDuration(p.SettleDelay)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Checks: ChecksConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Poll: PollConfig{
			Interval:    "5s",
			SettleDelay: "30s",
		},
	}
}
