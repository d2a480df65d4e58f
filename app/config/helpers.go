package config

import (
	"time"
)

// GetPollInterval returns the poll interval as time.Duration
func (s *SourceSettings) GetPollInterval() time.Duration {
	if s.PollInterval <= 0 {
		return 1800 * time.Second // default 30 minutes
	}
	return time.Duration(s.PollInterval) * time.Second
}

// GetTimeout returns the per-request timeout as time.Duration
func (s *SourceSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 15 * time.Second // default 15 seconds
	}
	return time.Duration(s.Timeout) * time.Second
}

// GetPolitenessDelay returns the inter-request delay as time.Duration
func (s *SourceSettings) GetPolitenessDelay() time.Duration {
	if s.PolitenessDelay <= 0 {
		return 0
	}
	return time.Duration(s.PolitenessDelay) * time.Millisecond
}
