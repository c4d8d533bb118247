// Package config provides centralized configuration for AdPulse. All
// default values live here so there is a single source of truth.
package config

// Configuration file and environment settings.
const (
	ConfigName = ".adpulse"
	EnvPrefix  = "ADPULSE"
)

// Server defaults.
const (
	DefaultPort    = 8484
	DefaultDataDir = ".adpulse"
)

// Agent defaults.
const (
	DefaultAgentCategory = "universal"
	DefaultAgentMaxTurns = 10
)

// Tracker polling defaults.
const (
	DefaultTrackerPollMinutes = 30
)
