package config

import "time"

// Deck defaults.
const (
	DefaultDeckTitle    = "Agile metrics at the pizzeria"
	DefaultDeckSubtitle = "Lead time, throughput and flow"
	DefaultDeckTheme    = "light"
	DefaultDeckOutput   = "deck.html"
	DefaultDeckSeed     = 42
)

// Axis defaults.
const DefaultAxisStep = time.Minute

// Logging defaults.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = FormatText
	DefaultLogMaxSizeMB  = 20
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 14
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = 10 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)
