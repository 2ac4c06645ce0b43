package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "olist-dashboard"

	// EnvPrefix namespaces every environment variable, e.g. OLIST_SERVER_PORT
	EnvPrefix = "OLIST"

	// Dashboard variants
	VariantClassic     = "classic"
	VariantInteractive = "interactive"
	VariantSilver      = "silver"

	// Rate Limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// Timeouts
	DefaultQueryTimeout = 30 * time.Second

	// File Paths
	DefaultDataDir = "data"
	DefaultLogFile = "logs/dashboard.log"
)
