package config

import "time"

const (
	DefaultTimeZone = "Africa/Johannesburg"

	// BatchRetention is how long an uncommitted import batch stays in the
	// pending store before the sweeper evicts it.
	BatchRetention = time.Hour

	// RetentionSweepSchedule drives the pending-batch eviction job.
	RetentionSweepSchedule = "*/10 * * * *"
)

// Service ports. The gateway proxies public paths onto these.
const (
	GatewayPort   = ":8081"
	ImportsPort   = ":6243"
	LogisticsPort = ":6244"
)
