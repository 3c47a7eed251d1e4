package domain

// Default waitlist configuration values
const (
	DefaultWaitlistTTLHours = 24
)

// Default rate limiter configuration values (fixed window per phone number)
const (
	DefaultRateLimitMaxRequests    = 5
	DefaultRateLimitWindowMinutes  = 60
	DefaultRateLimitCleanupMinutes = 30
)

// Default expiry sweeper interval
const (
	DefaultSweepIntervalMinutes = 10
)
