package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// SKILLHUB_ names so the prefix only covers future additions.
const EnvPrefix = "SKILLHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Env variable names referenced outside struct tags (tests, docs).
const (
	EnvAppEnv      = "SKILLHUB_APP_ENV"
	EnvAPIBaseURL  = "SKILLHUB_API_BASE_URL"
	EnvAPITimeout  = "SKILLHUB_API_TIMEOUT"
	EnvRedisURL    = "SKILLHUB_REDIS_URL"
	EnvRazorpayKey = "SKILLHUB_RAZORPAY_KEY"
	EnvSessionKind = "SKILLHUB_SESSION_BACKEND"
)
