package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Env var names referenced outside struct tags (error messages, tests).
const (
	EnvAppEnv   = "VELORA_APP_ENV"
	EnvPort     = "VELORA_APP_PORT"
	EnvLogLevel = "VELORA_LOG_LEVEL"

	EnvDBDSN  = "VELORA_DB_DSN"
	EnvDBHost = "VELORA_DB_HOST"
	EnvDBUser = "VELORA_DB_USER"
	EnvDBName = "VELORA_DB_NAME"

	EnvRedisURL = "VELORA_REDIS_URL"

	EnvSessionCookieName = "VELORA_SESSION_COOKIE_NAME"

	EnvShippingFlatFee       = "VELORA_SHIPPING_FLAT_FEE"
	EnvFreeShippingThreshold = "VELORA_FREE_SHIPPING_THRESHOLD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
