package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	ProfilelessAdmin = "admin"
	ProfilelessStaff = "staff"
	ProfilelessDeny  = "deny"
)

const (
	EnvAppEnv   = "POS_APP_ENV"
	EnvPort     = "POS_APP_PORT"
	EnvTimezone = "POS_APP_TIMEZONE"

	EnvDBDSN    = "POS_DB_DSN"
	EnvDBDriver = "POS_DB_DRIVER"
	EnvDBHost   = "POS_DB_HOST"
	EnvDBUser   = "POS_DB_USER"
	EnvDBName   = "POS_DB_NAME"

	EnvRedisURL = "POS_REDIS_URL"

	EnvIdentityURL        = "POS_IDENTITY_URL"
	EnvIdentityAnonKey    = "POS_IDENTITY_ANON_KEY"
	EnvIdentityServiceKey = "POS_IDENTITY_SERVICE_ROLE_KEY"
	EnvIdentityJWTSecret  = "POS_IDENTITY_JWT_SECRET"
	EnvProfilelessRole    = "POS_AUTH_PROFILELESS_ROLE"

	EnvCORSOrigins = "POS_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
