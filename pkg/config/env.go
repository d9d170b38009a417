package config

// EnvPrefix namespaces every Shopora environment variable.
const EnvPrefix = "SHOPORA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "SHOPORA_APP_ENV"
	EnvPort                   = "SHOPORA_APP_PORT"
	EnvRedisURL               = "SHOPORA_REDIS_URL"
	EnvJWTSecret              = "SHOPORA_JWT_SECRET"
	EnvJWTIssuer              = "SHOPORA_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPORA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPORA_REFRESH_TOKEN_TTL_MINUTES"
)

const (
	EnvDBDSN  = "SHOPORA_DB_DSN"
	EnvDBHost = "SHOPORA_DB_HOST"
	EnvDBUser = "SHOPORA_DB_USER"
	EnvDBName = "SHOPORA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
