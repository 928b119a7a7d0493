package config

// EnvPrefix scopes every environment variable read by envconfig.
const EnvPrefix = "SKYFARE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SKYFARE_DB_DSN"
	EnvDBHost = "SKYFARE_DB_HOST"
	EnvDBUser = "SKYFARE_DB_USER"
	EnvDBName = "SKYFARE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
