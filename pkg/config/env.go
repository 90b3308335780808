package config

const EnvPrefix = "PULSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv            = "PULSE_APP_ENV"
	EnvPort              = "PULSE_APP_PORT"
	EnvDBDSN             = "PULSE_DB_DSN"
	EnvDBHost            = "PULSE_DB_HOST"
	EnvDBUser            = "PULSE_DB_USER"
	EnvDBName            = "PULSE_DB_NAME"
	EnvDBPassword        = "PULSE_DB_PASSWORD"
	EnvRedisURL          = "PULSE_REDIS_URL"
	EnvJWTSecret         = "PULSE_JWT_SECRET"
	EnvJWTIssuer         = "PULSE_JWT_ISSUER"
	EnvAsyncRatings      = "PULSE_ASYNC_RATINGS"
	EnvPubSubDomainTopic = "PULSE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "PULSE_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvRazorpayKeyID     = "PULSE_RAZORPAY_KEY_ID"
	EnvRazorpaySecret    = "PULSE_RAZORPAY_KEY_SECRET"
	EnvWebhookSecret     = "PULSE_RAZORPAY_WEBHOOK_SECRET"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
