package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Razorpay      RazorpayConfig
	Webhook       WebhookConfig
	Cron          CronConfig
	Migrations    MigrationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.AsyncRatings && strings.TrimSpace(cfg.PubSub.DomainTopic) == "" {
		return nil, fmt.Errorf("%s is required when %s is enabled", EnvPubSubDomainTopic, EnvAsyncRatings)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"PULSE_APP_PORT" required:"true"`
	PublicURL    string `envconfig:"PULSE_PUBLIC_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"PULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PULSE_LOG_WARN_STACK" default:"false"`
	// MetricsAddr exposes /metrics from the background workers when set.
	MetricsAddr string `envconfig:"PULSE_WORKER_METRICS_ADDR"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PULSE_DB_DSN"`

	Host     string `envconfig:"PULSE_DB_HOST"`
	Port     int    `envconfig:"PULSE_DB_PORT" default:"5432"`
	User     string `envconfig:"PULSE_DB_USER"`
	Password string `envconfig:"PULSE_DB_PASSWORD"`
	Name     string `envconfig:"PULSE_DB_NAME"`
	SSLMode  string `envconfig:"PULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PULSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PULSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PULSE_REDIS_URL"`
	Address      string        `envconfig:"PULSE_REDIS_ADDR"`
	Password     string        `envconfig:"PULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PULSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PULSE_JWT_ISSUER" default:"pulse"`
	ExpirationMinutes int    `envconfig:"PULSE_JWT_EXPIRATION_MINUTES" default:"120"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PULSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PULSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PULSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PULSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PULSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PULSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PULSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PULSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate  bool `envconfig:"PULSE_AUTO_MIGRATE" default:"false"`
	AsyncRatings bool `envconfig:"PULSE_ASYNC_RATINGS" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PULSE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PULSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PULSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PULSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"PULSE_PUBSUB_DOMAIN_TOPIC"`
	DomainSubscription string `envconfig:"PULSE_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PULSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PULSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PULSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RazorpayConfig struct {
	KeyID         string `envconfig:"PULSE_RAZORPAY_KEY_ID"`
	KeySecret     string `envconfig:"PULSE_RAZORPAY_KEY_SECRET"`
	WebhookSecret string `envconfig:"PULSE_RAZORPAY_WEBHOOK_SECRET" required:"true"`
	Currency      string `envconfig:"PULSE_RAZORPAY_CURRENCY" default:"INR"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"PULSE_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"PULSE_CRON_INTERVAL" default:"1h"`
	OutboxRetention time.Duration `envconfig:"PULSE_CRON_OUTBOX_RETENTION" default:"720h"`
	CheckoutTTL     time.Duration `envconfig:"PULSE_CRON_CHECKOUT_TTL" default:"48h"`
}

type MigrationsConfig struct {
	Dir string `envconfig:"PULSE_MIGRATIONS_DIR" default:"pkg/migrate/migrations"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
