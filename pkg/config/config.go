package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "TEEHOUSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Store    StoreConfig
	Shipping ShippingConfig
	Orders   OrdersConfig
	Domestic DomesticGatewayConfig
	Stripe   StripeConfig
	Outbox   OutboxConfig
	PubSub   PubSubConfig
	GCP      GCPConfig
	GCS      GCSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TEEHOUSE_APP_ENV" required:"true"`
	Port         string `envconfig:"TEEHOUSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TEEHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TEEHOUSE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"TEEHOUSE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TEEHOUSE_DB_DSN"`
	Driver string `envconfig:"TEEHOUSE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TEEHOUSE_DB_HOST"`
	Port     int    `envconfig:"TEEHOUSE_DB_PORT" default:"5432"`
	User     string `envconfig:"TEEHOUSE_DB_USER"`
	Password string `envconfig:"TEEHOUSE_DB_PASSWORD"`
	Name     string `envconfig:"TEEHOUSE_DB_NAME"`
	SSLMode  string `envconfig:"TEEHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TEEHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TEEHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TEEHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TEEHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TEEHOUSE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"TEEHOUSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TEEHOUSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TEEHOUSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TEEHOUSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TEEHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TEEHOUSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TEEHOUSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TEEHOUSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TEEHOUSE_JWT_ISSUER" default:"teehouse"`
	ExpirationMinutes int    `envconfig:"TEEHOUSE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// StoreConfig pins the physical store location and the serviceable region
// used for delivery-fee calculation.
type StoreConfig struct {
	Lat float64 `envconfig:"TEEHOUSE_STORE_LAT" default:"10.776111"`
	Lng float64 `envconfig:"TEEHOUSE_STORE_LNG" default:"106.695833"`

	ServiceMinLat float64 `envconfig:"TEEHOUSE_SERVICE_MIN_LAT" default:"8.0"`
	ServiceMaxLat float64 `envconfig:"TEEHOUSE_SERVICE_MAX_LAT" default:"23.5"`
	ServiceMinLng float64 `envconfig:"TEEHOUSE_SERVICE_MIN_LNG" default:"102.0"`
	ServiceMaxLng float64 `envconfig:"TEEHOUSE_SERVICE_MAX_LNG" default:"110.0"`
}

// ShippingConfig holds the distance-based fee parameters, in VND.
type ShippingConfig struct {
	BaseFee  int64 `envconfig:"TEEHOUSE_SHIPPING_BASE_FEE" default:"20000"`
	PerKmFee int64 `envconfig:"TEEHOUSE_SHIPPING_PER_KM_FEE" default:"5000"`
}

// OrdersConfig tunes the order lifecycle timers.
type OrdersConfig struct {
	AwaitingPaymentTTL time.Duration `envconfig:"TEEHOUSE_ORDERS_AWAITING_PAYMENT_TTL" default:"30m"`
	SweepInterval      time.Duration `envconfig:"TEEHOUSE_ORDERS_SWEEP_INTERVAL" default:"5m"`
	GatewayTimeout     time.Duration `envconfig:"TEEHOUSE_ORDERS_GATEWAY_TIMEOUT" default:"15s"`
}

// DomesticGatewayConfig configures the signed-querystring payment terminal.
type DomesticGatewayConfig struct {
	TerminalCode string `envconfig:"TEEHOUSE_DOMESTIC_TERMINAL_CODE"`
	HashSecret   string `envconfig:"TEEHOUSE_DOMESTIC_HASH_SECRET"`
	PayURL       string `envconfig:"TEEHOUSE_DOMESTIC_PAY_URL" default:"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	ReturnURL    string `envconfig:"TEEHOUSE_DOMESTIC_RETURN_URL"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"TEEHOUSE_STRIPE_API_KEY"`
	SuccessURL string `envconfig:"TEEHOUSE_STRIPE_SUCCESS_URL"`
	CancelURL  string `envconfig:"TEEHOUSE_STRIPE_CANCEL_URL"`
	Env        string `envconfig:"TEEHOUSE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TEEHOUSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TEEHOUSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TEEHOUSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PubSubConfig struct {
	OrderEventsTopic string `envconfig:"TEEHOUSE_PUBSUB_ORDER_EVENTS_TOPIC" default:"th-order-events"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"TEEHOUSE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"TEEHOUSE_GCP_CREDENTIALS_JSON"`
}

type GCSConfig struct {
	BucketName string `envconfig:"TEEHOUSE_GCS_BUCKET_NAME"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		"TEEHOUSE_DB_HOST": db.Host,
		"TEEHOUSE_DB_USER": db.User,
		"TEEHOUSE_DB_NAME": db.Name,
	}
	for _, key := range []string{"TEEHOUSE_DB_HOST", "TEEHOUSE_DB_USER", "TEEHOUSE_DB_NAME"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either TEEHOUSE_DB_DSN or %s are required", strings.Join(missing, ", "))
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
