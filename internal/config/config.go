package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	minSecretLength = 32
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Storage  StorageConfig  `env:",prefix=STORAGE_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Security SecurityConfig `env:",prefix="`
	Session  SessionConfig  `env:",prefix=SESSION_"`
	Google   GoogleConfig   `env:",prefix=GOOGLE_"`
	OTP      OTPConfig      `env:",prefix=OTP_"`
	SMTP     SMTPConfig     `env:",prefix=SMTP_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	BaseURL      string   `env:"BASE_URL,default=http://localhost:8080"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type StorageConfig struct {
	Driver string `env:"DRIVER,default=postgres"`
}

type PostgresConfig struct {
	Host         string   `env:"HOST,default=localhost"`
	Port         string   `env:"PORT,default=5432"`
	User         string   `env:"USER,default=posture_auth"`
	Password     string   `env:"PASSWORD,default=posture_auth_password"`
	DBName       string   `env:"DB,default=posture_auth_db"`
	SSLMode      string   `env:"SSLMODE,default=disable"`
	AutoMigrate  bool     `env:"AUTO_MIGRATE,default=true"`
	QueryTimeout Duration `env:"QUERY_TIMEOUT,default=5s"`
}

// RedisConfig configures the shared client. Timeout bounds dialing and each
// command.
type RedisConfig struct {
	Enabled  bool     `env:"ENABLED,default=true"`
	Host     string   `env:"HOST,default=localhost"`
	Port     string   `env:"PORT,default=6379"`
	Password string   `env:"PASSWORD,default="`
	DB       int      `env:"DB,default=0"`
	PoolSize int      `env:"POOL_SIZE,default=10"`
	Timeout  Duration `env:"TIMEOUT,default=3s"`
}

type JWTConfig struct {
	Secret      string   `env:"SECRET,required"`
	TokenExpiry Duration `env:"TOKEN_EXPIRY,default=7d"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	APIKey            string   `env:"API_KEY,required"`
}

// SessionConfig configures the signed cookie carrying the admin browser session.
type SessionConfig struct {
	Secret string   `env:"SECRET,required"`
	Name   string   `env:"NAME,default=posture_admin_session"`
	MaxAge Duration `env:"MAX_AGE,default=12h"`
	Secure bool     `env:"SECURE,default=false"`
}

type GoogleConfig struct {
	ClientID      string   `env:"CLIENT_ID,default="`
	ClientSecret  string   `env:"CLIENT_SECRET,default="`
	CallbackURL   string   `env:"CALLBACK_URL,default=http://localhost:8080/api/auth/google/callback"`
	Audiences     []string `env:"AUDIENCES"`
	VerifyTimeout Duration `env:"VERIFY_TIMEOUT,default=5s"`
}

type OTPConfig struct {
	TTL Duration `env:"TTL,default=10m"`
}

// SMTPConfig configures outbound mail. An empty Host disables delivery and
// messages are only logged. SendRate caps messages per second handed to the
// relay.
type SMTPConfig struct {
	Host     string  `env:"HOST,default="`
	Port     int     `env:"PORT,default=465"`
	Username string  `env:"USERNAME,default="`
	Password string  `env:"PASSWORD,default="`
	From     string  `env:"FROM,default=no-reply@ergosit.app"`
	SendRate float64 `env:"SEND_RATE,default=5"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization,X-API-Key"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// GoogleAudiences returns the client IDs an ID token may be issued for.
func (g GoogleConfig) GoogleAudiences() []string {
	if len(g.Audiences) > 0 {
		return g.Audiences
	}
	if g.ClientID != "" {
		return []string{g.ClientID}
	}
	return nil
}

// RedirectFlowEnabled reports whether the browser OAuth flow has credentials.
func (g GoogleConfig) RedirectFlowEnabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// MailEnabled reports whether an SMTP relay is configured.
func (s SMTPConfig) MailEnabled() bool {
	return s.Host != ""
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first; variables already set take precedence.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks constraints envconfig tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long", minSecretLength)
	}

	if len(c.Session.Secret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters long", minSecretLength)
	}

	if c.Security.APIKey == "" {
		return fmt.Errorf("API_KEY must not be empty")
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.JWT.TokenExpiry.Duration <= 0 {
		return fmt.Errorf("JWT_TOKEN_EXPIRY must be positive")
	}

	if c.OTP.TTL.Duration <= 0 {
		return fmt.Errorf("OTP_TTL must be positive")
	}

	return nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
