package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDynamo   = "dynamo"
	StorePostgres = "postgres"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	Debug   bool
	LogPath string

	StoreDriver    string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	DatabaseURL    string
	DBMaxConns     int32

	AccessTokenSecret     string
	RefreshTokenSecret    string
	ActivationTokenSecret string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	ActivationTokenTTL    time.Duration

	BcryptCost      int
	HashConcurrency int64

	SMTPHost      string
	SMTPPort      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	SNSEnabled    bool
	SNSRegion     string
	NotifyTimeout time.Duration

	AllowedOrigins       []string // CORS allowed origins
	UsersListRequireAuth bool
	UsersListRoles       []string // empty means any authenticated user
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users       string
	UserUniques string
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		AppEnv:  v.GetString("APP_ENV"),
		Debug:   v.GetBool("DEBUG"),
		LogPath: v.GetString("LOG_PATH"),

		StoreDriver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		AWSRegion:      v.GetString("AWS_REGION"),
		AWSEndpointURL: v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID: v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTables: DynamoTables{
			Users:       v.GetString("DYNAMO_TABLE_USERS"),
			UserUniques: v.GetString("DYNAMO_TABLE_USER_UNIQUES"),
		},
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBMaxConns:  v.GetInt32("DB_MAX_CONNS"),

		AccessTokenSecret:     v.GetString("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:    v.GetString("REFRESH_TOKEN_SECRET"),
		ActivationTokenSecret: v.GetString("ACTIVATION_TOKEN_SECRET"),
		AccessTokenTTL:        v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:       v.GetDuration("REFRESH_TOKEN_TTL"),
		ActivationTokenTTL:    v.GetDuration("ACTIVATION_TOKEN_TTL"),

		BcryptCost:      v.GetInt("BCRYPT_COST"),
		HashConcurrency: v.GetInt64("HASH_CONCURRENCY"),

		SMTPHost:      v.GetString("SMTP_HOST"),
		SMTPPort:      v.GetString("SMTP_PORT"),
		SMTPFrom:      v.GetString("SMTP_FROM"),
		SMTPUsername:  v.GetString("SMTP_USER"),
		SMTPPassword:  v.GetString("SMTP_PASSWORD"),
		SNSEnabled:    v.GetBool("SNS_ENABLED"),
		SNSRegion:     v.GetString("SNS_REGION"),
		NotifyTimeout: v.GetDuration("NOTIFY_TIMEOUT"),

		AllowedOrigins:       splitList(v.GetString("ALLOWED_ORIGINS")),
		UsersListRequireAuth: v.GetBool("USERS_LIST_REQUIRE_AUTH"),
		UsersListRoles:       splitList(v.GetString("USERS_LIST_ROLES")),
	}
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUsername
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "4001")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("STORE_DRIVER", StoreDynamo)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DYNAMO_TABLE_USERS", "users")
	v.SetDefault("DYNAMO_TABLE_USER_UNIQUES", "user_uniques")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("ACTIVATION_TOKEN_TTL", 10*time.Minute)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("HASH_CONCURRENCY", 4)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", "1025")
	v.SetDefault("SNS_ENABLED", false)
	v.SetDefault("SNS_REGION", "us-east-1")
	v.SetDefault("NOTIFY_TIMEOUT", 30*time.Second)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("USERS_LIST_REQUIRE_AUTH", false)
}

func (c *Config) validate() error {
	var errs []error
	secrets := map[string]string{
		"ACCESS_TOKEN_SECRET":     c.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET":    c.RefreshTokenSecret,
		"ACTIVATION_TOKEN_SECRET": c.ActivationTokenSecret,
	}
	for key, val := range secrets {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.AccessTokenSecret != "" && (c.AccessTokenSecret == c.RefreshTokenSecret || c.AccessTokenSecret == c.ActivationTokenSecret) ||
		c.RefreshTokenSecret != "" && c.RefreshTokenSecret == c.ActivationTokenSecret {
		errs = append(errs, errors.New("token secrets must be distinct"))
	}
	switch c.StoreDriver {
	case StoreDynamo:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.HashConcurrency < 1 {
		errs = append(errs, errors.New("HASH_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}
