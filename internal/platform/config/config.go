package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration for the exchange engine.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Mongo      MongoConfig      `json:"mongo"`
	Builder    PostgreSQLConfig `json:"builder"`
	JWT        JWTConfig        `json:"jwt"`
	Query      QueryConfig      `json:"query"`
	Email      EmailConfig      `json:"email"`
	SMS        SMSConfig        `json:"sms"`
	OTP        OTPConfig        `json:"otp"`
	Cache      CacheConfig      `json:"cache"`
	External   ExternalConfig   `json:"external"`
	RateLimits RateLimitsConfig `json:"rateLimits"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	WebDomain string `json:"webDomain"`
	Debug     bool   `json:"debug"`
}

// MongoConfig points at the item databases. Every project owns one database
// on the same deployment, named DatabasePrefix + projectID.
type MongoConfig struct {
	Host                   string `json:"host"`
	Port                   int    `json:"port"`
	Username               string `json:"username"`
	Password               string `json:"password"`
	AuthDatabase           string `json:"authDatabase"`
	ReplicaSet             string `json:"replicaSet"`
	DatabasePrefix         string `json:"databasePrefix"`
	MaxPoolSize            int    `json:"maxPoolSize"`
	MinPoolSize            int    `json:"minPoolSize"`
	ConnectTimeout         int    `json:"connectTimeout"`
	SocketTimeout          int    `json:"socketTimeout"`
	ServerSelectionTimeout int    `json:"serverSelectionTimeout"`
}

// PostgreSQLConfig holds the builder database settings. Collection schemas
// and finder definitions live there.
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	Schema          string        `json:"schema"`
	SSLMode         string        `json:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
	KeyID      string `json:"keyId"`
}

// QueryConfig bounds the finder pipeline.
type QueryConfig struct {
	MaxNestingDepth int           `json:"maxNestingDepth"`
	NestedTimeout   time.Duration `json:"nestedTimeout"`
	DefaultMax      int64         `json:"defaultMax"`
}

// EmailConfig holds email-related configuration
type EmailConfig struct {
	SMTPEmail string `json:"smtpEmail"`
	SMTPHost  string `json:"smtpHost"`
	SMTPPort  int    `json:"smtpPort"`
	SMTPUser  string `json:"smtpUser"`
	SMTPPass  string `json:"smtpPass"`
}

// SMSConfig holds the Plivo credentials used for SMS delivery.
type SMSConfig struct {
	AuthID       string `json:"authId"`
	AuthToken    string `json:"authToken"`
	SourceNumber string `json:"sourceNumber"`
}

// OTPConfig replaces the per-project authenticator plugin settings.
type OTPConfig struct {
	Length            int           `json:"length"`
	Expiry            time.Duration `json:"expiry"`
	DefaultRole       string        `json:"defaultRole"`
	TokenExpiry       time.Duration `json:"tokenExpiry"`
	EmailSubject      string        `json:"emailSubject"`
	MessageTemplate   string        `json:"messageTemplate"`
	UserCollection    string        `json:"userCollection"`
	RoleCollection    string        `json:"roleCollection"`
	TenantCollection  string        `json:"tenantCollection"`
	SettingCollection string        `json:"settingCollection"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled bool          `json:"enabled"`
	Backend string        `json:"backend"`
	Prefix  string        `json:"prefix"`
	TTL     time.Duration `json:"ttl"`
	Redis   RedisConfig   `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxConnAge   time.Duration `json:"maxConnAge"`
}

// ExternalConfig bounds outbound calls made on behalf of the builder.
type ExternalConfig struct {
	Timeout time.Duration `json:"timeout"`
}

// RateLimitConfig holds rate limiting configuration for a specific endpoint
type RateLimitConfig struct {
	Enabled  bool          `json:"enabled"`
	Max      int           `json:"max"`
	Duration time.Duration `json:"duration"`
}

// RateLimitsConfig holds rate limiting configuration for all endpoints
type RateLimitsConfig struct {
	OTPGenerate RateLimitConfig `json:"otpGenerate"`
	OTPVerify   RateLimitConfig `json:"otpVerify"`
}

// lookupFunc returns the raw value for key and whether it was set.
type lookupFunc func(key string) (string, bool)

// LoadFromEnv loads configuration from the environment.
// Precedence: explicit environment variables, then the .env file, then defaults.
func LoadFromEnv() (*Config, error) {
	envPaths := []string{".env", "../.env", "../../.env"}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	cfg := build(func(key string) (string, bool) {
		v := os.Getenv(key)
		return v, v != ""
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFromMap loads configuration from an in-memory map.
// Tests use it to exercise configuration without touching the process environment.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	cfg := build(func(key string) (string, bool) {
		v, ok := envMap[key]
		return v, ok
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func build(lookup lookupFunc) *Config {
	get := func(key, defaultValue string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return defaultValue
	}
	getInt := func(key string, defaultValue int) int {
		if v, ok := lookup(key); ok {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return defaultValue
	}
	getInt64 := func(key string, defaultValue int64) int64 {
		if v, ok := lookup(key); ok {
			if i, err := strconv.ParseInt(v, 10, 64); err == nil {
				return i
			}
		}
		return defaultValue
	}
	getBool := func(key string, defaultValue bool) bool {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return defaultValue
	}
	getDuration := func(key string, defaultValue time.Duration) time.Duration {
		if v, ok := lookup(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
		return defaultValue
	}

	return &Config{
		Server: ServerConfig{
			Host:      get("HOST", "localhost"),
			Port:      getInt("SERVER_PORT", 8080),
			BaseRoute: get("BASE_ROUTE", "/api"),
			WebDomain: get("WEB_DOMAIN", "http://localhost:3000"),
			Debug:     getBool("DEBUG", false),
		},
		Mongo: MongoConfig{
			Host:                   get("MONGO_HOST", "localhost"),
			Port:                   getInt("MONGO_PORT", 27017),
			Username:               get("MONGO_USERNAME", ""),
			Password:               get("MONGO_PASSWORD", ""),
			AuthDatabase:           get("MONGO_AUTH_DATABASE", ""),
			ReplicaSet:             get("DB_REPLICA", ""),
			DatabasePrefix:         get("MONGO_DATABASE_PREFIX", "project_"),
			MaxPoolSize:            getInt("MONGO_MAX_POOL_SIZE", 1000),
			MinPoolSize:            getInt("MONGO_MIN_POOL_SIZE", 100),
			ConnectTimeout:         getInt("MONGO_CONNECT_TIMEOUT", 10),
			SocketTimeout:          getInt("MONGO_SOCKET_TIMEOUT", 45),
			ServerSelectionTimeout: getInt("MONGO_SERVER_SELECTION_TIMEOUT", 5),
		},
		Builder: PostgreSQLConfig{
			Host:            get("BUILDER_DB_HOST", "localhost"),
			Port:            getInt("BUILDER_DB_PORT", 5432),
			Username:        get("BUILDER_DB_USERNAME", ""),
			Password:        get("BUILDER_DB_PASSWORD", ""),
			Database:        get("BUILDER_DB_DATABASE", "exchange_builder"),
			Schema:          get("BUILDER_DB_SCHEMA", ""),
			SSLMode:         get("BUILDER_DB_SSL_MODE", "disable"),
			MaxOpenConns:    getInt("BUILDER_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("BUILDER_DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: time.Duration(getInt("BUILDER_DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			PublicKey:  get("JWT_PUBLIC_KEY", ""),
			PrivateKey: get("JWT_PRIVATE_KEY", ""),
			KeyID:      get("JWT_KEY_ID", "exchange-auth-key-1"),
		},
		Query: QueryConfig{
			MaxNestingDepth: getInt("QUERY_MAX_NESTING_DEPTH", 5),
			NestedTimeout:   getDuration("QUERY_NESTED_TIMEOUT", 10*time.Second),
			DefaultMax:      getInt64("QUERY_DEFAULT_MAX", 100),
		},
		Email: EmailConfig{
			SMTPEmail: get("SMTP_EMAIL", ""),
			SMTPHost:  get("SMTP_HOST", ""),
			SMTPPort:  getInt("SMTP_PORT", 587),
			SMTPUser:  get("SMTP_USER", ""),
			SMTPPass:  get("SMTP_PASS", ""),
		},
		SMS: SMSConfig{
			AuthID:       get("PHONE_AUTH_ID", ""),
			AuthToken:    get("PHONE_AUTH_TOKEN", ""),
			SourceNumber: get("PHONE_SOURCE_NUMBER", ""),
		},
		OTP: OTPConfig{
			Length:            getInt("OTP_LENGTH", 6),
			Expiry:            getDuration("OTP_EXPIRY", 5*time.Minute),
			DefaultRole:       get("OTP_DEFAULT_ROLE", ""),
			TokenExpiry:       getDuration("OTP_TOKEN_EXPIRY", 48*time.Hour),
			EmailSubject:      get("OTP_EMAIL_SUBJECT", "Your verification code"),
			MessageTemplate:   get("OTP_MESSAGE_TEMPLATE", "Your verification code is {{otp}}"),
			UserCollection:    get("OTP_USER_COLLECTION", "user"),
			RoleCollection:    get("OTP_ROLE_COLLECTION", "roles"),
			TenantCollection:  get("OTP_TENANT_COLLECTION", "tenant"),
			SettingCollection: get("OTP_SETTING_COLLECTION", "user_settings"),
		},
		Cache: CacheConfig{
			Enabled: getBool("CACHE_ENABLED", true),
			Backend: get("CACHE_BACKEND", "memory"),
			Prefix:  get("CACHE_PREFIX", "exchange:"),
			TTL:     getDuration("CACHE_TTL", 5*time.Minute),
			Redis: RedisConfig{
				Address:      get("REDIS_ADDRESS", "localhost:6379"),
				Password:     get("REDIS_PASSWORD", ""),
				Database:     getInt("REDIS_DATABASE", 0),
				PoolSize:     getInt("REDIS_POOL_SIZE", 10),
				MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 5),
				MaxConnAge:   time.Duration(getInt("REDIS_MAX_CONN_AGE", 300)) * time.Second,
			},
		},
		External: ExternalConfig{
			Timeout: getDuration("EXTERNAL_API_TIMEOUT", 30*time.Second),
		},
		RateLimits: RateLimitsConfig{
			OTPGenerate: RateLimitConfig{
				Enabled:  getBool("RATE_LIMIT_OTP_GENERATE_ENABLED", true),
				Max:      getInt("RATE_LIMIT_OTP_GENERATE_MAX", 5),
				Duration: getDuration("RATE_LIMIT_OTP_GENERATE_DURATION", 15*time.Minute),
			},
			OTPVerify: RateLimitConfig{
				Enabled:  getBool("RATE_LIMIT_OTP_VERIFY_ENABLED", true),
				Max:      getInt("RATE_LIMIT_OTP_VERIFY_MAX", 10),
				Duration: getDuration("RATE_LIMIT_OTP_VERIFY_DURATION", 15*time.Minute),
			},
		},
	}
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}

	validBackends := []string{"memory", "redis"}
	if !contains(validBackends, c.Cache.Backend) {
		errors = append(errors, fmt.Sprintf("CACHE_BACKEND must be one of: %s", strings.Join(validBackends, ", ")))
	}

	if c.Query.MaxNestingDepth < 1 {
		errors = append(errors, "QUERY_MAX_NESTING_DEPTH must be at least 1")
	}
	if c.Query.DefaultMax < 1 {
		errors = append(errors, "QUERY_DEFAULT_MAX must be at least 1")
	}
	if c.OTP.Length < 4 || c.OTP.Length > 12 {
		errors = append(errors, "OTP_LENGTH must be between 4 and 12")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// MongoDatabaseName returns the item database for a project.
func (c *Config) MongoDatabaseName(projectID string) string {
	return c.Mongo.DatabasePrefix + projectID
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
