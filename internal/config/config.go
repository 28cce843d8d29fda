package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	Port         = "PORT"
	DBDriver     = "DB_DRIVER"
	DBDSN        = "DB_DSN"
	JWTSecret    = "JWT_SECRET"
	TokenTTL     = "TOKEN_TTL"
	LogLevel     = "LOG_LEVEL"
	LogFormat    = "LOG_FORMAT"
	LogFile      = "LOG_FILE"
	RedisAddr    = "REDIS_ADDR"
	RedisPass    = "REDIS_PASSWORD"
	RedisDB      = "REDIS_DB"
	CORSOrigins  = "CORS_ORIGINS"
	LoginRateMax = "LOGIN_RATE_MAX"
	BodyLimit    = "BODY_LIMIT"
	BcryptCost   = "BCRYPT_COST"
	SeedDemo     = "SEED_DEMO"
)

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string

	// JWTSecret signs identity tokens. Empty means a random per-process secret.
	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins  string
	LoginRateMax int
	BodyLimit    int
	BcryptCost   int
	SeedDemo     bool
}

// Load reads an optional .env file, then environment variables over defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := Config{
		Port:          v.GetString(Port),
		DBDriver:      strings.ToLower(v.GetString(DBDriver)),
		DBDSN:         v.GetString(DBDSN),
		JWTSecret:     v.GetString(JWTSecret),
		TokenTTL:      v.GetDuration(TokenTTL),
		LogLevel:      v.GetString(LogLevel),
		LogFormat:     v.GetString(LogFormat),
		LogFile:       v.GetString(LogFile),
		RedisAddr:     v.GetString(RedisAddr),
		RedisPassword: v.GetString(RedisPass),
		RedisDB:       v.GetInt(RedisDB),
		CORSOrigins:   v.GetString(CORSOrigins),
		LoginRateMax:  v.GetInt(LoginRateMax),
		BodyLimit:     v.GetInt(BodyLimit),
		BcryptCost:    v.GetInt(BcryptCost),
		SeedDemo:      v.GetBool(SeedDemo),
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(Port, "5555")
	v.SetDefault(DBDriver, "sqlite")
	v.SetDefault(DBDSN, "bidmarket.db") // sqlite file in project root
	v.SetDefault(TokenTTL, 24*time.Hour)
	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFormat, "json")
	v.SetDefault(LogFile, "")
	v.SetDefault(RedisDB, 0)
	v.SetDefault(CORSOrigins, "*")
	v.SetDefault(LoginRateMax, 5)
	v.SetDefault(BodyLimit, 1<<20)
	v.SetDefault(BcryptCost, 12)
	v.SetDefault(SeedDemo, true)
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%s is required", Port)
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("%s must be sqlite or postgres, got %q", DBDriver, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%s is required", DBDSN)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%s must be positive", TokenTTL)
	}
	return nil
}
