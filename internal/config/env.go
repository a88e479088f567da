package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnv overlays LEADS_* variables. A .env file in the working directory
// is loaded first when present; real environment variables win over it.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v, ok := lookup("LEADS_HOST"); ok {
		cfg.App.Host = v
	}
	if v, ok := lookup("LEADS_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	}
	if v, ok := lookup("LEADS_DATA_DIR"); ok {
		cfg.App.DataDir = v
	}
	if v, ok := lookup("LEADS_ADMIN_EMAIL"); ok {
		cfg.Admin.Email = v
	}
	if v, ok := lookup("LEADS_ADMIN_PASSWORD"); ok {
		cfg.Admin.Password = v
	}
	if v, ok := lookup("LEADS_SECURE_COOKIE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Session.SecureCookie = b
		}
	}
	if v, ok := lookup("LEADS_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := lookup("LEADS_LOG_FORMAT"); ok {
		cfg.Logging.Format = v
	}
	if v, ok := lookup("LEADS_CORS_ORIGINS"); ok {
		cfg.CORS.AllowedOrigins = strings.Split(v, ",")
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
