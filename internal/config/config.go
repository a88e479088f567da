// engine/internal/config/config.go
package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Host    string `yaml:"host" json:"host"`
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Session struct {
		TTLMinutes   int    `yaml:"ttl_minutes" json:"ttl_minutes"`
		CookieName   string `yaml:"cookie_name" json:"cookie_name"`
		SecureCookie bool   `yaml:"secure_cookie" json:"secure_cookie"`
	} `yaml:"session" json:"session"`

	// Admin is the bootstrap account created on first run.
	Admin struct {
		Email          string `yaml:"email" json:"email"`
		Password       string `yaml:"password" json:"-"`
		KeyringAccount string `yaml:"keyring_account" json:"keyring_account"`
	} `yaml:"admin" json:"admin"`

	Limits struct {
		LoginRPS     float64 `yaml:"login_rps" json:"login_rps"`
		LoginBurst   int     `yaml:"login_burst" json:"login_burst"`
		CollectRPS   float64 `yaml:"collect_rps" json:"collect_rps"`
		CollectBurst int     `yaml:"collect_burst" json:"collect_burst"`
	} `yaml:"limits" json:"limits"`

	Logging struct {
		Level  string `yaml:"level" json:"level"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"logging" json:"logging"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	} `yaml:"cors" json:"cors"`
}

const (
	DefaultAdminEmail = "admin@abs.com"
	// DefaultAdminPassword is the well-known initial credential. Rotate it before production use.
	DefaultAdminPassword = "admin@abs.com"
)

func Default() Config {
	var cfg Config
	cfg.App.Host = "0.0.0.0"
	cfg.App.Port = 3000
	cfg.App.DataDir = "."
	cfg.Session.TTLMinutes = 24 * 60
	cfg.Session.CookieName = "leads_session"
	cfg.Admin.Email = DefaultAdminEmail
	cfg.Admin.Password = DefaultAdminPassword
	cfg.Limits.LoginRPS = 1
	cfg.Limits.LoginBurst = 10
	cfg.Limits.CollectRPS = 20
	cfg.Limits.CollectBurst = 40
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return cfg
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// Load reads path on top of Default() and then applies .env and LEADS_* overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}
