package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Error() string {
	return "config validation failed:\n- " + strings.Join(v.Errors, "\n- ")
}

// NormalizeAndValidate returns a normalized copy together with errors and warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.CORS.AllowedOrigins = trimList(out.CORS.AllowedOrigins)
	out.Admin.Email = strings.TrimSpace(out.Admin.Email)
	out.Session.CookieName = strings.TrimSpace(out.Session.CookieName)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	if out.Session.TTLMinutes <= 0 {
		res.addErr("session.ttl_minutes must be > 0")
	}
	if out.Session.CookieName == "" {
		res.addErr("session.cookie_name is required")
	}
	if !out.Session.SecureCookie {
		res.addWarn("session.secure_cookie is false; session cookies will be sent over plain HTTP.")
	}

	if out.Admin.Email == "" {
		res.addErr("admin.email is required")
	}
	if out.Admin.Password == "" && out.Admin.KeyringAccount == "" {
		res.addErr("admin.password or admin.keyring_account is required")
	}
	if out.Admin.Password == DefaultAdminPassword {
		res.addWarn("admin.password is the well-known default; rotate it before production use.")
	}

	if out.Limits.LoginRPS <= 0 || out.Limits.LoginBurst <= 0 {
		res.addErr("limits.login_rps and limits.login_burst must be > 0")
	}
	if out.Limits.CollectRPS <= 0 || out.Limits.CollectBurst <= 0 {
		res.addErr("limits.collect_rps and limits.collect_burst must be > 0")
	}

	if len(out.CORS.AllowedOrigins) == 0 {
		res.addWarn("cors.allowed_origins is empty; every Origin is echoed back.")
	}

	return out, res
}
