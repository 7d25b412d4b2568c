// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/geocode"
	"github.com/dalemusser/sfahub/internal/app/system/timeouts"
	"github.com/dalemusser/sfahub/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for SFAHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SFAHUB_MONGO_URI, SFAHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sfahub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "sfahub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "336h", Desc: "Session cookie lifetime"},

	// Signed links
	{Name: "token_salt", Default: "dev-only-token-secret-change-me", Desc: "Secret for activation and invite links"},
	{Name: "token_max_age", Default: "24h", Desc: "Lifetime of activation and invite links"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank logs mail instead)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@sfahub.local", Desc: "From email address"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for email links"},
	{Name: "register_new_user", Default: true, Desc: "Allow self sign-up"},
	{Name: "geocode_endpoint", Default: geocode.DefaultEndpoint, Desc: "Google Maps web service base URL"},
	{Name: "timezone", Default: timezones.Default, Desc: "IANA zone for visit plans and activity counts"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "List and count queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Bulk actions"},
	{Name: "timeout_batch", Default: "120s", Desc: "CSV imports"},

	{Name: "metrics_enabled", Default: true, Desc: "Serve /metrics and record request metrics"},

	// Audit logging
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_membership", Default: "all", Desc: "Membership event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Login throttling
	{Name: "login_ip_limit", Default: 20, Desc: "Login attempts per IP per period"},
	{Name: "login_email_limit", Default: 5, Desc: "Login attempts per email per period"},
	{Name: "login_limit_period", Default: "15m", Desc: "Login throttling window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// SFAHUB_* environment variables and flags (flags > env > files > defaults).
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SFAHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 14*24*time.Hour),

		TokenSalt:   appValues.String("token_salt"),
		TokenMaxAge: appValues.Duration("token_max_age", 24*time.Hour),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),

		BaseURL:         appValues.String("base_url"),
		RegisterNewUser: appValues.Bool("register_new_user"),
		GeocodeEndpoint: appValues.String("geocode_endpoint"),
		Timezone:        appValues.String("timezone"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		TimeoutBatch:  appValues.Duration("timeout_batch", timeouts.DefaultBatch),

		MetricsEnabled: appValues.Bool("metrics_enabled"),

		AuditLogAuth:       appValues.String("audit_log_auth"),
		AuditLogMembership: appValues.String("audit_log_membership"),

		LoginIPLimit:     appValues.Int("login_ip_limit"),
		LoginEmailLimit:  appValues.Int("login_email_limit"),
		LoginLimitPeriod: appValues.Duration("login_limit_period", 15*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations the service cannot start with.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.SessionKey == "" {
		return errors.New("session_key must be set")
	}
	if appCfg.TokenSalt == "" {
		return errors.New("token_salt must be set")
	}
	if appCfg.TokenMaxAge <= 0 {
		return fmt.Errorf("token_max_age must be positive, got %s", appCfg.TokenMaxAge)
	}
	if !timezones.Valid(appCfg.Timezone) {
		return fmt.Errorf("unknown timezone %q", appCfg.Timezone)
	}
	for key, mode := range map[string]string{
		"audit_log_auth":       appCfg.AuditLogAuth,
		"audit_log_membership": appCfg.AuditLogMembership,
	} {
		if !auditlog.ValidMode(mode) {
			return fmt.Errorf("%s: unknown mode %q", key, mode)
		}
	}
	return nil
}
