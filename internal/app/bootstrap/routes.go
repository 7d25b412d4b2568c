// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"sync"

	addressesfeature "github.com/dalemusser/sfahub/internal/app/features/addresses"
	auditlogfeature "github.com/dalemusser/sfahub/internal/app/features/auditlog"
	contactsfeature "github.com/dalemusser/sfahub/internal/app/features/contacts"
	customersfeature "github.com/dalemusser/sfahub/internal/app/features/customers"
	errorsfeature "github.com/dalemusser/sfahub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/sfahub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/sfahub/internal/app/features/health"
	homefeature "github.com/dalemusser/sfahub/internal/app/features/home"
	loginfeature "github.com/dalemusser/sfahub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/sfahub/internal/app/features/logout"
	registerfeature "github.com/dalemusser/sfahub/internal/app/features/register"
	profilefeature "github.com/dalemusser/sfahub/internal/app/features/profile"
	settingsfeature "github.com/dalemusser/sfahub/internal/app/features/settings"
	uploadcsvfeature "github.com/dalemusser/sfahub/internal/app/features/uploadcsv"
	workspacesfeature "github.com/dalemusser/sfahub/internal/app/features/workspaces"
	"github.com/dalemusser/sfahub/internal/app/store/audit"
	userstore "github.com/dalemusser/sfahub/internal/app/store/users"
	"github.com/dalemusser/sfahub/internal/app/system/auditlog"
	"github.com/dalemusser/sfahub/internal/app/system/auth"
	"github.com/dalemusser/sfahub/internal/app/system/geocode"
	"github.com/dalemusser/sfahub/internal/app/system/mailer"
	"github.com/dalemusser/sfahub/internal/app/system/metrics"
	"github.com/dalemusser/sfahub/internal/app/system/ratelimit"
	"github.com/dalemusser/sfahub/internal/app/system/timezones"
	"github.com/dalemusser/sfahub/internal/app/system/token"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Background workers started by BuildHandler and stopped by Shutdown.
var (
	bgMu    sync.Mutex
	bgStops []func()
)

func onShutdown(stop func()) {
	bgMu.Lock()
	defer bgMu.Unlock()
	bgStops = append(bgStops, stop)
}

func stopBackground() {
	bgMu.Lock()
	defer bgMu.Unlock()
	for _, stop := range bgStops {
		stop()
	}
	bgStops = nil
}

// collaborators are the shared services handed to feature handlers.
type collaborators struct {
	signer   *token.Signer
	mailer   mailer.Mailer
	audit    *auditlog.Logger
	geocoder geocode.Geocoder
	limiter  *ratelimit.LoginLimiter
}

func buildCollaborators(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (collaborators, error) {
	signer, err := token.NewSigner(appCfg.TokenSalt)
	if err != nil {
		return collaborators{}, err
	}

	var auditStore *audit.Store
	if appCfg.AuditLogAuth != auditlog.ModeLog || appCfg.AuditLogMembership != auditlog.ModeLog {
		auditStore = audit.New(deps.MongoDatabase)
	}

	return collaborators{
		signer: signer,
		mailer: mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
		}, logger),
		audit: auditlog.New(auditStore, logger, auditlog.Config{
			Auth:       appCfg.AuditLogAuth,
			Membership: appCfg.AuditLogMembership,
		}),
		geocoder: geocode.NewGoogle(appCfg.GeocodeEndpoint),
		limiter: ratelimit.NewLoginLimiterWithConfig(
			appCfg.LoginIPLimit, appCfg.LoginLimitPeriod,
			appCfg.LoginEmailLimit, appCfg.LoginLimitPeriod),
	}, nil
}

// BuildHandler constructs the root router. Every feature package is mounted
// here with the session manager that guards it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Role, workspace and group changes take effect on the next request.
	sessionMgr.SetFetcher(userstore.NewFetcher(deps.MongoDatabase))

	c, err := buildCollaborators(appCfg, deps, logger)
	if err != nil {
		logger.Error("collaborator init failed", zap.Error(err))
		return nil, err
	}
	onShutdown(c.limiter.Stop)

	db := deps.MongoDatabase
	r := chi.NewRouter()

	r.Use(metrics.RequestID)
	if appCfg.MetricsEnabled {
		r.Use(metrics.Middleware)
	}
	r.Use(sessionMgr.LoadSessionUser)

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	errorsHandler := errorsfeature.NewHandler()
	homeHandler := homefeature.NewHandler(db, logger)
	r.Get("/", homeHandler.ServeRoot)
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, c.limiter, c.audit, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, c.audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	registerHandler := registerfeature.NewHandler(db, c.signer, c.mailer, c.audit, registerfeature.Options{
		Enabled:     appCfg.RegisterNewUser,
		BaseURL:     appCfg.BaseURL,
		TokenMaxAge: appCfg.TokenMaxAge,
	}, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// Workspace membership
	wsHandler := workspacesfeature.NewHandler(db, c.signer, c.mailer, c.audit, workspacesfeature.Options{
		BaseURL:      appCfg.BaseURL,
		InviteMaxAge: appCfg.TokenMaxAge,
	}, logger)
	r.Mount("/workspaces", workspacesfeature.Routes(wsHandler, sessionMgr))
	r.Mount("/users", workspacesfeature.UserRoutes(wsHandler, sessionMgr))
	r.Mount("/invites", workspacesfeature.InviteRoutes(wsHandler))

	auditHandler := auditlogfeature.NewHandler(db, timezones.Location(appCfg.Timezone), logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	groupsHandler := groupsfeature.NewHandler(db, c.audit, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Sales records
	customersHandler := customersfeature.NewHandler(db, c.geocoder, logger)
	r.Mount("/customers", customersfeature.Routes(customersHandler, sessionMgr))

	contactsHandler := contactsfeature.NewHandler(db, timezones.Location(appCfg.Timezone), logger)
	r.Mount("/contacts", contactsfeature.Routes(contactsHandler, sessionMgr))

	addressesHandler := addressesfeature.NewHandler(db, logger)
	r.Mount("/addresses", addressesfeature.Routes(addressesHandler, sessionMgr))

	uploadHandler := uploadcsvfeature.NewHandler(db, logger)
	r.Mount("/upload_csv", uploadcsvfeature.Routes(uploadHandler, sessionMgr))

	profileHandler := profilefeature.NewHandler(db, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	settingsHandler := settingsfeature.NewHandler(db, logger)
	r.Route("/settings", func(sr chi.Router) {
		sr.Use(sessionMgr.RequireWorkspaceMember)
		settingsHandler.MountRoutes(sr)
	})

	return r, nil
}
