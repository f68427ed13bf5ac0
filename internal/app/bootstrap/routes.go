// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	consolefeature "github.com/dalemusser/classhub/internal/app/features/console"
	decisionsfeature "github.com/dalemusser/classhub/internal/app/features/decisions"
	errorsfeature "github.com/dalemusser/classhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/classhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/classhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/classhub/internal/app/features/logout"
	"github.com/dalemusser/classhub/internal/app/policy/classroom"
	"github.com/dalemusser/classhub/internal/app/policy/engine"
	"github.com/dalemusser/classhub/internal/app/policy/legacy"
	decisionstore "github.com/dalemusser/classhub/internal/app/store/decisions"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// ClassHub mounts the decision API under /v1/decisions, the health probe
// under /health, and — when enabled — the operator console with its
// login/logout pair.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// The engine carries both rule generations; the request path's root
	// decides which one applies.
	eng := engine.New(logger, classroom.Ruleset(), legacy.Ruleset())
	source := snapshot.NewMongoStore(deps.MongoDatabase, logger)

	records := decisionstore.New(deps.MongoDatabase)
	audit := auditlog.New(records, logger, auditlog.Config{Decisions: appCfg.AuditDecisions})

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Decision API: the surface callers actually integrate with.
	decisionsHandler := decisionsfeature.NewHandler(eng, source, audit, logger)
	r.Mount("/v1/decisions", decisionsfeature.Routes(decisionsHandler))

	// Error pages (redirect targets of the session middleware)
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	if appCfg.ConsoleEnabled {
		loginHandler := loginfeature.NewHandler(sessionMgr, ratelimit.NewLoginLimiter(), appCfg.OperatorLogin, appCfg.OperatorPasswordHash, logger)
		r.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		consoleHandler := consolefeature.NewHandler(eng, source, records, audit, logger)
		r.Mount("/console", consolefeature.Routes(consoleHandler, sessionMgr))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/console", http.StatusSeeOther)
		})
	}

	return r, nil
}
