// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"time"

	dashboardfeature "github.com/dalemusser/admissions/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/admissions/internal/app/features/errors"
	healthfeature "github.com/dalemusser/admissions/internal/app/features/health"
	homefeature "github.com/dalemusser/admissions/internal/app/features/home"
	loginfeature "github.com/dalemusser/admissions/internal/app/features/login"
	logoutfeature "github.com/dalemusser/admissions/internal/app/features/logout"
	registrationfeature "github.com/dalemusser/admissions/internal/app/features/registration"
	"github.com/dalemusser/admissions/internal/app/system/auth"
	"github.com/dalemusser/admissions/internal/app/system/psgc"
	"github.com/dalemusser/admissions/internal/app/system/ratelimit"
	"github.com/dalemusser/admissions/internal/app/system/wizard"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// It initializes the template engine, applies CSRF and session middleware,
// and mounts the feature routers: landing, registration wizard, admin
// login/logout and dashboard, plus health and metrics endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Shared layout was registered in Startup. Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := chi.NewRouter()

	r.Use(csrfMiddleware(appCfg.SessionKey, secure))
	// Loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.DraftBackend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(appCfg.CountdownSeconds, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	form, err := loadForm(appCfg.FormDefinition, logger)
	if err != nil {
		return nil, err
	}
	geo := psgc.New(appCfg.PSGCBaseURL,
		psgc.WithTimeout(appCfg.PSGCTimeout),
		psgc.WithRateLimit(float64(appCfg.PSGCRatePerSec)),
		psgc.WithLogger(logger),
		psgc.WithMetrics(reg),
	)
	var drafts registrationfeature.DraftOpener
	if appCfg.DraftBackend == registrationfeature.DraftBackendMongo {
		drafts = registrationfeature.MongoDrafts(sessionMgr, deps.Drafts, logger)
	} else {
		drafts = registrationfeature.CookieDrafts(sessionMgr, logger)
	}
	regHandler := registrationfeature.NewHandler(form, sessionMgr, deps.Students, geo, drafts, errLog, logger)
	var submitLimit *ratelimit.Limiter
	if appCfg.SubmitRateLimit > 0 {
		submitLimit = ratelimit.New(appCfg.SubmitRateLimit, time.Minute)
	}
	r.Mount("/register", registrationfeature.Routes(regHandler, submitLimit))

	// Authentication
	loginHandler, err := loginfeature.NewHandler(loginfeature.Credentials{
		Username:     appCfg.AdminUsername,
		PasswordHash: appCfg.AdminPasswordHash,
		Password:     appCfg.AdminPassword,
	}, sessionMgr, ratelimit.NewLoginLimiter(), errLog, logger)
	if err != nil {
		return nil, err
	}
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Admin dashboard
	dashboardHandler := dashboardfeature.NewHandler(deps.Students, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

func loadForm(path string, logger *zap.Logger) (*wizard.FormDef, error) {
	if path == "" {
		return wizard.DefaultForm(), nil
	}
	form, err := wizard.LoadForm(path)
	if err != nil {
		logger.Error("form definition failed to load", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	logger.Info("form definition loaded", zap.String("path", path), zap.Int("sections", form.Len()))
	return form, nil
}

// csrfMiddleware protects every unsafe method with a token keyed off the
// session key. Over plain HTTP (dev) requests are marked plaintext so the
// Referer check does not demand https.
func csrfMiddleware(sessionKey string, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
