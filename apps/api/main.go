package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"go.uber.org/zap"

	appointmentshandler "github.com/odontox-io/odontox/domains/appointments/be/handler"
	appointmentsrepo "github.com/odontox-io/odontox/domains/appointments/be/repo"
	appointmentsservice "github.com/odontox-io/odontox/domains/appointments/be/service"
	billinghandler "github.com/odontox-io/odontox/domains/billing/be/handler"
	billingrepo "github.com/odontox-io/odontox/domains/billing/be/repo"
	billingservice "github.com/odontox-io/odontox/domains/billing/be/service"
	identityhandler "github.com/odontox-io/odontox/domains/identity/be/handler"
	identityrepo "github.com/odontox-io/odontox/domains/identity/be/repo"
	identityservice "github.com/odontox-io/odontox/domains/identity/be/service"
	invoiceshandler "github.com/odontox-io/odontox/domains/invoices/be/handler"
	invoicesrepo "github.com/odontox-io/odontox/domains/invoices/be/repo"
	invoicesservice "github.com/odontox-io/odontox/domains/invoices/be/service"
	patientshandler "github.com/odontox-io/odontox/domains/patients/be/handler"
	patientsrepo "github.com/odontox-io/odontox/domains/patients/be/repo"
	patientsservice "github.com/odontox-io/odontox/domains/patients/be/service"
	planshandler "github.com/odontox-io/odontox/domains/plans/be/handler"
	plansrepo "github.com/odontox-io/odontox/domains/plans/be/repo"
	plansservice "github.com/odontox-io/odontox/domains/plans/be/service"
	providershandler "github.com/odontox-io/odontox/domains/providers/be/handler"
	providersrepo "github.com/odontox-io/odontox/domains/providers/be/repo"
	providersservice "github.com/odontox-io/odontox/domains/providers/be/service"
	tenantshandler "github.com/odontox-io/odontox/domains/tenants/be/handler"
	tenantsrepo "github.com/odontox-io/odontox/domains/tenants/be/repo"
	tenantsservice "github.com/odontox-io/odontox/domains/tenants/be/service"
	platformauth "github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/email"
	platformlogging "github.com/odontox-io/odontox/platform/go/logging"
	platformmiddleware "github.com/odontox-io/odontox/platform/go/middleware"
	"github.com/odontox-io/odontox/platform/go/persistence"
	tenantmiddleware "github.com/odontox-io/odontox/platform/go/tenant/middleware"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	ApplySchema     bool          `env:"APPLY_SCHEMA" envDefault:"false"`

	SessionSigningKey string        `env:"SESSION_SIGNING_KEY,required"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	HashConcurrency   int           `env:"HASH_CONCURRENCY" envDefault:"4"`

	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000/api/v1/auth"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM"`
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	if cfg.ApplySchema {
		if err := persistence.ApplySchema(ctx, pool); err != nil {
			logger.Fatal("apply database schema", zap.Error(err))
		}
		logger.Info("database schema applied")
	}

	issuer, err := platformauth.NewSessionIssuer(cfg.SessionSigningKey, cfg.SessionTTL)
	if err != nil {
		logger.Fatal("init session issuer", zap.Error(err))
	}
	hasher := platformauth.NewHasher(cfg.HashConcurrency)

	var sender email.Sender = email.NoopSender{}
	if cfg.ResendAPIKey != "" {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.ResendFrom)
	} else {
		logger.Warn("no RESEND_API_KEY configured, verification emails are dropped")
	}

	userStore, err := persistence.NewUserStore(pool)
	if err != nil {
		logger.Fatal("init user store", zap.Error(err))
	}
	membershipStore, err := persistence.NewMembershipStore(pool)
	if err != nil {
		logger.Fatal("init membership store", zap.Error(err))
	}
	tenantStore, err := persistence.NewTenantStore(pool)
	if err != nil {
		logger.Fatal("init tenant store", zap.Error(err))
	}
	tokenStore, err := persistence.NewTokenStore(pool)
	if err != nil {
		logger.Fatal("init token store", zap.Error(err))
	}
	planStore, err := persistence.NewPlanStore(pool)
	if err != nil {
		logger.Fatal("init plan store", zap.Error(err))
	}
	subscriptionStore, err := persistence.NewSubscriptionStore(pool)
	if err != nil {
		logger.Fatal("init subscription store", zap.Error(err))
	}

	tenantDB := persistence.NewTenantDB(pool)
	patientStore, err := persistence.NewPatientStore(tenantDB)
	if err != nil {
		logger.Fatal("init patient store", zap.Error(err))
	}
	providerStore, err := persistence.NewProviderStore(tenantDB)
	if err != nil {
		logger.Fatal("init provider store", zap.Error(err))
	}
	appointmentStore, err := persistence.NewAppointmentStore(tenantDB)
	if err != nil {
		logger.Fatal("init appointment store", zap.Error(err))
	}
	invoiceStore, err := persistence.NewInvoiceStore(tenantDB)
	if err != nil {
		logger.Fatal("init invoice store", zap.Error(err))
	}

	identityService := identityservice.New(
		identityrepo.NewPostgresRepository(userStore, membershipStore, tenantStore, tokenStore),
		hasher, sender, cfg.BaseURL,
	)
	identityHTTPHandler := identityhandler.New(identityService, issuer, logger)

	tenantService := tenantsservice.New(tenantsrepo.NewPostgresRepository(tenantStore))
	tenantHTTPHandler := tenantshandler.New(tenantService, logger)

	var catalog plansservice.ProductCatalog
	if cfg.StripeSecretKey != "" {
		catalog = plansservice.NewStripeCatalog(cfg.StripeSecretKey)
	} else {
		logger.Warn("no STRIPE_SECRET_KEY configured, plan sync is disabled")
	}
	planService := plansservice.New(plansrepo.NewPostgresRepository(planStore), catalog)
	planHTTPHandler := planshandler.New(planService, logger)

	billingService := billingservice.New(billingrepo.NewPostgresRepository(subscriptionStore))
	billingHTTPHandler := billinghandler.New(billingService, cfg.StripeWebhookSecret, logger)

	patientService := patientsservice.New(patientsrepo.NewPostgresRepository(patientStore))
	patientHTTPHandler := patientshandler.New(patientService, logger)

	providerService := providersservice.New(providersrepo.NewPostgresRepository(providerStore))
	providerHTTPHandler := providershandler.New(providerService, logger)

	appointmentService := appointmentsservice.New(appointmentsrepo.NewPostgresRepository(appointmentStore))
	appointmentHTTPHandler := appointmentshandler.New(appointmentService, logger)

	invoiceService := invoicesservice.New(invoicesrepo.NewPostgresRepository(invoiceStore))
	invoiceHTTPHandler := invoiceshandler.New(invoiceService, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	registerDocsRoutes(rootRouter, logger)

	apiRouter := chi.NewRouter()

	// Public surface: credential exchange and processor webhooks.
	authValidator := mustNewSpecValidator(logger, "contracts/auth.yaml")
	apiRouter.Group(func(r chi.Router) {
		r.Use(authValidator)
		r.Mount("/auth", identityHTTPHandler.Routes())
	})
	apiRouter.Mount("/webhooks", billingHTTPHandler.Routes())

	// Tenant-scoped surface: a session, a gated operation, and a tenant
	// binding, in that order.
	apiRouter.Group(func(r chi.Router) {
		r.Use(platformauth.RequireSession(issuer))
		r.Use(tenantmiddleware.WithTenantScope())
		r.Mount("/patients", patientHTTPHandler.Routes())
		r.Mount("/providers", providerHTTPHandler.Routes())
		r.Mount("/appointments", appointmentHTTPHandler.Routes())
		r.Mount("/invoices", invoiceHTTPHandler.Routes())
	})

	// Platform surface: session required, every operation is SUPER_ADMIN gated.
	apiRouter.Group(func(r chi.Router) {
		r.Use(platformauth.RequireSession(issuer))
		r.Mount("/admin/tenants", tenantHTTPHandler.Routes())
		r.Mount("/admin/plans", planHTTPHandler.Routes())
		r.Mount("/admin/plan-features", planHTTPHandler.FeatureRoutes())
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// mustNewSpecValidator loads an OpenAPI document and builds request validator
// middleware for the routes it covers.
func mustNewSpecValidator(logger *zap.Logger, path string) func(http.Handler) http.Handler {
	return oapimiddleware.OapiRequestValidator(mustLoadSpec(logger, path))
}

// mustLoadSpec loads and validates an OpenAPI document from disk.
func mustLoadSpec(logger *zap.Logger, path string) *openapi3.T {
	absPath, err := filepath.Abs(path)
	if err != nil {
		logger.Fatal("resolve spec path", zap.String("path", path), zap.Error(err))
	}

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromFile(absPath)
	if err != nil {
		logger.Fatal("load openapi spec", zap.String("path", path), zap.Error(err))
	}
	if err := spec.Validate(loader.Context); err != nil {
		logger.Fatal("validate openapi spec", zap.String("path", path), zap.Error(err))
	}
	return spec
}
