package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurorains/insurance-platform/internal/core"
	transporthttp "github.com/aurorains/insurance-platform/internal/http"
	"github.com/aurorains/insurance-platform/internal/http/handlers"
	"github.com/aurorains/insurance-platform/internal/http/health"
	"github.com/aurorains/insurance-platform/internal/jobs"
	"github.com/aurorains/insurance-platform/internal/middleware"
	"github.com/aurorains/insurance-platform/internal/platform/config"
	"github.com/aurorains/insurance-platform/internal/platform/logging"
	"github.com/aurorains/insurance-platform/internal/platform/metrics"
	"github.com/aurorains/insurance-platform/internal/store/dynamo"
	"github.com/aurorains/insurance-platform/internal/store/memory"
	"github.com/aurorains/insurance-platform/internal/store/mongo"
	redisstore "github.com/aurorains/insurance-platform/internal/store/redis"
)

const maxRequestBody = 1 << 20 // 1 MiB

// repos bundles every repository behind the core interfaces, regardless of
// which store backs them.
type repos struct {
	customers   core.CustomerRepo
	products    core.ProductRepo
	apps        core.ApplicationRepo
	assessments core.AssessmentRepo
	decisions   core.DecisionRepo
	policies    core.PolicyRepo
	payments    core.PaymentRepo
	reports     core.ReportRepo
	credentials core.CredentialRepo
}

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, "insurance-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	var (
		rp      repos
		pingers []health.Pinger
	)
	switch cfg.DBType {
	case "dynamodb":
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Error("failed to connect to DynamoDB", "err", err)
			os.Exit(1)
		}
		if err := dynamo.EnsureTables(ctx, client.DB, log); err != nil {
			log.Error("failed to ensure DynamoDB tables", "err", err)
			os.Exit(1)
		}
		rp = repos{
			customers:   dynamo.NewCustomerRepo(client.DB),
			products:    dynamo.NewProductRepo(client.DB),
			apps:        dynamo.NewApplicationRepo(client.DB),
			assessments: dynamo.NewAssessmentRepo(client.DB),
			decisions:   dynamo.NewDecisionRepo(client.DB),
			policies:    dynamo.NewPolicyRepo(client.DB),
			payments:    dynamo.NewPaymentRepo(client.DB),
			reports:     dynamo.NewReportRepo(client.DB),
			credentials: dynamo.NewCredentialRepo(client.DB),
		}
		pingers = append(pingers, client)

	default:
		client, err := mongo.NewClient(cfg)
		if err != nil {
			log.Error("failed to connect to MongoDB", "err", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close(context.Background()) }()

		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			log.Error("failed to ensure MongoDB indexes", "err", err)
			os.Exit(1)
		}

		opTimeout := time.Duration(cfg.MongoOpTimeoutMs) * time.Millisecond
		rp = repos{
			customers:   mongo.NewCustomerRepo(client.DB, opTimeout),
			products:    mongo.NewProductRepo(client.DB, opTimeout),
			apps:        mongo.NewApplicationRepo(client.DB, opTimeout),
			assessments: mongo.NewAssessmentRepo(client.DB, opTimeout),
			decisions:   mongo.NewDecisionRepo(client.DB, opTimeout),
			policies:    mongo.NewPolicyRepo(client.DB, opTimeout),
			payments:    mongo.NewPaymentRepo(client.DB, opTimeout),
			reports:     mongo.NewReportRepo(client.DB, opTimeout),
			credentials: mongo.NewCredentialRepo(client.DB, opTimeout),
		}
		pingers = append(pingers, client)
	}

	// ---- Sessions ----
	var sessions core.SessionStore
	if cfg.RedisAddr != "" {
		store, err := redisstore.NewSessionStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Error("failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
		sessions = store
		pingers = append(pingers, store)
	} else {
		log.Warn("REDIS_ADDR not set; using in-memory sessions, lost on restart")
		sessions = memory.NewSessionStore()
	}

	// ---- Services ----
	m := metrics.New()

	authSvc := core.NewAuthService(rp.credentials, sessions, time.Duration(cfg.SessionTTLMin)*time.Minute)
	appSvc := core.NewApplicationService(rp.apps, rp.customers, rp.products)
	uwSvc := core.NewUnderwritingService(rp.assessments, rp.decisions, rp.apps, rp.customers,
		func(status core.DecisionStatus, auto bool) {
			m.ObserveDecision(string(status), auto)
		})
	policySvc := core.NewPolicyService(rp.policies, rp.payments, rp.apps, m.PoliciesIssuedTotal.Inc)
	paymentSvc := core.NewPaymentService(rp.payments, m.PaymentsRecordedTotal.Inc)
	reportSvc := core.NewReportService(rp.reports, rp.apps, rp.policies)

	// ---- Background workers ----
	interval := time.Duration(cfg.WorkerIntervalSec) * time.Second
	uwWorker := jobs.NewUnderwritingWorker(rp.apps, uwSvc, interval, log)
	issuanceWorker := jobs.NewIssuanceWorker(rp.apps, policySvc, interval, log)
	go uwWorker.Start(ctx)
	go issuanceWorker.Start(ctx)

	// ---- HTTP ----
	rl := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)
	rl.StartWithContext(ctx)

	router := transporthttp.NewRouter(transporthttp.Deps{
		Use: []func(http.Handler) http.Handler{
			chimw.RequestID,
			chimw.RealIP,
			chimw.Recoverer,
			chimw.Timeout(time.Duration(cfg.HTTPRequestTimeoutSec) * time.Second),
			middleware.SecurityHeaders,
			middleware.CORS(cfg.AllowedOrigins),
			middleware.LimitRequestBody(maxRequestBody),
			rl.Middleware,
			middleware.Metrics(m),
		},
		Mounts: []handlers.Mountable{
			health.New(log, 2*time.Second, pingers...),
			handlers.MountFunc(func(r chi.Router) {
				r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
			}),
			handlers.NewAuthHandler(authSvc, log),
			handlers.NewCustomerHandler(rp.customers, authSvc, log),
			handlers.NewProductHandler(rp.products, authSvc, log),
			handlers.NewApplicationHandler(appSvc, authSvc, log),
			handlers.NewUnderwritingHandler(uwSvc, authSvc, log),
			handlers.NewPolicyHandler(policySvc, authSvc, log),
			handlers.NewPaymentHandler(paymentSvc, policySvc, authSvc, log),
			handlers.NewReportHandler(reportSvc, authSvc, log),
		},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	log.Info("server listening", "addr", addr, "env", cfg.Env, "db", cfg.DBType)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
