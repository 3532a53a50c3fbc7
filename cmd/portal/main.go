// Package main runs the artisan request portal HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kylejryan/artisan-request-portal/internal/authz"
	"github.com/kylejryan/artisan-request-portal/internal/awsutil"
	"github.com/kylejryan/artisan-request-portal/internal/config"
	"github.com/kylejryan/artisan-request-portal/internal/ddb"
	"github.com/kylejryan/artisan-request-portal/internal/identity"
	"github.com/kylejryan/artisan-request-portal/internal/intake"
	"github.com/kylejryan/artisan-request-portal/internal/logging"
	"github.com/kylejryan/artisan-request-portal/internal/minioio"
	"github.com/kylejryan/artisan-request-portal/internal/pgstore"
	"github.com/kylejryan/artisan-request-portal/internal/s3io"
	"github.com/kylejryan/artisan-request-portal/internal/server"
)

const metricsNamespace = "artisan_portal"

// App holds the application state, including configuration and clients.
type App struct {
	env     config.Env
	log     *slog.Logger
	awsCfg  aws.Config
	pool    *pgxpool.Pool
	objects intake.ObjectStore
	records intake.RecordStore
}

// main wires the stores and identity provider, then serves until signalled.
func main() {
	env := config.MustLoad()
	logger := logging.New(env.LogLevel, env.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	app, err := newApp(ctx, env, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	handler, err := app.router()
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              env.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("portal listening", "addr", env.Addr,
			"object_backend", env.ObjectBackend, "metadata_backend", env.MetadataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down gracefully")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// newApp connects the configured object and metadata backends.
func newApp(ctx context.Context, env config.Env, logger *slog.Logger) (*App, error) {
	cfg, endpoint, err := awsutil.Load(ctx, env.Region)
	if err != nil {
		return nil, err
	}
	app := &App{env: env, log: logger, awsCfg: cfg}

	switch env.ObjectBackend {
	case config.BackendMinio:
		store, err := minioio.NewClient(ctx, env.MinioEndpoint, env.MinioAccessKey, env.MinioSecretKey, env.Bucket, env.MinioUseSSL, logger)
		if err != nil {
			return nil, err
		}
		app.objects = store
	default:
		app.objects = &s3io.Uploader{Client: awsutil.NewS3Client(cfg, endpoint), Bucket: env.Bucket}
	}

	switch env.MetadataBackend {
	case config.BackendPostgres:
		pool, err := pgstore.NewClient(ctx, env.PostgresURL)
		if err != nil {
			return nil, err
		}
		app.pool = pool
		if err := pgstore.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		store, err := pgstore.New(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		app.records = store
	default:
		app.records = &ddb.Repo{DB: dynamodb.NewFromConfig(cfg), Table: env.Table}
	}
	return app, nil
}

// router builds the HTTP handler with metrics and the identity gateway.
func (a *App) router() (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs, err := intake.NewPrometheusObserver(metricsNamespace, reg)
	if err != nil {
		return nil, err
	}

	deps := server.Deps{
		Intake:         intake.NewService(a.objects, a.records, intake.WithLogger(a.log), intake.WithObserver(obs)),
		DevBypassAuth:  a.env.DevBypassAuth,
		AllowedOrigins: a.env.AllowedOrigins,
		MaxUploadBytes: a.env.MaxUploadBytes,
		Metrics:        reg,
		Log:            a.log,
	}

	if a.env.CognitoClientID != "" {
		deps.Identity = &identity.Cognito{
			Client:       cip.NewFromConfig(a.awsCfg),
			ClientID:     a.env.CognitoClientID,
			ClientSecret: a.env.CognitoClientSecret,
		}
		if a.env.CognitoUserPoolID != "" {
			v, err := authz.NewCognitoVerifier(a.env.Region, a.env.CognitoUserPoolID, a.env.CognitoClientID, a.log)
			if err != nil {
				return nil, err
			}
			deps.Verifier = v
		}
	}
	if deps.Verifier == nil && !a.env.DevBypassAuth {
		a.log.Warn("no token verifier configured; every submission will be rejected as unauthenticated")
	}
	return server.NewRouter(deps), nil
}

func (a *App) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
