package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/telemetry-deployments/internal/pkg/application/deployments"
	"github.com/diwise/telemetry-deployments/internal/pkg/application/notifications"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/bctw"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/critterbase"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/metrics"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/router"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/servicetoken"
	"github.com/diwise/telemetry-deployments/internal/pkg/infrastructure/tracing"
	"github.com/diwise/telemetry-deployments/internal/pkg/presentation/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName string = "telemetry-deployments"

func main() {
	serviceVersion := version()
	logger := newLogger(serviceName, serviceVersion)
	ctx := logging.NewContextWithLogger(context.Background(), logger)

	flags := parseExternalConfig(logger, defaultFlags())

	cleanup, err := tracing.Init(ctx, logger, serviceName, serviceVersion)
	exitIf(err, logger, "failed to init tracing")
	defer cleanup()

	cfg, err := loadNotificationConfig(flags[configurationFile])
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Str("file", flags[configurationFile]).Msg("no notification configuration found, inconsistencies will not be sent to subscribers")
	} else {
		exitIf(err, logger, "could not load notification configuration")
	}

	repo, err := database.NewDeploymentRepository(newConnector(ctx, flags))
	exitIf(err, logger, "could not create or connect to database")

	timeout, err := time.ParseDuration(flags[externalTimeout])
	exitIf(err, logger, fmt.Sprintf("invalid external timeout %q", flags[externalTimeout]))

	tokens := newTokenSource(flags)
	registry := bctw.New(flags[bctwURL], tokens, timeout)
	ledger := critterbase.New(flags[critterbaseURL], tokens, timeout)

	messenger, err := messaging.Initialize(messaging.LoadConfiguration(serviceName, logger))
	exitIf(err, logger, "failed to init messenger")
	defer messenger.Close()

	svc := deployments.New(repo, registry, ledger, messenger, notifications.New(cfg))

	go func() {
		err := http.ListenAndServe(":"+flags[controlPort], newControlRouter())
		exitIf(err, logger, "control server terminated")
	}()

	r := createAppAndSetupRouter(logger, serviceName, svc)

	logger.Info().Str("port", flags[servicePort]).Msg("starting to listen for connections")

	err = http.ListenAndServe(":"+flags[servicePort], r)
	exitIf(err, logger, "failed to start request router")
}

func createAppAndSetupRouter(logger zerolog.Logger, serviceName string, svc deployments.DeploymentReconciler) *chi.Mux {
	r := router.New(serviceName)
	return api.RegisterHandlers(logger, r, svc)
}

func newControlRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func newConnector(ctx context.Context, flags flagMap) database.ConnectorFunc {
	if flags[devmode] == "true" {
		return database.NewSQLiteConnector(ctx)
	}

	return database.NewPostgreSQLConnector(ctx, database.ConnectorConfig{
		Host:     flags[dbHost],
		Port:     flags[dbPort],
		Username: flags[dbUser],
		DbName:   flags[dbName],
		Password: flags[dbPassword],
		SslMode:  flags[dbSSLMode],
	})
}

func newTokenSource(flags flagMap) servicetoken.TokenSource {
	if flags[devmode] == "true" {
		return servicetoken.Static(flags[staticToken])
	}

	return servicetoken.New(flags[tokenURL], flags[clientID], flags[clientSecret])
}

func loadNotificationConfig(path string) (*notifications.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return notifications.LoadConfiguration(f)
}

func parseExternalConfig(logger zerolog.Logger, flags flagMap) flagMap {
	// Allow environment variables to override certain defaults
	envOrDef := func(name string, f flagType) {
		flags[f] = env.GetVariableOrDefault(logger, name, flags[f])
	}

	envOrDef("SERVICE_PORT", servicePort)
	envOrDef("CONTROL_PORT", controlPort)

	envOrDef("POSTGRES_HOST", dbHost)
	envOrDef("POSTGRES_PORT", dbPort)
	envOrDef("POSTGRES_DBNAME", dbName)
	envOrDef("POSTGRES_USER", dbUser)
	envOrDef("POSTGRES_PASSWORD", dbPassword)
	envOrDef("POSTGRES_SSLMODE", dbSSLMode)

	envOrDef("BCTW_API_URL", bctwURL)
	envOrDef("CRITTERBASE_API_URL", critterbaseURL)
	envOrDef("EXTERNAL_TIMEOUT", externalTimeout)

	envOrDef("OAUTH2_TOKEN_URL", tokenURL)
	envOrDef("OAUTH2_CLIENT_ID", clientID)
	envOrDef("OAUTH2_CLIENT_SECRET", clientSecret)
	envOrDef("DEV_ACCESS_TOKEN", staticToken)

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "notification configuration file", apply(configurationFile))
	flag.Func("devmode", "use an in-memory database and a static access token", apply(devmode))
	flag.Parse()

	return flags
}

func newLogger(serviceName, serviceVersion string) zerolog.Logger {
	return log.With().Str("service", strings.ToLower(serviceName)).Str("version", serviceVersion).Logger()
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	infoMap := map[string]string{}
	for _, s := range buildInfo.Settings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}

	return sha
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Error().Err(err).Msg(msg)
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
