package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/config"
	"hiring-contest-service/internal/logging"
	"hiring-contest-service/internal/metrics"
	"hiring-contest-service/internal/suggest"
	transport "hiring-contest-service/internal/transport/http"
)

const shutdownTimeout = 5 * time.Second

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the contest server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	node, err := snowflake.NewNode(cfg.IDs.Node)
	if err != nil {
		return errors.Wrap(err, "snowflake node")
	}
	contests := app.NewContestService(st.jobs, st.submissions, st.users, st.attempts,
		app.WithLogger(log),
		app.WithMetrics(m),
		app.WithIDNode(node),
	)
	accounts := app.NewAccountService(st.users, log)
	suggestions := app.NewSuggestionService(newSuggester(cfg, log), config.TTLDuration(cfg.AI.Timeout, 30*time.Second), log, m)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("auth.jwtSecret not set, using a random secret; tokens will not survive a restart")
	}
	tokens := transport.NewTokenIssuer(secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	handler := transport.NewHandler(contests, accounts, suggestions, tokens, log)
	router := transport.NewRouter(handler, transport.NewWSHandler(contests, time.Second, log), reg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if st.keepAlive != nil {
		g.Go(func() error {
			st.keepAlive(gctx)
			return nil
		})
	}
	g.Go(func() error {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "storage": cfg.Storage.Driver}).Info("starting contest service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newSuggester(cfg config.Config, log logrus.FieldLogger) app.TrialSuggester {
	if cfg.AI.APIKey == "" {
		log.Warn("ai.apiKey not set, suggestions are canned")
		return suggest.Offline{Delay: time.Second}
	}
	return suggest.NewOpenAI(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
}
