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

	"golang.org/x/sync/errgroup"

	"ctfbot/internal/announce"
	"ctfbot/internal/assignment"
	"ctfbot/internal/challenge"
	"ctfbot/internal/event"
	"ctfbot/internal/gateway"
	gwmetrics "ctfbot/internal/gateway/metrics"
	"ctfbot/internal/leaderboard"
	lbmetrics "ctfbot/internal/leaderboard/metrics"
	"ctfbot/internal/ledger"
	"ctfbot/internal/platform/config"
	"ctfbot/internal/platform/httpserver"
	"ctfbot/internal/platform/logger"
	"ctfbot/internal/platform/postgres"
	platformredis "ctfbot/internal/platform/redis"
	"ctfbot/internal/ratelimit"
	rlmetrics "ctfbot/internal/ratelimit/metrics"
	"ctfbot/internal/scoring"
	"ctfbot/internal/team"
	httptransport "ctfbot/internal/transport/http"
	"ctfbot/pkg/platform/tx"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	// Stores: postgres when configured, in-process otherwise.
	var (
		teamStore       team.Store
		challengeStore  challenge.Store
		ledgerStore     ledger.Store
		scoreStore      scoring.ScoreStore
		eventStore      event.Store
		assignmentStore assignment.Store
		outboxStore     announce.Store
		runner          tx.Runner
	)

	handlerChecks := map[string]func(ctx context.Context) error{}

	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}

		teamStore = team.NewPostgres(db)
		challengeStore = challenge.NewPostgres(db)
		ledgerStore = ledger.NewPostgres(db)
		scoreStore = scoring.NewPostgresScoreStore(db)
		eventStore = event.NewPostgres(db)
		assignmentStore = assignment.NewPostgres(db)
		outboxStore = announce.NewPostgres(db)
		runner = tx.NewSQLRunner(db)
		handlerChecks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		teamStore = team.NewMemoryStore()
		challengeStore = challenge.NewMemoryStore()
		ledgerStore = ledger.NewMemoryStore()
		scoreStore = scoring.NewMemoryScoreStore()
		eventStore = event.NewMemoryStore()
		assignmentStore = assignment.NewMemoryStore()
		outboxStore = announce.NewMemoryStore()
		runner = tx.NoopRunner{}
		log.Warn("postgres not configured, using in-memory stores")
	}

	// Redis backs the rate limiter and the standings snapshot cache.
	var bucketStore ratelimit.BucketStore = ratelimit.NewInMemoryBucketStore()
	var snapshotCache *leaderboard.SnapshotCache
	redisClient, err := platformredis.New(cfg.RedisURL, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		bucketStore = ratelimit.NewRedisBucketStore(redisClient.Client)
		snapshotCache = leaderboard.NewSnapshotCache(redisClient.Client, cfg.LeaderboardCacheTTL)
		handlerChecks["redis"] = redisClient.Health
		log.Info("redis connected")
	}

	// Services.
	teamSvc := team.New(teamStore, cfg.JWTSigningKey, team.WithLogger(log))
	challengeSvc := challenge.New(challengeStore, challenge.WithLogger(log))
	eventSvc := event.New(eventStore, event.WithLogger(log))
	assignmentSvc := assignment.New(assignmentStore, assignment.WithLogger(log))
	limiter := ratelimit.New(bucketStore, cfg.SubmitLimit, cfg.SubmitWindow,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(rlmetrics.New()),
	)
	announceSvc := announce.NewService(outboxStore)

	lbOpts := []leaderboard.Option{
		leaderboard.WithLogger(log),
		leaderboard.WithMetrics(lbmetrics.New()),
	}
	if snapshotCache != nil {
		lbOpts = append(lbOpts, leaderboard.WithSnapshotCache(snapshotCache))
	}
	board := leaderboard.New(scoreStore, teamStore, lbOpts...)
	// Recover the projection from the committed delta history before serving.
	if err := board.Rebuild(ctx); err != nil {
		return err
	}

	engine := scoring.NewEngine(scoreStore, runner,
		scoring.WithLogger(log),
		scoring.WithDecayPolicy(scoring.DecayPolicy{Floor: cfg.DecayFloor, Rate: cfg.DecayRate}),
		scoring.WithAnnouncer(announceSvc),
		scoring.WithSolveRecorder(gateway.NewSolveRecorder(ledgerStore)),
		scoring.WithDeltaSink(board),
	)

	gatewaySvc := gateway.New(teamStore, challengeStore, limiter, engine, ledgerStore,
		gateway.WithLogger(log),
		gateway.WithMetrics(gwmetrics.New()),
		gateway.WithDeadline(cfg.SubmitDeadline),
	)

	handler := httptransport.NewHandler(log,
		gatewaySvc, teamSvc, challengeSvc, eventSvc, assignmentSvc,
		board, ledgerStore, limiter,
	)
	for name, check := range handlerChecks {
		handler.AddHealthCheck(name, check)
	}
	router := httptransport.NewRouter(handler, teamSvc, httptransport.Config{
		AdminToken: cfg.AdminToken,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	// Solve announcements flow through the outbox to kafka when configured.
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := announce.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		worker := announce.NewWorker(outboxStore, producer, announce.WithWorkerLogger(log))
		g.Go(func() error {
			return worker.Run(ctx)
		})
		log.Info("announcement worker started", "topic", cfg.KafkaTopic)
	}

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
