package app

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/foostrack/foostrack/internal/config"
	"github.com/foostrack/foostrack/internal/domain/history"
	"github.com/foostrack/foostrack/internal/domain/match"
	"github.com/foostrack/foostrack/internal/domain/player"
	"github.com/foostrack/foostrack/internal/domain/rating"
	"github.com/foostrack/foostrack/internal/domain/team"
	"github.com/foostrack/foostrack/internal/infrastructure/notify"
	"github.com/foostrack/foostrack/internal/infrastructure/repository/memory"
	"github.com/foostrack/foostrack/internal/infrastructure/repository/postgres"
	"github.com/foostrack/foostrack/internal/interfaces/httpapi"
	idgen "github.com/foostrack/foostrack/internal/platform/id"
	"github.com/foostrack/foostrack/internal/platform/logging"
	"github.com/foostrack/foostrack/internal/platform/resilience"
	"github.com/foostrack/foostrack/internal/usecase"
)

type repositories struct {
	players   player.Repository
	teams     team.Repository
	matches   match.Repository
	histories history.Repository
	recorder  match.Recorder
	applier   match.RatingsApplier
}

// NewHTTPServer wires the full service. The returned close function releases
// the database pool and must be called after the server shuts down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	calc, err := rating.NewCalculator(rating.Policy{
		Breakpoints: cfg.RatingKBreakpoints,
		Factors:     cfg.RatingKFactors,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build rating calculator: %w", err)
	}

	repos, closeRepos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ids := idgen.NewRandomGenerator()

	var notifier usecase.MatchNotifier
	if cfg.WebhookEnabled {
		notifier = notify.NewWebhookNotifier(notify.WebhookNotifierConfig{
			URL:     cfg.WebhookURL,
			Secret:  cfg.WebhookSecret,
			Timeout: cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMax,
			},
		}, logger)
	}

	playerSvc := usecase.NewPlayerService(repos.players, repos.histories, ids, cfg.RatingBaseline, logger)
	teamSvc := usecase.NewTeamService(repos.teams, repos.players, repos.histories, calc, ids, logger)
	matchSvc := usecase.NewMatchService(
		repos.players, repos.teams, repos.matches, repos.histories,
		repos.recorder, calc, ids, notifier, resilience.DefaultRetry(), logger,
	)
	statsSvc := usecase.NewStatsService(repos.players, repos.teams, repos.matches, repos.histories, cfg.StatsWorkers, logger)
	recalcSvc := usecase.NewRecalculationService(
		repos.players, repos.teams, repos.matches, repos.applier, calc, cfg.RatingBaseline, logger,
	)

	handler := httpapi.NewHandler(playerSvc, teamSvc, matchSvc, statsSvc, recalcSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = closeRepos()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeRepos, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	if cfg.DBURL == "" {
		logger.Info("using in-memory repositories", "reason", "DB_URL empty")

		players := memory.NewPlayerRepository(memory.SeedPlayers(cfg.RatingBaseline))
		teams := memory.NewTeamRepository(memory.SeedTeams(cfg.RatingBaseline))
		histories := memory.NewHistoryRepository(nil)
		matches := memory.NewMatchRepository(players, teams, histories)

		return repositories{
			players:   players,
			teams:     teams,
			matches:   matches,
			histories: histories,
			recorder:  matches,
			applier:   matches,
		}, func() error { return nil }, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("using postgres repositories", "db_name", dbNameFromURL(dbURL))

	matches := postgres.NewMatchRepository(db)

	return repositories{
		players:   postgres.NewPlayerRepository(db),
		teams:     postgres.NewTeamRepository(db),
		matches:   matches,
		histories: postgres.NewHistoryRepository(db),
		recorder:  matches,
		applier:   matches,
	}, db.Close, nil
}
