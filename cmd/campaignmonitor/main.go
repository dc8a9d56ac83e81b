package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/template"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/api"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/cache"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/config"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/db"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/ethereum"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/events"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/execution"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/funding"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/payout"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/quality"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/scheduler"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/scoring"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/social"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/store"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/websocket"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.Dir != "" {
		if err := logger.EnableFileLogging(cfg.Log.Dir); err != nil {
			log.Fatalf("Failed to enable file logging: %v", err)
		}
	}
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Campaign monitor starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	dbService, err := db.NewDBService(db.PostgresOperations{}, cfg.Psql)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer dbService.Close()
	campaigns := store.NewCampaignStore(dbService)

	// Initialize Ethereum ledger
	ledger, err := ethereum.Dial(cfg.Ethereum, nil)
	if err != nil {
		logger.Fatal("Failed to initialize Ethereum client: %v", err)
	}
	defer ledger.Close()

	httpClient := &http.Client{Timeout: cfg.Scheduler.CallTimeout}
	socialClient := social.NewClient(cfg.Social, httpClient)

	var assessor scoring.QualityAssessor
	if cfg.Quality.URL != "" {
		assessor = quality.NewClient(cfg.Quality, httpClient)
	} else {
		logger.Warn("QUALITY_URL not set, scoring without a quality signal")
	}
	engine := scoring.NewEngine(assessor, cfg.Social.OperatorHandle,
		scoring.WithCallTimeout(cfg.Scheduler.CallTimeout),
		scoring.WithQualityFallback(cfg.Quality.Fallback),
	)

	// Initialize WebSocket manager
	wsManager := websocket.NewWebSocketManager()
	go wsManager.Run(ctx)

	var leaderboardTmpl *template.Template
	if cfg.Scheduler.LeaderboardTemplate != "" {
		leaderboardTmpl, err = template.New("leaderboard").Parse(cfg.Scheduler.LeaderboardTemplate)
		if err != nil {
			logger.Fatal("Invalid leaderboard template: %v", err)
		}
	}
	announceTmpl, err := template.New("announce").Parse(cfg.Scheduler.AnnounceTemplate)
	if err != nil {
		logger.Fatal("Invalid announcement template: %v", err)
	}

	dispatcher := payout.NewDispatcher(payout.Options{
		Searcher:            socialClient,
		Scorer:              engine,
		Executor:            execution.NewClient(cfg.Execution, httpClient),
		Audit:               dbService,
		Receipts:            dbService,
		Announcer:           socialClient,
		Publisher:           wsManager,
		LeaderboardTemplate: leaderboardTmpl,
		PageSize:            cfg.Social.PageSize,
		CollectOptions:      []social.CollectOption{social.WithPageDelay(cfg.Social.PageDelay)},
		SpamFilter:          cfg.Social.SpamFilter,
		TopN:                cfg.Payout.TopN,
		FeePercent:          decimal.NewFromFloat(cfg.Payout.FeePercent),
		CallTimeout:         cfg.Scheduler.CallTimeout,
	})

	notifiers := scheduler.Notifiers{wsManager}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, events.TopicsFor(cfg.Kafka.Topic))
		if err != nil {
			logger.Fatal("Failed to initialize Kafka publisher: %v", err)
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}

	var guard scheduler.Guard
	if cfg.Redis.URL != "" {
		redisClient, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to ping Redis: %v", err)
		}
		guard = cache.NewRedisGuard(redisClient, cfg.Redis.ClaimTTL)
	}

	sched, err := scheduler.New(scheduler.Options{
		Store:               campaigns,
		Observer:            funding.NewObserver(ledger, cfg.Scheduler.CallTimeout),
		Dispatcher:          dispatcher,
		Announcer:           socialClient,
		Notifier:            notifiers,
		Guard:               guard,
		AnnounceTemplate:    announceTmpl,
		PollInterval:        cfg.Scheduler.PollInterval,
		CompletionTimeLimit: cfg.Scheduler.CompletionTimeLimit,
		CallTimeout:         cfg.Scheduler.CallTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to initialize scheduler: %v", err)
	}

	// Set up and run the API server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: api.SetupRouter(api.NewHandler(campaigns, dbService), wsManager),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to run server: %v", err)
		}
	}()

	if err := sched.Run(ctx); err != nil {
		logger.Error("Scheduler stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down API server: %v", err)
	}
	logger.Info("Campaign monitor stopped")
}
