package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	mdapplication "github.com/wyfcoding/risksim/internal/marketdata/application"
	"github.com/wyfcoding/risksim/internal/marketdata/infrastructure/csvstore"
	mdhttp "github.com/wyfcoding/risksim/internal/marketdata/interfaces/http"
	"github.com/wyfcoding/risksim/internal/simulation/application"
	"github.com/wyfcoding/risksim/internal/simulation/domain"
	"github.com/wyfcoding/risksim/internal/simulation/infrastructure/messaging"
	runmysql "github.com/wyfcoding/risksim/internal/simulation/infrastructure/persistence/mysql"
	simhttp "github.com/wyfcoding/risksim/internal/simulation/interfaces/http"
	"github.com/wyfcoding/risksim/pkg/config"
	"github.com/wyfcoding/risksim/pkg/logger"
	"github.com/wyfcoding/risksim/pkg/metrics"
	"github.com/wyfcoding/risksim/pkg/mq"
)

var configPath = flag.String("config", "configs/riskserver/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	if err := logger.Init(cfg.Logger); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Metrics
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. 运行台账持久化，DSN 为空时跳过
	var repo domain.RunRepository
	if cfg.Database.DSN != "" {
		db, err := gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
		if err != nil {
			logger.Fatal(ctx, "failed to connect database", "error", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal(ctx, "failed to access database pool", "error", err)
		}
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		runRepo, err := runmysql.NewRunRepository(db)
		if err != nil {
			logger.Fatal(ctx, "failed to migrate run ledger", "error", err)
		}
		repo = runRepo
	} else {
		logger.Warn(ctx, "database DSN empty, run ledger persistence disabled")
	}

	// 5. 事件发布，brokers 为空时跳过
	var publisher domain.EventPublisher
	var producer *mq.KafkaProducer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "failed to create Kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.TopicPrefix)
	} else {
		logger.Warn(ctx, "kafka brokers empty, event publishing disabled")
	}

	// 6. Application
	workers := cfg.Simulation.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	simService := application.NewSimulationService(repo, publisher, m)

	// 7. HTTP
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	simHandler := simhttp.NewSimulationHandler(simService, simhttp.Defaults{
		Paths:     cfg.Simulation.Paths,
		TimeSteps: cfg.Simulation.TimeSteps,
		BlockSize: cfg.Simulation.BlockSize,
		Seed:      cfg.Simulation.Seed,
		Workers:   workers,
	})
	simHandler.RegisterRoutes(&router.RouterGroup)

	if cfg.MarketData.CSVPath != "" {
		store, err := csvstore.NewStore(cfg.MarketData.CSVPath, cfg.MarketData.Symbol)
		if err != nil {
			logger.Fatal(ctx, "failed to load market data csv", "error", err)
		}
		mdHandler := mdhttp.NewMarketDataHandler(mdapplication.NewMarketDataService(store))
		mdHandler.RegisterRoutes(&router.RouterGroup)
	} else {
		logger.Warn(ctx, "market data csv path empty, historical endpoints disabled")
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "HTTP server starting", "addr", srv.Addr, "workers", workers)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "server stopped")
}
