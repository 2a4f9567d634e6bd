package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	schedulingv1 "github.com/bilalhaider11/ale-backend-sub000/internal/api/scheduling/v1"
	"github.com/bilalhaider11/ale-backend-sub000/internal/calendar"
	"github.com/bilalhaider11/ale-backend-sub000/internal/config"
	"github.com/bilalhaider11/ale-backend-sub000/internal/db"
	"github.com/bilalhaider11/ale-backend-sub000/internal/lock"
	"github.com/bilalhaider11/ale-backend-sub000/internal/metrics"
	"github.com/bilalhaider11/ale-backend-sub000/internal/model"
	"github.com/bilalhaider11/ale-backend-sub000/internal/repository"
	"github.com/bilalhaider11/ale-backend-sub000/internal/service"
)

func main() {
	// .env необязателен, переменные окружения имеют приоритет.
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "care-scheduling").Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("scheduler stopped")
	}
}

func run(logger zerolog.Logger) error {
	// 1. Конфиги: процесс из YAML, БД из env.
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	level, err := zerolog.ParseLevel(appCfg.LogLevel())
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger = logger.Level(level)

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return fmt.Errorf("load db config: %w", err)
	}

	// 2. Подключаемся к БД через GORM и мигрируем модели.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("sql DB: %w", err)
	}
	defer sqlDB.Close()

	// 3. Блокировки бронирования: redis, если настроен, иначе в памяти процесса.
	var locker lock.Locker = lock.NewLocalLocker()
	if appCfg.RedisEnabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     appCfg.Redis.Address,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping %s: %w", appCfg.Redis.Address, err)
		}
		locker = lock.NewRedisLocker(client, appCfg.LockTTL(), logger)
		logger.Info().Str("addr", appCfg.Redis.Address).Msg("booking locks in redis")
	} else {
		logger.Warn().Msg("redis not configured, booking locks are process-local")
	}

	calendar.DefaultPageSize = appCfg.DefaultPageSize()

	// 4. Репозитории и сервисы.
	employees := repository.NewGormEmployeeRepository(gormDB)
	patients := repository.NewGormPatientRepository(gormDB)
	series := repository.NewGormSeriesRepository(gormDB)
	availSlots := repository.NewGormAvailabilitySlotRepository(gormDB)
	careSlots := repository.NewGormPatientCareSlotRepository(gormDB)
	matchRepo := repository.NewGormMatchRepository(gormDB)

	directorySvc := service.NewDirectoryService(employees, patients, logger)
	matchSvc := service.NewMatchService(matchRepo, patients, careSlots, logger)
	visitSvc := service.NewVisitService(gormDB, locker, logger)
	availabilitySvc := service.NewAvailabilityService(availSlots, series, employees, logger)
	careSvc := service.NewCareSlotService(careSlots, series, patients, matchSvc, visitSvc, logger)

	// 5. Метрики.
	var metricsSrv *http.Server
	if appCfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", appCfg.PrometheusPort()),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	// 6. gRPC-сервер.
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(service.LoggingInterceptor(logger)))
	schedulingv1.RegisterSchedulingServiceServer(grpcServer,
		service.NewSchedulingServer(directorySvc, availabilitySvc, careSvc, matchSvc, visitSvc))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(schedulingv1.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	addr := appCfg.GRPCAddress()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logger.Info().Str("addr", addr).Msg("scheduling gRPC server listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	// 7. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("grpc serve: %w", err)
	}

	healthSrv.Shutdown()
	grpcServer.GracefulStop()
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
	return nil
}
