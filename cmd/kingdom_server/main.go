package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/KingdomEngine/internal/config"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/KingdomEngine/internal/grpc/gameserver"
	"github.com/mitchelldurbincs/KingdomEngine/internal/logging"
	"github.com/mitchelldurbincs/KingdomEngine/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", os.Getenv("APP_ENV"), "Environment overlay (loads config.<env>.yaml)")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	maxGames := flag.Int("max-games", -1, "Maximum concurrent games (-1 to use config default)")
	journalDir := flag.String("journal-dir", "", "Directory for per-game event journals (empty to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Str("env", *env).Msg("Failed to load environment config")
	}

	cfg := config.Get()
	srvCfg := cfg.Server.GRPCServer
	logCfg := cfg.Logging

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = srvCfg.Port
	}
	if *host == "" {
		*host = srvCfg.Host
	}
	if *logLevel != "" {
		logCfg.Level = *logLevel
	}
	if *maxGames == -1 {
		*maxGames = srvCfg.MaxGames
	}
	if *journalDir == "" {
		*journalDir = logCfg.JournalDir
	}
	// For enableReflection, use config if flag not explicitly set to true
	if !*enableReflection {
		*enableReflection = srvCfg.EnableReflection
	}

	logFile, err := logging.Setup(logCfg, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logFile.Close()

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("max_games", *maxGames).
		Str("journal_dir", *journalDir).
		Str("config_file", config.ConfigFilePath()).
		Msg("Starting kingdom game server")

	gameManager := gameserver.NewGameManager(gameserver.Options{
		MaxGames:        *maxGames,
		FinishedGameTTL: seconds(srvCfg.FinishedGameTTL),
		IdleGameTimeout: seconds(srvCfg.IdleGameTimeout),
		CleanupInterval: seconds(srvCfg.CleanupInterval),
		IdempotencyTTL:  seconds(srvCfg.IdempotencyTTL),
		Journal: subscribers.JournalConfig{
			Dir:        *journalDir,
			MaxSizeMB:  logCfg.MaxSizeMB,
			MaxBackups: logCfg.MaxBackups,
			Compress:   logCfg.Compress,
		},
		Rules:  cfg.GameRules(),
		Logger: log.Logger,
	})

	monitor := monitoring.NewGoroutineMonitor(log.Logger, 30*time.Second, 0)
	monitor.RegisterGauge("active_games", gameManager.GetActiveGames)
	monitor.RegisterGauge("manager_goroutines", gameManager.GetActiveGoroutineCount)
	monitor.Start()

	// New games pick up rule and capacity changes; running games keep theirs
	config.WatchConfig(func(c *config.Config) {
		zerolog.SetGlobalLevel(logging.ParseLevel(c.Logging.Level))
		gameManager.SetMaxGames(c.Server.GRPCServer.MaxGames)
		if err := gameManager.SetRules(c.GameRules()); err != nil {
			log.Error().Err(err).Msg("Reloaded rules rejected")
		}
	})

	// Create listener
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	// Create gRPC server with interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor,
			recoveryInterceptor,
		),
	)

	gameserver.RegisterKingdomServiceServer(grpcServer, gameserver.NewServer(gameManager))

	// Register health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(gameserver.KingdomServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Register reflection service for debugging
	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")

		// Set health status to NOT_SERVING so load balancers drain us
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(gameserver.KingdomServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(seconds(srvCfg.GracefulShutdownDelay))

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("Failed to serve")
		}
	}

	monitor.Stop()
	gameManager.Close()
	log.Info().
		Int("peak_goroutines", monitor.GetMetrics().Peak).
		Msg("Server shutdown complete")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	event := log.Info()
	if code == codes.Internal || code == codes.Unknown {
		event = log.Error()
	}
	event.
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("gRPC call")

	return resp, err
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}
