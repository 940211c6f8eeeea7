package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/buildvote/bot/internal/adapters/discord"
	"github.com/buildvote/bot/internal/adapters/handler/http"
	"github.com/buildvote/bot/internal/adapters/repository/postgres"
	"github.com/buildvote/bot/internal/config"
	"github.com/buildvote/bot/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.Database.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	tokenRepo := postgres.NewTokenRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	stateRepo := postgres.NewStateRepository(db)

	// Services
	gateway := discord.NewGateway(session)
	sessionService := services.NewSessionService(sessionRepo, stateRepo, logger)
	tokenService := services.NewTokenService(tokenRepo, logger)
	voteService := services.NewVoteService(voteRepo, sessionService, gateway, cfg.ChannelPrefix, logger)

	if err := sessionService.Init(ctx); err != nil {
		log.Fatal(err)
	}

	bot := discord.NewBot(session, cfg.Discord.AppID, cfg.Discord.GuildID, tokenService, voteService, logger)
	if err := bot.Start(); err != nil {
		log.Fatal(err)
	}
	defer bot.Stop()

	poller := services.NewTallyPoller(voteRepo, gateway, cfg.TallyInterval, logger)
	go poller.Run(ctx, bot.Ready())

	var server *stdhttp.Server
	if cfg.HTTPAddr != "" {
		statusHandler := http.NewStatusHandler(db, voteService, tokenService)
		server = &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: http.NewHandler(statusHandler)}
		go func() {
			logger.Info("status api listening", "addr", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				log.Fatal(err)
			}
		}()
	}

	logger.Info("bot is running")
	<-ctx.Done()
	logger.Info("shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down status api", "error", err)
		}
	}
}
