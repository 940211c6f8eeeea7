package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/buildvote/bot/internal/adapters/discord"
	"github.com/buildvote/bot/internal/adapters/repository/postgres"
	"github.com/buildvote/bot/internal/config"
	"github.com/buildvote/bot/internal/core/services"
)

// One-shot tally resync over every active vote, for use from cron or by
// hand when the in-process poller has been down.
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

	// REST calls only, no gateway connection needed.
	voteRepo := postgres.NewVoteRepository(db)
	poller := services.NewTallyPoller(voteRepo, discord.NewGateway(session), cfg.TallyInterval, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting tally resync...")

	if err := poller.RunOnce(ctx); err != nil {
		log.Fatalf("Error resyncing tallies: %v", err)
	}

	log.Println("Tally resync completed successfully.")
}
