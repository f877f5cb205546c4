package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/azlyth/irlcord/pkg/irlcord/api"
	"github.com/azlyth/irlcord/pkg/irlcord/auth"
	"github.com/azlyth/irlcord/pkg/irlcord/circles"
	"github.com/azlyth/irlcord/pkg/irlcord/commands"
	"github.com/azlyth/irlcord/pkg/irlcord/config"
	"github.com/azlyth/irlcord/pkg/irlcord/database"
	"github.com/azlyth/irlcord/pkg/irlcord/discord"
	"github.com/azlyth/irlcord/pkg/irlcord/events"
	"github.com/azlyth/irlcord/pkg/irlcord/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.StringP("config", "c", "", "path to the YAML config file (default $"+config.PathEnv+")")
	issueKey := flag.String("issue-api-key", "", "create an API key with this description, print it and exit")
	issueToken := flag.String("issue-token", "", "print a JWT for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 30*24*time.Hour, "lifetime of tokens printed by --issue-token")
	flag.Parse()

	if err := run(*configPath, *issueKey, *issueToken, *tokenTTL); err != nil {
		fmt.Fprintf(os.Stderr, "irlcord: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, issueKey, issueToken string, tokenTTL time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger, logFile, err := newLogger(level, os.Stderr, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	db, err := database.Connect(cfg.General.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close(db)
	logger.Info("database ready", "path", cfg.General.DatabasePath)

	tokens := auth.NewTokens(cfg.HTTP.JWTSecret)
	switch {
	case issueKey != "":
		key, _, err := auth.IssueAPIKey(db, issueKey)
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	case issueToken != "":
		token, err := tokens.GenerateToken(issueToken, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var (
		platform commands.Platform
		bot      *discord.Bot
	)
	if cfg.General.BotToken != "" {
		bot, err = discord.New(cfg.General.BotToken, cfg.General.GuildID, logger)
		if err != nil {
			return err
		}
		platform = bot
	} else {
		logger.Warn("no bot token configured, chat side effects are local only")
		platform = commands.NewLocalPlatform(logger)
	}

	repo := store.New(db)
	dispatcher := commands.NewDispatcher(repo, platform,
		circles.NewEngine(repo, platform, logger),
		events.NewEngine(repo, platform, logger, events.WithLocation(loc)),
		commands.Options{
			Phrases: cfg.Commands.Phrases(),
			Terms:   cfg.Terminology.Terms(),
			Admins:  cfg.General.AdminUserIDs,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if bot != nil {
		bot.Attach(dispatcher)
		if err := bot.Start(); err != nil {
			return err
		}
		defer bot.Stop()
		logger.Info("bot is running")
	}

	var srv *http.Server
	serveErr := make(chan error, 1)
	if cfg.HTTP.Enabled {
		srv = newServer(cfg.HTTP.Addr, api.NewHandler(repo, dispatcher, loc, logger), tokens, db, logger)
		go func() {
			logger.Info("starting HTTP server", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	if bot == nil && srv == nil {
		return errors.New("nothing to run: set a bot token or enable the HTTP API")
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}
	return nil
}

func newServer(addr string, h *api.Handler, tokens *auth.Tokens, db *gorm.DB, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	return &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(h, tokens, db, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
