package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/overload/internal/config"
	overloadmcp "github.com/claude/overload/internal/mcp"
	"github.com/claude/overload/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "Overload server URL; when set, data is read over HTTP instead of from the database")
	login := flag.String("user", "", "tailnet login to scope local queries to (default: local user)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("overload-mcp", Version)
		return
	}

	// stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := context.Background()
	userID := storage.LocalUser
	var ds overloadmcp.DataSource

	if *serverURL != "" {
		ds = overloadmcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if *login != "" {
			userID, err = db.GetOrCreateUser(ctx, *login, *login)
			if err != nil {
				log.Error("failed to resolve user", "login", *login, "error", err)
				os.Exit(1)
			}
		}
		ds = db
		log.Info("local mode", "user_id", userID)
	}

	s := overloadmcp.New(ds, Version, log)
	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return overloadmcp.WithUserID(ctx, userID)
	}))
	if err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
