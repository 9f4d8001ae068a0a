package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/refinery/internal/services"
	"github.com/desertthunder/refinery/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// Optional: credentials can come from a .env file instead of config.toml.
	godotenv.Load()

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load config, using defaults: %v", err)
		}
	}

	if config.Credentials.Spotify.ClientID == "" {
		config.Credentials.Spotify.ClientID = os.Getenv("SPOTIFY_ID")
	}
	if config.Credentials.Spotify.ClientSecret == "" {
		config.Credentials.Spotify.ClientSecret = os.Getenv("SPOTIFY_SECRET")
	}

	var spotifyService services.Service
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		} else {
			logger.Warnf("failed to create Spotify service: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Spotify:    spotifyService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "refinery",
		Usage:    "Curate Spotify playlists: find duplicate recordings and era outliers, delete with confirmation",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrQuit) {
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
