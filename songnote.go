// Package songnote is the core of a "send a song with a message" client:
// it persists messages addressed to a named recipient, serves a live feed
// and ad-hoc search over them, and resolves track metadata from the
// external music service. The UI layer talks to it only through the
// services exposed on Core.
package songnote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"songnote/feed"
	"songnote/internal"
	"songnote/repositories"
	"songnote/services"
	"songnote/spotify"
)

// Core owns the stores and wires the services the UI consumes.
type Core struct {
	Messages *services.MessageService
	Search   *services.SearchService
	Feed     *services.FeedService
	Tracks   *services.TrackService

	log   *slog.Logger
	db    *badger.DB
	index *bluge.Writer
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (internal.Config, error) {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return internal.Config{}, fmt.Errorf("config error: %w", err)
	}
	return config, nil
}

// Open builds a ready-to-use Core. The caller must Close it to release
// the store locks and flush buffers.
func Open(config internal.Config) (*Core, error) {
	logger := internal.LoggerFromLevel(config.LogLevel)
	ctx := context.Background()

	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := 8081
		endpoint := "/inspect"
		logger.Info("Debug store inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", debugPort, endpoint))
		internal.StartDebugServer(db, debugPort, endpoint)
	}

	index, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}

	repository := repositories.NewMessageRepository(db, index, logger)
	hub := feed.NewHub(repository, logger)

	httpClient := &http.Client{Timeout: config.HTTPTimeout}
	tokens := spotify.NewTokenSource(config.SpotifyAuthURL, config.SpotifyClientID,
		config.SpotifyClientSecret, httpClient, logger)

	clientOpts := []spotify.Option{spotify.WithHTTPClient(httpClient)}
	if config.SpotifyAPIURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(config.SpotifyAPIURL))
	}
	client := spotify.NewClient(tokens, logger, clientOpts...)

	return &Core{
		Messages: services.NewMessageService(repository, hub, logger),
		Search:   services.NewSearchService(repository, logger),
		Feed:     services.NewFeedService(hub),
		Tracks:   services.NewTrackService(client),
		log:      logger,
		db:       db,
		index:    index,
	}, nil
}

// Close releases the index and the database. Safe to call once Core is
// no longer in use; open feed subscriptions should be closed first.
func (c *Core) Close() error {
	c.log.Info("Closing stores...")
	indexErr := c.index.Close()
	dbErr := c.db.Close()
	if indexErr != nil {
		return indexErr
	}
	return dbErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
