package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"ewintr.nl/vidfeed/catalog"
	"ewintr.nl/vidfeed/feed"
	"ewintr.nl/vidfeed/fetcher"
	"ewintr.nl/vidfeed/handler"
	"ewintr.nl/vidfeed/model"
	"ewintr.nl/vidfeed/storage"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	configDir := getParam("VIDFEED_CONFIG_DIR", defaultConfigDir())
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		logger.Error("unable to create config dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sqlite, err := storage.NewSqlite(getParam("VIDFEED_DB_FILE", filepath.Join(configDir, "vidfeed.db")))
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlite.Close()

	fetchInterval, err := time.ParseDuration(getParam("FETCH_INTERVAL", "15m"))
	if err != nil {
		logger.Error("unable to parse fetch interval", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opml := feed.NewOPML(getParam("VIDFEED_OPML_FILE", filepath.Join(configDir, "vidfeed.opml")))
	cache := catalog.NewDurationCache(storage.NewSqliteMetadataRepository(sqlite), logger)
	videoSet := catalog.NewCatalog(
		storage.NewSqliteSeenRepository(sqlite),
		storage.NewSqlitePlaylistRepository(sqlite),
		cache,
		logger,
	)

	feedFetcher := fetcher.NewFeedFetcher(15*time.Second, logger)
	parser := fetcher.NewParser()
	resolver := fetcher.NewYtDlp(getParam("VIDFEED_YTDLP_CMD", "yt-dlp"), 15*time.Second, logger)
	enricher := catalog.NewEnricher(resolver, cache, logger)

	refresh := func() {
		urls, err := opml.URLs()
		if err != nil {
			logger.Error("unable to load feed list", slog.String("error", err.Error()))
			return
		}

		feeds := []*model.ChannelFeed{}
		for _, result := range feedFetcher.FetchAll(ctx, urls) {
			if !result.OK {
				continue
			}
			cf, err := parser.Parse(result.Document)
			if err != nil {
				logger.Error("unable to parse feed", slog.String("url", result.URL), slog.String("error", err.Error()))
				continue
			}
			feeds = append(feeds, cf)
		}

		if err := videoSet.Refresh(feeds); err != nil {
			logger.Error("unable to refresh catalog", slog.String("error", err.Error()))
			return
		}
		resolved := enricher.Enrich(ctx, videoSet)
		logger.Info("refresh done", slog.Int("feeds", len(feeds)), slog.Int("resolved", resolved))
	}

	go func() {
		refresh()
		ticker := time.NewTicker(fetchInterval)
		for range ticker.C {
			refresh()
		}
	}()
	logger.Info("feed refresh started", slog.String("interval", fetchInterval.String()))

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), handler.NewServer(videoSet, opml, logger))
	logger.Info("http server started", slog.Int("port", port))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vidfeed"
	}

	return filepath.Join(home, ".config", "vidfeed")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}

	return def
}
