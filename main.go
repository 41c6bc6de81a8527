package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hanoitower/go-server/internal/config"
	"github.com/hanoitower/go-server/internal/db"
	"github.com/hanoitower/go-server/internal/httpserver"
	"github.com/hanoitower/go-server/internal/scores"
	"github.com/hanoitower/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Warn().Err(err).Msg("config file not loaded, using defaults")
		cfg = config.DefaultConfig()
	}

	database, err := db.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed to open database")
	}
	if err := db.Migrate(database); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	sc := scores.NewStore(database, cfg.Game.Disks, cfg.Store.MaxRows, cfg.Store.MaxPerOriginHour)
	srv := httpserver.New(store.NewMemoryStore(), sc, cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Int("disks", cfg.Game.Disks).Msg("starting hanoi server")
	if err := srv.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
