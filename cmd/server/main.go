// cmd/server/main.go
package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Zeller74/villain-sub001/internal/auth"
	"github.com/Zeller74/villain-sub001/internal/cache"
	"github.com/Zeller74/villain-sub001/internal/chat"
	"github.com/Zeller74/villain-sub001/internal/config"
	"github.com/Zeller74/villain-sub001/internal/database"
	"github.com/Zeller74/villain-sub001/internal/game"
	"github.com/Zeller74/villain-sub001/internal/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, reading configuration from the environment")
	}
	cfg := config.Load()

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}

	auth.Init(cfg.JWTSecret)

	if err := cache.InitRedis(cfg.RedisURL); err != nil {
		logrus.Warnf("redis unavailable, action audit trail disabled: %v", err)
	}
	if err := database.InitDB(context.Background(), cfg.DatabaseURL); err != nil {
		logrus.Warnf("postgres unavailable, game archival disabled: %v", err)
	}

	srv := handlers.NewServer(game.NewRoomStore(), chat.NewBroker(), cfg.AllowedOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ServeWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logrus.Infof("listening on %s", cfg.Addr())
	logrus.Fatal(http.ListenAndServe(cfg.Addr(), mux))
}
