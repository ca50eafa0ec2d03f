// Command handfootd serves Hand and Foot games over websockets.
package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/boztalay/handandfoot/internal/config"
	"github.com/boztalay/handandfoot/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := log.New()
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("parsing log level: %v", err)
	}
	logger.SetLevel(level)

	s := server.New(cfg, logger)
	logger.WithField("addr", cfg.ListenAddr).Info("listening")
	if err := http.ListenAndServe(cfg.ListenAddr, s.Handler()); err != nil {
		logger.Fatal(err)
	}
}
