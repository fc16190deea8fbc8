package main

import (
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/pa-childs/Photo-Album/internal/config"
	"github.com/pa-childs/Photo-Album/internal/library"
	"github.com/pa-childs/Photo-Album/internal/logging"
	"github.com/pa-childs/Photo-Album/internal/server"
	"github.com/pa-childs/Photo-Album/web"
)

func main() {
	cfg, err := config.Load(config.FindConfigFile())
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	// Ensure the sets directory exists
	if err := os.MkdirAll(cfg.SetsDir, 0755); err != nil {
		log.Fatalf("cannot create sets directory %q: %v", cfg.SetsDir, err)
	}

	lib := library.New(cfg.SetsDir)
	logger.Info("serving sets", "dir", cfg.SetsDir, "art_mode", cfg.ArtMode)

	staticFS, err := fs.Sub(web.FS, "static")
	if err != nil {
		log.Fatalf("static assets: %v", err)
	}

	srv, err := server.New(lib, web.FS, server.Options{
		ArtMode:  cfg.ArtMode,
		Logger:   logger,
		StaticFS: staticFS,
	})
	if err != nil {
		log.Fatalf("server setup: %v", err)
	}

	logger.Info("photo-album starting", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
