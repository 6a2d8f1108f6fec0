package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	apiConfig "secrawler/pkg/api/config"
	apiScrape "secrawler/pkg/api/scrape"
	"secrawler/pkg/api/web"
	"secrawler/pkg/core/agent"
	"secrawler/pkg/core/config"
	"secrawler/pkg/core/edgar"
	"secrawler/pkg/core/ingest"
	"secrawler/pkg/core/logging"
	"secrawler/pkg/core/prompt"
	"secrawler/pkg/core/store"
	"secrawler/pkg/core/summary"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.File)
	log := logging.For("main")

	prompts := prompt.NewRegistry()
	if err := prompt.LoadFromDirectory(prompts, cfg.ResourcesDir); err != nil {
		log.WithError(err).Warn("Failed to load prompt library, falling back to built-in prompts")
		prompts = prompt.NewRegistry()
	}

	rc := cfg.Request()
	agentMgr := agent.NewManager(cfg)
	if cfg.Secrets.GeminiKey() == "" && rc.Provider() == "googleai" {
		log.Warn("GOOGLE_GENAI_API_KEY not set; summaries will fail")
	}

	scraper := edgar.NewScraper(ingest.NewFetcher(cfg.Fetch.UserAgent, cfg.Fetch.Timeout))
	requester := summary.NewRequester(agentMgr, prompts, rc, summary.Options{
		AttachContent:   cfg.Summary.AttachContent,
		MaxContentChars: cfg.Summary.MaxContentChars,
	})

	scrapeHandler := apiScrape.NewHandler(scraper, requester, rc.ModelID)
	if cfg.Secrets.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := store.Open(ctx, cfg.Secrets.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("Scrape audit log disabled")
		} else {
			defer pool.Close()
			repo := store.NewRunsRepo(pool)
			if err := repo.EnsureSchema(ctx); err != nil {
				log.WithError(err).Warn("Scrape audit log disabled")
			} else {
				scrapeHandler.SetRecorder(repo)
				log.Info("Scrape audit log enabled")
			}
		}
		cancel()
	}
	configHandler := apiConfig.NewHandler(agentMgr, rc)

	mux := http.NewServeMux()
	mux.HandleFunc("/", web.HandleIndex)
	mux.HandleFunc("/api/scrape", scrapeHandler.HandleScrape)
	mux.HandleFunc("/api/export", scrapeHandler.HandleExport)
	mux.HandleFunc("/api/runs", scrapeHandler.HandleRuns)
	mux.HandleFunc("/api/config", configHandler.HandleConfig)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler(mux)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.WithFields(logrus.Fields{
		"addr":  cfg.Server.Addr,
		"model": rc.ModelID,
	}).Info("API server starting")
	log.Info("  - GET  /")
	log.Info("  - POST /api/scrape")
	log.Info("  - POST /api/export")
	log.Info("  - GET  /api/runs")
	log.Info("  - GET  /api/config")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server failed to start")
	}
}
