package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"woof/internal/breedlist"
	"woof/internal/db"
	"woof/internal/dogceo"
	"woof/internal/gallery"
	"woof/internal/logfields"
	"woof/internal/metrics"
	"woof/internal/preview"
	"woof/internal/ui"
	"woof/internal/usecase"
	"woof/internal/util"
)

const previewCacheSize = 64

// App is the wired application.
type App struct {
	Model    ui.Model
	Breeds   *breedlist.ViewModel
	DB       io.Closer
	Logger   *slog.Logger
	Recorder *metrics.PrometheusRecorder
}

// Run wires every component from config and runs the TUI until it exits.
func Run(config *Config) error {
	logger, logFile, err := newLogger(config.LogFile, config.Verbose)
	if err != nil {
		return err
	}
	defer logFile.Close()

	app, err := Build(config, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	var srv *http.Server
	if config.MetricsAddr != "" {
		srv = startMetricsServer(config.MetricsAddr, app.Recorder.Handler(), logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	p := tea.NewProgram(app.Model, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(ui.Model); ok {
		m.Shutdown()
	}
	if err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// Build creates the collaborators and the root UI model.
func Build(config *Config, logger *slog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	client := dogceo.NewClient(config.APIURL, config.HTTPTimeout)
	logger.Info("starting", slog.String("api", client.BaseURL()), slog.String("db", config.DBPath))
	locale := util.ParseLocale(config.Locale)
	breeds := usecase.NewBreeds(client,
		usecase.WithConcurrency(config.FetchConcurrency),
		usecase.WithLocale(locale),
		usecase.WithRecorder(recorder),
		usecase.WithLogger(logger),
	)
	images := usecase.NewImages(client,
		usecase.WithRecorder(recorder),
		usecase.WithLogger(logger),
	)

	loader, err := preview.NewLoader(config.HTTPTimeout, previewCacheSize, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview loader: %w", err)
	}

	database, err := db.Open(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	breedsVM := breedlist.New(breeds, breedlist.Options{
		GracePeriod: config.GracePeriod,
		Logger:      logger,
		Recorder:    recorder,
	})
	galleryOpts := gallery.Options{
		ImageCount:  config.ImageCount,
		GracePeriod: config.GracePeriod,
		Logger:      logger,
		Recorder:    recorder,
	}

	m, err := ui.New(ui.Deps{
		DB:     database,
		Breeds: breedsVM,
		NewGallery: func(breedKey string) *gallery.ViewModel {
			return gallery.New(images, breedKey, galleryOpts)
		},
		Preview:  loader,
		TermCaps: ui.DetectTerminalCapabilities(),
		Logger:   logger,
	})
	if err != nil {
		breedsVM.Close()
		database.Close()
		return nil, err
	}

	return &App{
		Model:    m,
		Breeds:   breedsVM,
		DB:       database,
		Logger:   logger,
		Recorder: recorder,
	}, nil
}

// Close stops the breed list and closes the database.
func (a *App) Close() error {
	a.Breeds.Close()
	return a.DB.Close()
}

func newLogger(path string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, f, nil
}

func startMetricsServer(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logfields.Error(err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))
	return srv
}
