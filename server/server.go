package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gorilla/mux"

	"cortlandcast/config"
	"cortlandcast/core/artwork"
	"cortlandcast/core/player"
	"cortlandcast/core/state"
	"cortlandcast/logger"
	"cortlandcast/metrics"
)

// Start wires the bridge together and runs the HTTP server until an
// interrupt arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
	})

	store, err := artwork.NewStore(cfg.ArtworkCacheDir)
	if err != nil {
		logger.Fatal("artwork cache init failed", logger.ErrorField(err))
	}

	adapter := player.NewAdapter(cfg.ScriptTimeout, cfg.PlaylistTrackLimit)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	profiles := &artwork.ITunesProfileResolver{
		Client:    httpClient,
		SearchURL: cfg.ArtistLookupURL,
	}
	resolver := artwork.NewResolver(store, adapter, profiles, httpClient, cfg.ArtworkDefaultSize)

	hub := state.NewHub()
	tracker := state.NewTracker()
	poller := state.NewPoller(adapter, tracker, hub, cfg.PollInterval)

	pollCtx, stopPoller := context.WithCancel(context.Background())
	go poller.Run(pollCtx)

	scheduler := startCachePruner(store)

	apiHandler := NewAPIHandler(adapter, hub, resolver, store, cfg)
	router := newRouter(apiHandler)

	server := &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket connections outlive any fixed write timeout
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.BindAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down")

	stopPoller()
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			logger.Warn("scheduler shutdown failed", logger.ErrorField(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// corsMiddleware wraps the whole router so preflight requests are
// answered even for routes registered with a single method.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// newRouter builds the route table with the CORS middleware applied.
func newRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()

	// Live updates
	router.HandleFunc("/ws", h.WebSocketHandler)

	// Player state and transport
	router.HandleFunc("/now_playing", h.NowPlayingHandler).Methods(http.MethodGet)
	router.HandleFunc("/play", h.PlayHandler).Methods(http.MethodPost)
	router.HandleFunc("/resume", h.simpleCommandHandler(h.adapter.Resume)).Methods(http.MethodPost)
	router.HandleFunc("/pause", h.simpleCommandHandler(h.adapter.Pause)).Methods(http.MethodPost)
	router.HandleFunc("/playpause", h.simpleCommandHandler(h.adapter.PlayPause)).Methods(http.MethodPost)
	router.HandleFunc("/stop", h.simpleCommandHandler(h.adapter.Stop)).Methods(http.MethodPost)
	router.HandleFunc("/next", h.simpleCommandHandler(h.adapter.Next)).Methods(http.MethodPost)
	router.HandleFunc("/previous", h.simpleCommandHandler(h.adapter.Previous)).Methods(http.MethodPost)
	router.HandleFunc("/set_volume", h.SetVolumeHandler).Methods(http.MethodPost)
	router.HandleFunc("/shuffle", h.SetShuffleHandler).Methods(http.MethodPost)
	router.HandleFunc("/repeat", h.SetRepeatHandler).Methods(http.MethodPost)
	router.HandleFunc("/seek", h.SeekHandler).Methods(http.MethodPost)
	router.HandleFunc("/power_off", h.simpleCommandHandler(h.adapter.PowerOff)).Methods(http.MethodPost)
	router.HandleFunc("/restart_music", h.simpleCommandHandler(h.adapter.RestartMusic)).Methods(http.MethodPost)

	// Library browsing
	router.HandleFunc("/albums", h.AlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/artists", h.ArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/playlists", h.PlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/album_tracks", h.AlbumTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/artist_albums", h.ArtistAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/playlist_tracks", h.PlaylistTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/search", h.SearchHandler).Methods(http.MethodGet)

	// Artwork
	router.HandleFunc("/artwork", h.CurrentArtworkHandler).Methods(http.MethodGet)
	router.HandleFunc("/album_artwork", h.AlbumArtworkHandler).Methods(http.MethodGet)
	router.HandleFunc("/artist_artwork", h.ArtistArtworkHandler).Methods(http.MethodGet)
	router.HandleFunc("/playlist_artwork", h.PlaylistArtworkHandler).Methods(http.MethodGet)
	router.HandleFunc("/artwork/cache/clear", h.ClearArtworkCacheHandler).Methods(http.MethodPost)

	// AirPlay outputs
	router.HandleFunc("/airplay/devices", h.AirPlayDevicesHandler).Methods(http.MethodGet)
	router.HandleFunc("/airplay/set_active", h.AirPlaySetActiveHandler).Methods(http.MethodPost)
	router.HandleFunc("/airplay/set_volume", h.AirPlaySetVolumeHandler).Methods(http.MethodPost)

	// Operations
	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return corsMiddleware(router)
}

// startCachePruner schedules the hourly sweep that evicts stale
// playlist mosaics. The server runs without it if scheduling fails.
func startCachePruner(store *artwork.Store) gocron.Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Warn("scheduler init failed", logger.ErrorField(err))
		return nil
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			pruned, err := store.PruneStale()
			if err != nil {
				logger.Warn("cache prune failed", logger.ErrorField(err))
				return
			}
			if pruned > 0 {
				logger.Info("pruned stale artwork", logger.Int("entries", pruned))
			}
		}),
	)
	if err != nil {
		logger.Warn("prune job registration failed", logger.ErrorField(err))
		return nil
	}

	scheduler.Start()
	return scheduler
}
