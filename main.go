package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/game"
	"github.com/pthm-cable/outpost/telemetry"
	"github.com/pthm-cable/outpost/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output per-wave stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	waves := flag.Int("waves", 0, "Stop after N waves (0 = until the game ends)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	serve := flag.String("serve", "", "Address to serve the wave stats websocket on, e.g. :8080 (empty = off)")
	hallPath := flag.String("hall-of-fame", "", "hall_of_fame.json from an earlier run to seed the population")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
		AutoWaves:      *headless,
	}

	if *hallPath != "" {
		hall, err := telemetry.LoadHallOfFameFromFile(*hallPath, cfg.Telemetry.HallOfFameSize, rand.New(rand.NewSource(rngSeed+3)))
		if err != nil {
			slog.Error("failed to load hall of fame", "error", err)
			os.Exit(1)
		}
		opts.HallOfFame = hall
	}

	if *serve != "" {
		hub := telemetry.NewHub(cfg.Telemetry.HubBuffer)
		go hub.Run(ctx)
		opts.Hub = hub
		startServer(ctx, *serve, hub)
	}

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	limitReached := func() bool {
		if *waves > 0 && g.LastWave().Wave >= *waves {
			slog.Info("wave limit reached", "waves", *waves, "tick", g.Tick())
			return true
		}
		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return true
		}
		return ctx.Err() != nil
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"waves", *waves,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for !g.Over() && !limitReached() {
			g.UpdateHeadless()
		}
		slog.Info("simulation finished", "over", g.Over(), "won", g.Won(), "waves", g.LastWave().Wave, "tick", g.Tick())
		return
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Outpost")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	view := ui.NewView(g)
	defer view.Unload()

	for !rl.WindowShouldClose() {
		view.HandleInput()
		g.Update()
		view.Draw()

		// The final screen stays up after the game ends
		if limitReached() {
			break
		}
	}
}

// startServer serves the hub at /ws until ctx is cancelled.
func startServer(ctx context.Context, addr string, hub *telemetry.Hub) {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("websocket server listening", "addr", addr, "path", "/ws")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("websocket server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("websocket server shutdown", "error", err)
		}
	}()
}
