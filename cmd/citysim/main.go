// Command citysim runs the city event simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/talgya/city-events/internal/agents"
	"github.com/talgya/city-events/internal/catalog"
	"github.com/talgya/city-events/internal/config"
	"github.com/talgya/city-events/internal/engine"
	"github.com/talgya/city-events/internal/entropy"
	"github.com/talgya/city-events/internal/events"
	"github.com/talgya/city-events/internal/hostsched"
	"github.com/talgya/city-events/internal/persistence"
	"github.com/talgya/city-events/internal/world"
)

func main() {
	// A .env file may set CITYSIM_CONFIG; the environment wins over it.
	_ = godotenv.Load()
	defaultConfig := os.Getenv("CITYSIM_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "data/citysim.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to the YAML config (env CITYSIM_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("city events simulation",
		"config", *configPath,
		"seed", cfg.Seed,
		"procedural", cfg.Events.ProceduralEnabled,
	)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Event catalog ────────────────────────────────────────────────
	templates := catalog.LoadOrEmpty(cfg.CatalogDir)
	slog.Debug("event classes", "classes", templates.Classes())

	// ── City (regenerated from the seed on every start) ──────────
	gen := world.DefaultGenConfig()
	gen.Seed = cfg.Seed
	gen.Radius = cfg.CityRadius
	city := world.Generate(gen)
	for svc, n := range city.ServiceCounts() {
		slog.Debug("buildings", "service", world.ServiceName(svc), "count", n)
	}

	// ── Clock, host scheduler, event engine ──────────────────────────
	eng := engine.NewEngine(cfg.Epoch)
	eng.Speed = cfg.Speed
	eng.Interval = cfg.TickInterval

	rng := entropy.New(cfg.Seed + 500)
	if cfg.Seed == 0 {
		rng = entropy.NewRandom()
	}
	host := hostsched.NewScheduler(city, cfg.Seed)
	mgr := events.NewManager(cfg.Events, templates, city, host, eng, rng)
	defer mgr.Close()

	// ── Citizens ─────────────────────────────────────────────────────
	spawner := agents.NewSpawner(cfg.Seed)
	var citizens []*agents.Citizen

	if db.HasWorldState() {
		slog.Info("found saved world state, loading...")
		eng.Tick = db.LastTick()

		citizens, err = db.LoadCitizens()
		if err != nil {
			slog.Error("failed to load citizens", "error", err)
			os.Exit(1)
		}
		var maxID agents.CitizenID
		for _, c := range citizens {
			maxID = max(maxID, c.ID)
		}
		spawner.SetNextID(maxID + 1)

		if _, err := db.RestoreEvents(mgr); err != nil {
			// Start with an empty schedule.
			slog.Error("failed to restore events", "error", err)
		}
	} else {
		slog.Info("no saved state found, spawning citizens...")
		citizens = spawner.SpawnPopulation(cfg.Population)
	}

	sim := engine.NewSimulation(city, host, mgr, citizens, eng, rng)
	sim.LastTick = eng.Tick
	sim.HostEventsPerDay = cfg.HostEventsPerDay

	if eng.Tick == 0 {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}
	eng.OnWeek = sim.TickWeek

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%s\n%d citizens, %d event templates.\n", city, len(citizens), templates.Len())
	if eng.Tick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", eng.Tick, engine.SimTime(eng.Now()))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. City state saved.")
}
