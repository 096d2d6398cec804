package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"catanrig"
	"catanrig/internal/config"
	"catanrig/internal/feed"
	"catanrig/internal/game"
	"catanrig/internal/hardware"
	"catanrig/internal/menu"
	"catanrig/internal/protocol"
	"catanrig/internal/server"
	"catanrig/internal/session"
	"catanrig/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer, stdin io.Reader) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	rng := newRNG(cfg.Seed)

	// --- SQLite ---
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	defer store.Close()
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Game state ---
	state, recorder, err := loadGame(ctx, cfg, rules, rng, store, logger)
	if err != nil {
		return err
	}

	// --- Redis ---
	var publisher *feed.RedisPublisher
	checks := map[string]server.Checker{"sqlite": server.CheckFunc(store.Ping)}
	if cfg.RedisURL != "" {
		rdb, err := feed.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		publisher = feed.NewRedisPublisher(rdb, cfg.RedisChannel)
		checks["redis"] = publisher
		logger.Info("connected to redis", "channel", publisher.Channel())
	}

	// --- Serial link ---
	var link *hardware.Link
	var device *os.File
	if cfg.UARTDevice != "" {
		device, err = os.OpenFile(cfg.UARTDevice, os.O_RDWR, 0)
		if err != nil {
			return fmt.Errorf("opening %s: %w", cfg.UARTDevice, err)
		}
		defer device.Close()
		link = hardware.NewLink(device, cfg.DesertValue, logger)
		logger.Info("opened serial link", "device", cfg.UARTDevice)
	}

	// --- Session ---
	broker := feed.NewBroker()
	var queue *server.ActionQueue
	actions, err := actionSource(cfg, stdin, link, logger)
	if err != nil {
		return err
	}
	if q, ok := actions.(*server.ActionQueue); ok {
		queue = q
	}

	notifier := session.Fanout{hardware.NewConsole(logger), broker}
	sinks := []session.Sink{storage.FileStore{Path: cfg.OutputPath}, recorder, broker}
	if publisher != nil {
		sinks = append(sinks, publisher)
	}
	if link != nil {
		notifier = append(notifier, link)
		sinks = append(sinks, link)
	}

	sess, err := session.New(state, game.NewEngine(rules, rng), session.Options{
		ID:            recorder.GameID,
		Actions:       actions,
		Detector:      hardware.NopDetector{Log: logger},
		Notifier:      notifier,
		Sinks:         sinks,
		MaxTurns:      cfg.MaxTurns,
		ActionTimeout: cfg.ActionTimeout,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if cfg.Resume && sess.Phase() == game.PhasePaused {
		if err := sess.Resume(); err != nil {
			return err
		}
	}
	if err := broker.Record(ctx, state); err != nil {
		return err
	}

	// --- HTTP Server ---
	webFS, err := fs.Sub(catanrig.WebFS, "web")
	if err != nil {
		return fmt.Errorf("viewer files: %w", err)
	}
	srv := server.New(cfg.HTTPAddr, server.Options{
		State:   sess,
		History: recorder,
		Queue:   queue,
		Broker:  broker,
		Checks:  checks,
		Web:     webFS,
		Logger:  logger,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		logger.Info("starting game", "game", recorder.GameID, "phase", sess.Phase(), "source", cfg.ActionSource)
		if err := sess.Run(gctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("game loop: %w", err)
		}
		logger.Info("game loop finished", "phase", sess.Phase())
		return nil
	})

	if link != nil && cfg.ActionSource == config.SourceUART {
		g.Go(func() error {
			return link.Serve(gctx, device, cfg.UARTPoll)
		})
		g.Go(func() error {
			// Closing the device releases the link's blocked read.
			<-gctx.Done()
			return device.Close()
		})
	}

	return g.Wait()
}

func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// loadGame reads the state file, or with RESUME the latest unfinished game
// in the database, or lays out a new game. Anything but a missing state file
// is a configuration error.
func loadGame(ctx context.Context, cfg *config.Config, rules game.Rules, rng *rand.Rand, store *storage.Store, logger *slog.Logger) (*game.State, *storage.Recorder, error) {
	state, err := storage.FileStore{Path: cfg.StatePath}.Load()
	switch {
	case err == nil:
		logger.Info("loaded state", "path", cfg.StatePath, "phase", state.Game.Phase, "turn", state.Game.TurnNumber)
	case errors.Is(err, os.ErrNotExist) && cfg.Resume:
		rec, st, rerr := storage.ResumeLatest(ctx, store)
		if rerr == nil {
			logger.Info("resumed game from database", "game", rec.GameID, "turn", st.Game.TurnNumber)
			return st, rec, nil
		}
		if !errors.Is(rerr, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("resuming game: %w", rerr)
		}
		state = newGame(rules, rng, logger)
	case errors.Is(err, os.ErrNotExist):
		state = newGame(rules, rng, logger)
	default:
		return nil, nil, fmt.Errorf("loading state: %w", err)
	}

	rec, err := storage.StartGame(ctx, store, state)
	if err != nil {
		return nil, nil, fmt.Errorf("recording game: %w", err)
	}
	return state, rec, nil
}

func newGame(rules game.Rules, rng *rand.Rand, logger *slog.Logger) *game.State {
	logger.Info("no state file, starting a new game", "players", game.Palette)
	return game.NewGame(game.Palette, rules, rng)
}

func actionSource(cfg *config.Config, stdin io.Reader, link *hardware.Link, logger *slog.Logger) (session.ActionSource, error) {
	switch cfg.ActionSource {
	case config.SourceConsole:
		if cfg.Interactive {
			return hardware.NewLineSource(stdin, logger), nil
		}
		return hardware.AutoEnd{}, nil
	case config.SourceRemote:
		return server.NewActionQueue(8), nil
	case config.SourceUART:
		return link, nil
	case config.SourceMenu:
		render := func(r *protocol.MenuRender) error { return link.Send(r) }
		return menu.NewSource(hardware.NewKeyInput(stdin), render, logger), nil
	}
	return nil, fmt.Errorf("%w: ACTION_SOURCE %q", config.ErrInvalid, cfg.ActionSource)
}
