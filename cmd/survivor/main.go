package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberline/survivor/internal/audio"
	"github.com/emberline/survivor/internal/config"
	"github.com/emberline/survivor/internal/data"
	spectate "github.com/emberline/survivor/internal/net"
	"github.com/emberline/survivor/internal/render"
	"github.com/emberline/survivor/internal/scripting"
	"github.com/emberline/survivor/internal/session"
	"github.com/emberline/survivor/internal/system"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(cfgPath string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             Survivor  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mconfig:\033[0m %s\n\n", cfgPath)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func run() error {
	// 1. Load config
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfgPath)

	// 3. Content tables and difficulty scripts
	content := data.DefaultContent()
	if cfg.Content.Path != "" {
		content, err = data.LoadContent(cfg.Content.Path)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}
		printOK(fmt.Sprintf("content: %d hostile templates", len(content.Hostiles)))
	}

	var difficulty system.Difficulty = system.FlatDifficulty{}
	if cfg.Content.Scripts != "" {
		engine, err := scripting.NewEngine(cfg.Content.Scripts, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer engine.Close()
		difficulty = engine
		printOK("difficulty scripts loaded")
	}

	// 4. Spectator
	var spectators *spectate.Server
	if cfg.Spectator.Enabled {
		spectators = spectate.NewServer(8, log)
		if err := spectators.Listen(cfg.Spectator.BindAddress); err != nil {
			return fmt.Errorf("spectator: %w", err)
		}
		printOK(fmt.Sprintf("spectators on ws://%s/ws", spectators.Addr()))
	}

	// 5. Terminal
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()
	term := render.NewTerminal(screen)

	// 6. Session
	sess, err := session.New(session.Options{
		Config:     cfg,
		Content:    content,
		Attacher:   term,
		Difficulty: difficulty,
		Log:        log,
	})
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer sess.Dispose()

	if cfg.Audio.Enabled {
		cues := audio.NewCuePlayer(cfg.Audio, log)
		if err := cues.Initialize(); err != nil {
			log.Warn("audio disabled", zap.Error(err))
		} else {
			cues.Attach(sess.Bus())
			defer cues.Close()
		}
	}

	if err := sess.Start(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := sess.StartDriver(ctx); err != nil {
		return fmt.Errorf("frame driver: %w", err)
	}
	log.Info("session running", zap.Int("frame_rate", cfg.Session.FrameRate))

	// 7. Input
	in := newInput(sess)
	go in.poll(screen, cancel)

	// 8. Draw and publish until quit
	drawTicker := time.NewTicker(cfg.Session.FrameInterval())
	defer drawTicker.Stop()

	var publish <-chan time.Time
	if spectators != nil {
		pt := time.NewTicker(cfg.Spectator.Interval)
		defer pt.Stop()
		publish = pt.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			sess.StopDriver()
			if spectators != nil {
				shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
				if err := spectators.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
					log.Warn("spectator shutdown", zap.Error(err))
				}
				done()
			}
			return nil

		case now := <-drawTicker.C:
			in.release(now)
			term.Draw(hudFrom(sess.Snapshot()))

		case <-publish:
			if err := spectators.Publish(sess.Snapshot()); err != nil {
				log.Warn("spectator publish", zap.Error(err))
			}
		}
	}
}

func hudFrom(snap session.Snapshot) render.HUD {
	hud := render.HUD{
		Player:    snap.Player,
		HP:        snap.HP,
		MaxHP:     snap.MaxHP,
		XP:        snap.XP,
		NextXP:    snap.NextXP,
		HeroLevel: snap.HeroLevel,
		Level:     snap.Level,
		Kills:     snap.Kills,
		Clock:     snap.Clock,
		State:     snap.State,
	}
	for _, z := range snap.Zones {
		hud.Zones = append(hud.Zones, z.Radius)
	}
	return hud
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	// the terminal owns stdout/stderr once the screen is up
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
		if cfg.Format != "json" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}

	return zapCfg.Build()
}
