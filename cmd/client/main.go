package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nzm15/battle-arena-main/client/adapter/headless"
	adapterwebsocket "github.com/Nzm15/battle-arena-main/client/adapter/websocket"
	"github.com/Nzm15/battle-arena-main/client/application"
	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
	"github.com/Nzm15/battle-arena-main/internal/config"
	"github.com/Nzm15/battle-arena-main/internal/loop"
	"github.com/Nzm15/battle-arena-main/internal/telemetry"
)

const (
	serviceName     = "battle-arena-client"
	spawnPointCount = 8
	shutdownTimeout = 5 * time.Second
)

func main() {
	var (
		envFlag  = flag.String("env", ".env", "dotenv file to load before reading the environment")
		roomFlag = flag.String("room", "", "room to join (overrides ROOM)")
	)
	flag.Parse()

	cfg, err := config.Load(*envFlag)
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if *roomFlag != "" {
		cfg.Room = *roomFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Level:        cfg.LogLevel,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Writer:       os.Stderr,
	})
	if err != nil {
		slog.Error("telemetry setup failed", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(tel.Logger)

	if err := run(ctx, stop, cfg); err != nil {
		slog.ErrorContext(ctx, "client stopped with error", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown failed", "err", err)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config) error {
	bank := application.DefaultQuestionBank()
	if cfg.QuestionBank != "" {
		loaded, err := application.LoadQuestionBank(cfg.QuestionBank)
		if err != nil {
			return err
		}
		bank = loaded
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	var dialOpts []adapterwebsocket.DialerOption
	if cfg.AuthToken != "" {
		dialOpts = append(dialOpts, adapterwebsocket.WithBearerToken(cfg.AuthToken))
	}
	sm, err := clientdomain.NewSessionManager(adapterwebsocket.NewDialer(dialOpts...), clientdomain.SessionConfig{
		URL:         cfg.ServerURL,
		Token:       cfg.AuthToken,
		JoinTimeout: cfg.JoinTimeout,
		IdleTimeout: cfg.IdleTimeout,
	})
	if err != nil {
		return err
	}

	world := application.NewMap(cfg.WorldWidth, cfg.WorldHeight)
	bot := headless.NewBotInput(rng)
	ui := headless.NewConsoleUI(os.Stdout)
	game, err := application.NewGame(application.GameConfig{
		Map:      world,
		Alpha:    cfg.InterpAlpha,
		Rand:     rng,
		Bank:     bank,
		NPCStart: domain.Position2D{X: cfg.WorldWidth / 2, Y: cfg.WorldHeight / 2},
		Sender:   sm,
		Renderer: headless.NewLogRenderer(),
		Spawns:   headless.NewGridSpawnPoints(cfg.WorldWidth, cfg.WorldHeight, spawnPointCount),
		Input:    bot,
		Audio:    headless.LogAudio{},
		UI:       ui,
	})
	if err != nil {
		return err
	}
	unbind := game.Bind(ctx, sm)
	defer unbind()

	lp, err := loop.New(loop.Config{
		FPS: cfg.FPS,
		Frame: func(ctx context.Context, dt time.Duration) {
			sm.Dispatch(ctx)
			bot.Observe(game.Snapshot())
			game.Update(ctx, dt)
		},
	})
	if err != nil {
		return err
	}
	ui.OnPromptShown = func() {
		submit(ctx, lp, func(ctx context.Context) { game.PromptShown(ctx) })
	}

	if err := lp.Start(ctx); err != nil {
		return err
	}
	submit(ctx, lp, game.Start)

	if err := sm.Connect(ctx, cfg.Room); err != nil {
		lp.DrainTimeout(shutdownTimeout)
		return err
	}
	slog.InfoContext(ctx, "connecting", "url", cfg.ServerURL, "room", cfg.Room, "seed", seed)

	go readConsole(ctx, os.Stdin, lp, game, stop)

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutdown initiated")
	case <-game.Done():
		slog.InfoContext(ctx, "game over", "score", game.Score())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sm.Close(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "session close failed", "err", err)
	}
	if err := lp.Stop(shutdownCtx); err != nil && !errors.Is(err, loop.ErrStopped) {
		slog.ErrorContext(ctx, "loop stop failed", "err", err)
	}
	slog.InfoContext(ctx, "client shutdown complete", "frames", lp.Frames())
	return nil
}

// readConsole は標準入力の操作をループスレッドに渡します。
func readConsole(ctx context.Context, r io.Reader, lp *loop.Loop, game *application.Game, stop context.CancelFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cmd, err := headless.ParseCommand(scanner.Text())
		if err != nil {
			slog.WarnContext(ctx, "ignored console input", "err", err)
			continue
		}
		switch cmd.Kind {
		case headless.CmdQuit:
			stop()
			return
		case headless.CmdRevive:
			submit(ctx, lp, func(ctx context.Context) { game.ChooseRevive(ctx) })
		case headless.CmdDecline:
			submit(ctx, lp, func(ctx context.Context) { game.DeclineRevive(ctx) })
		case headless.CmdAnswer:
			submit(ctx, lp, func(ctx context.Context) { game.SubmitAnswer(ctx, cmd.Index) })
		}
	}
}

func submit(ctx context.Context, lp *loop.Loop, task loop.Task) {
	if err := lp.Submit(ctx, task); err != nil {
		slog.DebugContext(ctx, "task not submitted", "err", err)
	}
}
