package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	ErrNoFrame        = errors.New("loop: frame function is required")
	ErrAlreadyStarted = errors.New("loop: start called multiple times")
	ErrNotStarted     = errors.New("loop: not started")
	ErrStopped        = errors.New("loop: stopped")
)

const (
	defaultFPS       = 60
	defaultQueueSize = 1024
)

// FrameFunc は1フレーム分の処理です。dt は前回のフレームからの経過時間です。
type FrameFunc func(ctx context.Context, dt time.Duration)

// Task は他のゴルーチンからループスレッドに渡される処理です。
type Task func(ctx context.Context)

// Config はループの設定です。
type Config struct {
	Frame     FrameFunc
	FPS       int
	QueueSize int
	Logger    *slog.Logger
}

// Loop は固定FPSのフレームと投入されたタスクを1つのゴルーチンで順に実行します。
// Frame と Task が同時に走ることはありません。
type Loop struct {
	frame    FrameFunc
	interval time.Duration
	queue    chan Task
	logger   *slog.Logger

	started atomic.Bool
	stopped atomic.Bool
	frames  atomic.Uint64

	stop chan struct{}
	done chan struct{}
}

func New(cfg Config) (*Loop, error) {
	if cfg.Frame == nil {
		return nil, ErrNoFrame
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = defaultFPS
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		frame:    cfg.Frame,
		interval: time.Second / time.Duration(fps),
		queue:    make(chan Task, queueSize),
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start はループを起動します。1回だけ呼べます。
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.InfoContext(ctx, "loop: context cancelled, shutting down", "err", ctx.Err(), "frames", l.frames.Load())
			return
		case <-l.stop:
			l.drain(ctx)
			l.logger.InfoContext(ctx, "loop: stopped", "frames", l.frames.Load())
			return
		case task := <-l.queue:
			task(ctx)
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			l.frame(ctx, dt)
			l.frames.Add(1)
		}
	}
}

// drain は停止時点で積まれているタスクを実行します。
func (l *Loop) drain(ctx context.Context) {
	for {
		select {
		case task := <-l.queue:
			task(ctx)
		default:
			return
		}
	}
}

// Submit はタスクをループスレッドで実行するよう積みます。
func (l *Loop) Submit(ctx context.Context, task Task) error {
	if !l.started.Load() {
		return ErrNotStarted
	}
	if l.stopped.Load() {
		return ErrStopped
	}
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stop:
		return ErrStopped
	case <-l.done:
		return ErrStopped
	case l.queue <- task:
		return nil
	}
}

// Stop は積まれたタスクを実行し終えてからループを終了させます。
func (l *Loop) Stop(ctx context.Context) error {
	if !l.stopped.CompareAndSwap(false, true) {
		return ErrStopped
	}
	close(l.stop)
	if !l.started.Load() {
		return nil
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainTimeout は timeout を上限に Stop します。
func (l *Loop) DrainTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Stop(ctx)
}

// Done はループのゴルーチンが終了すると close されます。
func (l *Loop) Done() <-chan struct{} { return l.done }

// Frames は実行済みのフレーム数です。
func (l *Loop) Frames() uint64 { return l.frames.Load() }
