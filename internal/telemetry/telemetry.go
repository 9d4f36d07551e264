package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config はログとトレースの出力先です。
type Config struct {
	ServiceName string
	Level       slog.Level
	// OTLPEndpoint が空ならログはテキストで Writer に出すだけで、トレースは記録しません。
	OTLPEndpoint string
	Writer       io.Writer
}

// Telemetry は構築したロガーと終了処理を持ちます。
type Telemetry struct {
	Logger    *slog.Logger
	shutdowns []func(context.Context) error
}

// Setup は slog のハンドラと OpenTelemetry のプロバイダを組み立てます。
// OTLP を使う場合はトレーサープロバイダをグローバルに登録します。
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	if cfg.OTLPEndpoint == "" {
		return &Telemetry{Logger: slog.New(text)}, nil
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	logExporter, err := otlploggrpc.New(ctx, otlploggrpc.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create log exporter: %w", err), tp.Shutdown(ctx))
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	bridge := &levelHandler{
		level:   cfg.Level,
		Handler: otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(lp)),
	}
	return &Telemetry{
		Logger:    slog.New(teeHandler{text, bridge}),
		shutdowns: []func(context.Context) error{tp.Shutdown, lp.Shutdown},
	}, nil
}

// Shutdown は未送信のスパンとログを送り出してからエクスポーターを閉じます。
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range t.shutdowns {
		errs = append(errs, fn(ctx))
	}
	t.shutdowns = nil
	return errors.Join(errs...)
}

// levelHandler は下位ハンドラの前に最低レベルで絞り込みます。
type levelHandler struct {
	level slog.Leveler
	slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.Handler.Enabled(ctx, level)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}

// teeHandler は1つのレコードを複数のハンドラに渡します。
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
