package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Nzm15/battle-arena-main/utils"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config はクライアントの起動設定です。
type Config struct {
	ServerURL    string
	Room         string
	FPS          int
	JoinTimeout  time.Duration
	IdleTimeout  time.Duration
	InterpAlpha  float64
	QuestionBank string
	AuthToken    string
	LogLevel     slog.Level
	OTLPEndpoint string
	WorldWidth   float64
	WorldHeight  float64
	// Seed が 0 なら乱数の種は起動ごとに変わります。
	Seed uint64
}

// Load は .env ファイル（存在すれば）を読み込んでから環境変数で Config を組み立てます。
// 既に設定されている環境変数は .env で上書きされません。
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		ServerURL:    utils.GetEnvDefault("SERVER_URL", "ws://localhost:2567"),
		Room:         utils.GetEnvDefault("ROOM", "outdoor"),
		QuestionBank: utils.GetEnvDefault("QUESTION_BANK", ""),
		AuthToken:    utils.GetEnvDefault("AUTH_TOKEN", ""),
		OTLPEndpoint: utils.GetEnvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	var errs []error
	var err error
	if cfg.FPS, err = utils.GetEnvInt("FPS", 60); err != nil {
		errs = append(errs, fmt.Errorf("FPS: %w", err))
	}
	if cfg.JoinTimeout, err = utils.GetEnvDuration("JOIN_TIMEOUT", 5*time.Second); err != nil {
		errs = append(errs, fmt.Errorf("JOIN_TIMEOUT: %w", err))
	}
	if cfg.IdleTimeout, err = utils.GetEnvDuration("IDLE_TIMEOUT", 30*time.Second); err != nil {
		errs = append(errs, fmt.Errorf("IDLE_TIMEOUT: %w", err))
	}
	if cfg.InterpAlpha, err = utils.GetEnvFloat("INTERP_ALPHA", 0.5); err != nil {
		errs = append(errs, fmt.Errorf("INTERP_ALPHA: %w", err))
	}
	if cfg.WorldWidth, err = utils.GetEnvFloat("WORLD_WIDTH", 800); err != nil {
		errs = append(errs, fmt.Errorf("WORLD_WIDTH: %w", err))
	}
	if cfg.WorldHeight, err = utils.GetEnvFloat("WORLD_HEIGHT", 600); err != nil {
		errs = append(errs, fmt.Errorf("WORLD_HEIGHT: %w", err))
	}
	seed, err := utils.GetEnvInt("SEED", 0)
	if err != nil {
		errs = append(errs, fmt.Errorf("SEED: %w", err))
	}
	cfg.Seed = uint64(seed)
	if err := cfg.LogLevel.UnmarshalText([]byte(utils.GetEnvDefault("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は値の範囲を確認します。
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: SERVER_URL: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: SERVER_URL scheme must be ws or wss, got %q", ErrInvalidConfig, u.Scheme)
	}
	if strings.TrimSpace(c.Room) == "" {
		return fmt.Errorf("%w: ROOM is empty", ErrInvalidConfig)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: FPS must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("%w: JOIN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.InterpAlpha <= 0 || c.InterpAlpha > 1 {
		return fmt.Errorf("%w: INTERP_ALPHA must be in (0, 1], got %g", ErrInvalidConfig, c.InterpAlpha)
	}
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("%w: world size must be positive", ErrInvalidConfig)
	}
	return nil
}

// FrameInterval は1フレームの長さです。
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
