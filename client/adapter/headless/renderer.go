package headless

import (
	"log/slog"
	"sync"

	"github.com/Nzm15/battle-arena-main/client/application"
	"github.com/Nzm15/battle-arena-main/domain"
)

// LogRenderer は描画の代わりにビジュアルの生成・破棄をログに出し、生存数を数えます。
type LogRenderer struct {
	mu     sync.Mutex
	counts map[application.VisualKind]int
}

func NewLogRenderer() *LogRenderer {
	return &LogRenderer{counts: make(map[application.VisualKind]int)}
}

func (r *LogRenderer) CreateVisual(kind application.VisualKind, h application.Handle, t domain.Transform) {
	r.mu.Lock()
	r.counts[kind]++
	r.mu.Unlock()
	slog.Debug("visual created", "kind", kind, "entity", h, "x", t.X, "y", t.Y, "rotation", t.Rotation)
}

func (r *LogRenderer) DestroyVisual(kind application.VisualKind, h application.Handle) {
	r.mu.Lock()
	if r.counts[kind] > 0 {
		r.counts[kind]--
	}
	r.mu.Unlock()
	slog.Debug("visual destroyed", "kind", kind, "entity", h)
}

// Live は kind のビジュアルのうち破棄されていない数です。
func (r *LogRenderer) Live(kind application.VisualKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// LogAudio は音を鳴らす代わりにログに出します。
type LogAudio struct{}

func (LogAudio) Play(sound application.Sound, loop bool) {
	slog.Debug("play sound", "sound", sound, "loop", loop)
}
