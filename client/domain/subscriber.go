package domain

import (
	"sync"
)

// Unsubscribe は購読を解除します。複数回呼んでも安全です。
type Unsubscribe func()

// handlerSet は購読順を保ったハンドラの登録簿です。
// 登録と解除は任意のゴルーチンから、呼び出しはループスレッドから行います。
type handlerSet[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

func (h *handlerSet[T]) add(fn func(T)) Unsubscribe {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.handlers = append(h.handlers, subscription[T]{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *handlerSet[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.handlers {
		if s.id == id {
			h.handlers = append(h.handlers[:i:i], h.handlers[i+1:]...)
			return
		}
	}
}

// emit は呼び出し時点のハンドラ一覧に値を配送します。
// ハンドラ内での登録・解除は次回の emit から反映されます。
func (h *handlerSet[T]) emit(v T) int {
	h.mu.Lock()
	snapshot := h.handlers
	h.mu.Unlock()
	for _, s := range snapshot {
		s.fn(v)
	}
	return len(snapshot)
}
