package headless

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Nzm15/battle-arena-main/client/application"
)

var ErrUnknownCommand = errors.New("unknown command")

// CommandKind はコンソールから入力された操作の種類です。
type CommandKind uint8

const (
	CmdRevive CommandKind = iota + 1
	CmdDecline
	CmdAnswer
	CmdQuit
)

// Command はコンソールの1行を解釈した結果です。CmdAnswer の Index は0始まりです。
type Command struct {
	Kind  CommandKind
	Index int
}

// ParseCommand は "y" / "n" / "1".."4" / "q" を解釈します。
func ParseCommand(line string) (Command, error) {
	s := strings.ToLower(strings.TrimSpace(line))
	switch s {
	case "y", "yes", "revive":
		return Command{Kind: CmdRevive}, nil
	case "n", "no", "decline":
		return Command{Kind: CmdDecline}, nil
	case "q", "quit", "exit":
		return Command{Kind: CmdQuit}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}
	return Command{Kind: CmdAnswer, Index: n - 1}, nil
}

// ConsoleUI は UI の要求をテキストで w に書き出します。
type ConsoleUI struct {
	mu sync.Mutex
	w  io.Writer

	// OnPromptShown は復活の確認を表示した後に呼ばれます。
	OnPromptShown func()

	hitMarker bool
	score     string
	alerts    []string
}

func NewConsoleUI(w io.Writer) *ConsoleUI {
	return &ConsoleUI{w: w}
}

func (u *ConsoleUI) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.w, format, args...)
}

func (u *ConsoleUI) Alert(message string) {
	u.mu.Lock()
	u.alerts = append(u.alerts, message)
	u.mu.Unlock()
	u.printf("!! %s\n", message)
}

func (u *ConsoleUI) ShowDialog(lines []string) {
	for _, line := range lines {
		u.printf("NPC: %s\n", line)
	}
}

func (u *ConsoleUI) ShowRevivalPrompt() {
	u.printf("You were hit. Solve a question to revive? [y/n]\n")
	if u.OnPromptShown != nil {
		u.OnPromptShown()
	}
}

func (u *ConsoleUI) ShowChallenge(c application.MathChallenge) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", c.Question)
	for i, o := range c.Options {
		fmt.Fprintf(&b, "  %d) %d\n", i+1, o)
	}
	u.printf("%s", b.String())
}

func (u *ConsoleUI) HideChallenge() {}

func (u *ConsoleUI) SetHitMarker(visible bool) {
	u.mu.Lock()
	u.hitMarker = visible
	u.mu.Unlock()
}

func (u *ConsoleUI) SetScore(text string) {
	u.mu.Lock()
	changed := u.score != text
	u.score = text
	u.mu.Unlock()
	if changed {
		u.printf("%s\n", text)
	}
}

func (u *ConsoleUI) SetInteractionPrompt(visible bool) {
	if visible {
		u.printf("Press E to talk\n")
	}
}

// Alerts はこれまでに表示したアラートです。
func (u *ConsoleUI) Alerts() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.alerts...)
}

func (u *ConsoleUI) HitMarker() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hitMarker
}
