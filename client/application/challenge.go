package application

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ChallengeKind は問題の種類です。
type ChallengeKind string

const (
	KindAddition       ChallengeKind = "addition"
	KindSubtraction    ChallengeKind = "subtraction"
	KindMultiplication ChallengeKind = "multiplication"
	KindWordProblem    ChallengeKind = "word_problem"
	KindComplex        ChallengeKind = "complex"
)

// Operation は二項演算です。
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
)

func (op Operation) apply(a, b int) (int, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	default:
		return 0, fmt.Errorf("%w: operation %q", ErrInvalidQuestion, op)
	}
}

func (op Operation) symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "×"
	default:
		return "?"
	}
}

const (
	// 負の答えになった場合に引き直す回数の上限
	maxDrawAttempts = 32
	// 誤答の候補を答えの前後どれだけの幅から選ぶか（最低値）
	minDistractorSpread = 3
	optionCount         = 4
)

var (
	ErrNoValidDraw     = errors.New("no non-negative answer within draw attempts")
	ErrInvalidQuestion = errors.New("invalid question template")
	ErrEmptyBank       = errors.New("question bank is empty")
)

// ParamRange はパラメータを一様に引く閉区間 [Min, Max] です。
type ParamRange struct {
	Min int `json:"min" jsonschema:"description=inclusive lower bound"`
	Max int `json:"max" jsonschema:"description=inclusive upper bound"`
}

// QuestionTemplate は問題の雛形です。Text の {a} {b} {c} が引いた値で置き換えられます。
type QuestionTemplate struct {
	Kind ChallengeKind `json:"kind" jsonschema:"enum=addition,enum=subtraction,enum=multiplication,enum=word_problem,enum=complex"`
	Text string        `json:"text,omitempty" jsonschema:"description=question text with {a} {b} {c} placeholders; generated from the operation when empty"`
	A    ParamRange    `json:"a"`
	B    ParamRange    `json:"b"`
	C    *ParamRange   `json:"c,omitempty" jsonschema:"description=third operand, required for complex questions"`
	// Operation は word_problem の演算です。
	Operation Operation `json:"operation,omitempty" jsonschema:"enum=add,enum=subtract,enum=multiply"`
	// Operations は complex の2段階の演算 (a op1 b) op2 c です。
	Operations []Operation `json:"operations,omitempty" jsonschema:"minItems=2,maxItems=2"`
}

// QuestionBank は出題候補の集合です。
type QuestionBank struct {
	Questions []QuestionTemplate `json:"questions"`
}

// MathChallenge は復活のために解く1問です。
type MathChallenge struct {
	Kind          ChallengeKind
	Question      string
	Options       [optionCount]int
	CorrectAnswer int
	CorrectIndex  int
}

//go:embed questions.json
var defaultQuestionsJSON []byte

// DefaultQuestionBank は埋め込みの問題集を返します。
func DefaultQuestionBank() *QuestionBank {
	bank, err := ParseQuestionBank(defaultQuestionsJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded question bank: %v", err))
	}
	return bank
}

// LoadQuestionBank はJSONファイルから問題集を読み込みます。
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return ParseQuestionBank(data)
}

func ParseQuestionBank(data []byte) (*QuestionBank, error) {
	var bank QuestionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Validate は各雛形の種類・範囲・演算が揃っているかを確認します。
func (b *QuestionBank) Validate() error {
	if b == nil || len(b.Questions) == 0 {
		return ErrEmptyBank
	}
	for i, q := range b.Questions {
		if err := q.validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

func (q QuestionTemplate) validate() error {
	if err := q.A.validate("a"); err != nil {
		return err
	}
	if err := q.B.validate("b"); err != nil {
		return err
	}
	switch q.Kind {
	case KindAddition, KindSubtraction, KindMultiplication:
	case KindWordProblem:
		if _, err := q.Operation.apply(0, 0); err != nil {
			return err
		}
		if q.Text == "" {
			return fmt.Errorf("%w: word_problem needs text", ErrInvalidQuestion)
		}
	case KindComplex:
		if q.C == nil {
			return fmt.Errorf("%w: complex needs parameter c", ErrInvalidQuestion)
		}
		if err := q.C.validate("c"); err != nil {
			return err
		}
		if len(q.Operations) != 2 {
			return fmt.Errorf("%w: complex needs exactly 2 operations", ErrInvalidQuestion)
		}
		for _, op := range q.Operations {
			if _, err := op.apply(0, 0); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidQuestion, q.Kind)
	}
	return nil
}

func (r ParamRange) validate(name string) error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: %s range [%d,%d]", ErrInvalidQuestion, name, r.Min, r.Max)
	}
	return nil
}

func (r ParamRange) draw(rng *rand.Rand) int {
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// GenerateChallenge は問題集から一様に雛形を選び、パラメータを引いて1問を作ります。
// 答えが負になる組み合わせは引き直し、上限を超えたら ErrNoValidDraw を返します。
func GenerateChallenge(rng *rand.Rand, bank *QuestionBank) (MathChallenge, error) {
	if bank == nil || len(bank.Questions) == 0 {
		return MathChallenge{}, ErrEmptyBank
	}
	q := bank.Questions[rng.IntN(len(bank.Questions))]
	if err := q.validate(); err != nil {
		return MathChallenge{}, err
	}

	for range maxDrawAttempts {
		a, b := q.A.draw(rng), q.B.draw(rng)
		c := 0
		if q.C != nil {
			c = q.C.draw(rng)
		}
		answer, err := q.answer(a, b, c)
		if err != nil {
			return MathChallenge{}, err
		}
		if answer < 0 {
			continue
		}
		ch := MathChallenge{
			Kind:          q.Kind,
			Question:      q.render(a, b, c),
			CorrectAnswer: answer,
		}
		ch.Options, ch.CorrectIndex = buildOptions(rng, answer)
		return ch, nil
	}
	return MathChallenge{}, fmt.Errorf("%w: %s", ErrNoValidDraw, q.Kind)
}

func (q QuestionTemplate) answer(a, b, c int) (int, error) {
	switch q.Kind {
	case KindAddition:
		return OpAdd.apply(a, b)
	case KindSubtraction:
		return OpSubtract.apply(a, b)
	case KindMultiplication:
		return OpMultiply.apply(a, b)
	case KindWordProblem:
		return q.Operation.apply(a, b)
	case KindComplex:
		first, err := q.Operations[0].apply(a, b)
		if err != nil {
			return 0, err
		}
		return q.Operations[1].apply(first, c)
	default:
		return 0, fmt.Errorf("%w: kind %q", ErrInvalidQuestion, q.Kind)
	}
}

func (q QuestionTemplate) render(a, b, c int) string {
	text := q.Text
	if text == "" {
		switch q.Kind {
		case KindAddition:
			text = "What is {a} + {b}?"
		case KindSubtraction:
			text = "What is {a} - {b}?"
		case KindMultiplication:
			text = "What is {a} × {b}?"
		case KindComplex:
			text = fmt.Sprintf("What is ({a} %s {b}) %s {c}?", q.Operations[0].symbol(), q.Operations[1].symbol())
		}
	}
	return strings.NewReplacer(
		"{a}", strconv.Itoa(a),
		"{b}", strconv.Itoa(b),
		"{c}", strconv.Itoa(c),
	).Replace(text)
}

// buildOptions は答えの近くから重複しない非負の誤答を3つ選び、4択をシャッフルします。
func buildOptions(rng *rand.Rand, answer int) ([optionCount]int, int) {
	spread := max(minDistractorSpread, answer/10+minDistractorSpread)
	chosen := []int{answer}
	for attempt := 0; len(chosen) < optionCount && attempt < 64; attempt++ {
		offset := rng.IntN(2*spread+1) - spread
		candidate := answer + offset
		if offset == 0 || candidate < 0 || slices.Contains(chosen, candidate) {
			continue
		}
		chosen = append(chosen, candidate)
	}
	// 乱択で埋まらなかった分は答えより大きい値で埋める
	for next := answer + 1; len(chosen) < optionCount; next++ {
		if !slices.Contains(chosen, next) {
			chosen = append(chosen, next)
		}
	}

	var options [optionCount]int
	copy(options[:], chosen)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, slices.Index(options[:], answer)
}
