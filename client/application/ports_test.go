package application_test

import (
	"math/rand/v2"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/Nzm15/battle-arena-main/client/application"
	"github.com/Nzm15/battle-arena-main/client/application/mocks"
)

type testPorts struct {
	sender   *mocks.MockSender
	ui       *mocks.MockUI
	renderer *mocks.MockRenderer
	spawns   *mocks.MockSpawnPoints
	input    *mocks.MockInput
	audio    *mocks.MockAudio
}

func newTestPorts(t *testing.T) *testPorts {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &testPorts{
		sender:   mocks.NewMockSender(ctrl),
		ui:       mocks.NewMockUI(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
		spawns:   mocks.NewMockSpawnPoints(ctrl),
		input:    mocks.NewMockInput(ctrl),
		audio:    mocks.NewMockAudio(ctrl),
	}
}

// fixedBank は常に 7 + 5 を出題します。
func fixedBank() *application.QuestionBank {
	return &application.QuestionBank{Questions: []application.QuestionTemplate{{
		Kind: application.KindAddition,
		A:    application.ParamRange{Min: 7, Max: 7},
		B:    application.ParamRange{Min: 5, Max: 5},
	}}}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// wrongIndex は正解以外の選択肢の番号を返します。
func wrongIndex(ch application.MathChallenge) int {
	return (ch.CorrectIndex + 1) % len(ch.Options)
}
