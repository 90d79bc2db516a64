package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelAccumulatesFrames(t *testing.T) {
	frames := make(chan FrameMsg)
	m := NewModel("kozai", frames)

	var model tea.Model = m
	for i := 0; i < 3; i++ {
		model, _ = model.Update(FrameMsg{T: float64(i), E: 0.3 + 0.01*float64(i)})
	}

	got := model.(Model)
	if len(got.eHist) != 3 {
		t.Errorf("expected 3 history points, got %d", len(got.eHist))
	}
	if got.last.T != 2 {
		t.Errorf("last frame T = %v, want 2", got.last.T)
	}
}

func TestModelHistoryIsBounded(t *testing.T) {
	m := NewModel("x", nil)
	var model tea.Model = m
	for i := 0; i < historyCapacity+50; i++ {
		model, _ = model.Update(FrameMsg{E: float64(i)})
	}
	got := model.(Model)
	if len(got.eHist) != historyCapacity {
		t.Errorf("history should cap at %d, got %d", historyCapacity, len(got.eHist))
	}
	if got.eHist[0] != 50 {
		t.Errorf("oldest entries should be evicted first, head=%v", got.eHist[0])
	}
}

func TestModelQuits(t *testing.T) {
	m := NewModel("x", nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("expected QuitMsg, got %T", msg)
	}
}

func TestViewRendersState(t *testing.T) {
	m := NewModel("kozai", nil)
	var model tea.Model = m
	model, _ = model.Update(FrameMsg{T: 12.5, E: 0.42})
	model, _ = model.Update(FrameMsg{T: 13.0, E: 0.43})

	view := model.View()
	for _, want := range []string{"kozai", "0.43", "q to quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestDoneMessageEndsPolling(t *testing.T) {
	m := NewModel("x", nil)
	model, cmd := m.Update(doneMsg{})
	if cmd != nil {
		t.Error("no further polling after the channel closes")
	}
	if !model.(Model).done {
		t.Error("done flag not set")
	}
}
