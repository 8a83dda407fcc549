package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"luastyle/internal/application/usecases"
)

func testModel(out *usecases.SessionOutput, err error) Model {
	return NewModel(context.Background(), func(ctx context.Context) (*usecases.SessionOutput, error) {
		return out, err
	})
}

func TestModel_TickFollowsSnapshot(t *testing.T) {
	m := testModel(&usecases.SessionOutput{Progress: 42, Message: "Adjusting the garment fit..."}, nil)

	updated, cmd := m.Update(tickMsg{})
	got := updated.(Model)

	if got.percent != 0.42 {
		t.Errorf("Expected percent 0.42, got %v", got.percent)
	}
	if got.message != "Adjusting the garment fit..." {
		t.Errorf("Unexpected message %q", got.message)
	}
	if cmd == nil {
		t.Error("Expected the next poll to be scheduled")
	}
	if !strings.Contains(got.View(), "Adjusting the garment fit...") {
		t.Error("Expected the view to show the loading message")
	}
}

func TestModel_TickIgnoresSnapshotError(t *testing.T) {
	m := testModel(nil, errors.New("gone"))

	updated, cmd := m.Update(tickMsg{})
	if updated.(Model).percent != 0 {
		t.Error("Expected percent to stay at zero")
	}
	if cmd == nil {
		t.Error("Expected polling to continue")
	}
}

func TestModel_Done(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantPercent float64
		wantView    string
	}{
		{"success", nil, 1, "Your look is ready."},
		{"failure", errors.New("Try sharper photos"), 0, "Try sharper photos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, cmd := testModel(&usecases.SessionOutput{}, nil).Update(doneMsg{err: tt.err})
			got := updated.(Model)

			if !got.finished {
				t.Error("Expected finished")
			}
			if got.percent != tt.wantPercent {
				t.Errorf("Expected percent %v, got %v", tt.wantPercent, got.percent)
			}
			if cmd == nil {
				t.Error("Expected quit command")
			}
			if !strings.Contains(got.View(), tt.wantView) {
				t.Errorf("Expected view to contain %q", tt.wantView)
			}
		})
	}
}

func TestModel_QuitInterrupts(t *testing.T) {
	m := testModel(&usecases.SessionOutput{}, nil)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !updated.(Model).interrupted {
		t.Error("Expected q to interrupt an unfinished try-on")
	}

	finished, _ := m.Update(doneMsg{})
	updated, _ = finished.(Model).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if updated.(Model).interrupted {
		t.Error("Expected quitting after completion not to count as an interruption")
	}
}
