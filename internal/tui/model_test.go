package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/gazetteer"
	"github.com/papapumpkin/when/internal/resolve"
	"github.com/papapumpkin/when/internal/tzdb"
	"github.com/papapumpkin/when/internal/ui"
)

// testModel builds a model whose clock advances only when the test says so.
func testModel(t *testing.T, clock *time.Time) model {
	t.Helper()
	g, err := gazetteer.Default()
	if err != nil {
		t.Fatalf("gazetteer: %v", err)
	}
	a, err := gazetteer.DefaultAirports()
	if err != nil {
		t.Fatalf("airports: %v", err)
	}
	zones := tzdb.New(tzdb.WithFallbackNames(g.Zones()...))
	local, err := zones.Load("Europe/Vienna")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	conv := convert.New(resolve.New(g, a, zones))
	return newModel(conv, local, settings{
		colors: ui.ColorNever,
		now:    func() time.Time { return *clock },
	})
}

func typeText(m model, s string) model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}
	return m
}

func press(m model, k tea.KeyType) model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(model)
}

func TestModel_ConvertsWhileTyping(t *testing.T) {
	clock := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	m := testModel(t, &clock)

	m = typeText(m, "5pm in tok")
	if m.err == nil {
		t.Fatal("expected a resolve error for a partial location")
	}

	m = typeText(m, "yo")
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if m.result == nil || len(m.result.Entries) != 1 {
		t.Fatalf("expected one entry, got %+v", m.result)
	}
	if got := m.result.Entries[0].Zone.ID; got != "Asia/Tokyo" {
		t.Errorf("zone = %q, want Asia/Tokyo", got)
	}

	view := m.View()
	for _, want := range []string{"Tokyo, Japan", "17:00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_ParseErrorShowsCaret(t *testing.T) {
	clock := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	m := typeText(testModel(t, &clock), "5pm ion")

	view := m.View()
	if !strings.Contains(view, "syntax error") {
		t.Errorf("view missing syntax error:\n%s", view)
	}
	if !strings.Contains(view, "5pm ion") || !strings.Contains(view, "^") {
		t.Errorf("view missing caret:\n%s", view)
	}
}

func TestModel_TickRefreshesRelativeResult(t *testing.T) {
	clock := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	m := typeText(testModel(t, &clock), "now")
	first := m.result.Entries[0].Time

	clock = clock.Add(time.Second)
	next, cmd := m.Update(msgTick{Time: clock})
	m = next.(model)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if got := m.result.Entries[0].Time; !got.Equal(first.Add(time.Second)) {
		t.Errorf("relative result not refreshed: %v", got)
	}
}

func TestModel_TickKeepsAbsoluteResult(t *testing.T) {
	clock := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	m := typeText(testModel(t, &clock), "noon")
	before := m.result

	clock = clock.Add(48 * time.Hour)
	next, _ := m.Update(msgTick{Time: clock})
	if next.(model).result != before {
		t.Error("absolute result should not be recomputed on tick")
	}
}

func TestModel_History(t *testing.T) {
	clock := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	m := testModel(t, &clock)

	m = press(typeText(m, "noon"), tea.KeyEnter)
	m = press(m, tea.KeyCtrlL)
	m = press(typeText(m, "5pm in paris"), tea.KeyEnter)
	m = press(m, tea.KeyEnter) // repeat is not stored again
	if len(m.history) != 2 {
		t.Fatalf("history = %v, want 2 entries", m.history)
	}

	m = press(m, tea.KeyUp)
	m = press(m, tea.KeyUp)
	if m.input.Value() != "noon" {
		t.Errorf("after two ups input = %q, want noon", m.input.Value())
	}
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	if m.input.Value() != "" || m.result != nil {
		t.Errorf("past newest entry the prompt should be empty, got %q", m.input.Value())
	}
}

func TestModel_Quit(t *testing.T) {
	clock := time.Now()
	m := testModel(t, &clock)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
}
