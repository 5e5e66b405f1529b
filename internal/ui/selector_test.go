package ui

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestPickerSizeStandardTerminal(t *testing.T) {
	width, height := pickerSize(90, 30, 3)
	if width != 86 {
		t.Fatalf("expected width 86, got %d", width)
	}
	if height != 9 {
		t.Fatalf("expected height 9, got %d", height)
	}
}

func TestPickerSizeTinyTerminalStillFits(t *testing.T) {
	width, height := pickerSize(20, 5, 25)
	if width > 20 || height > 5 {
		t.Fatalf("expected picker to fit terminal, got %dx%d", width, height)
	}
	if width <= 0 || height <= 0 {
		t.Fatalf("expected positive dimensions, got width=%d height=%d", width, height)
	}
}

func TestHuhSelectHeightBounds(t *testing.T) {
	if got := huhSelectHeight(0); got != 4 {
		t.Fatalf("expected minimum huh height 4, got %d", got)
	}
	if got := huhSelectHeight(20); got != 10 {
		t.Fatalf("expected max huh height 10, got %d", got)
	}
}

func TestDedupeOptions(t *testing.T) {
	got := dedupeOptions([]string{" buka excel ", "BUKA EXCEL", "", "tutup jendela"})
	want := []string{"buka excel", "tutup jendela"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPickWithoutOptionsIsUnused(t *testing.T) {
	choice, used, err := Pick("auto", "x", []string{" "})
	if err != nil || used || choice != "" {
		t.Fatalf("expected unused picker, got %q %v %v", choice, used, err)
	}
}

func TestPickerModelEnterSelectsFirstItem(t *testing.T) {
	model := newPickerModel("Mungkin maksud Anda", []string{"tambah slide", "tambah sheet 'Laporan'"})
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	out := updated.(pickerModel)
	if out.selection != "tambah slide" {
		t.Fatalf("expected first item selected, got %q", out.selection)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if updated.(pickerModel).selection != "" {
		t.Fatalf("expected esc to cancel")
	}
}
