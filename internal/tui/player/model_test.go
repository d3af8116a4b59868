package player

import (
	"strings"
	"testing"
)

func TestNewModel(t *testing.T) {
	model := NewModel()

	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.TransportLabel() != PlayLabel {
		t.Errorf("Expected %q initially, got %q", PlayLabel, model.TransportLabel())
	}
	if !strings.Contains(model.View(), "0:00 / 0:00") {
		t.Error("Ожидались нулевые метки времени")
	}
}

func TestSetters(t *testing.T) {
	model := NewModel()

	model.SetNowPlaying("Now Playing: Song by Artist")
	model.SetTransport(true)
	model.SetProgress(0.5)
	model.SetTimeLabels("1:30", "3:00")
	model.SetVolumeLabel("Volume: 80%")
	model.Notify("File not found: Song")

	view := model.View()
	for _, expected := range []string{
		"Now Playing: Song by Artist",
		PauseLabel,
		"1:30 / 3:00",
		"Volume: 80%",
		"File not found: Song",
	} {
		if !strings.Contains(view, expected) {
			t.Errorf("View() не содержит %q", expected)
		}
	}
	if model.Fraction() != 0.5 {
		t.Errorf("Expected fraction 0.5, got %v", model.Fraction())
	}

	model.ClearNotice()
	if strings.Contains(model.View(), "File not found") {
		t.Error("Уведомление должно быть очищено")
	}
}

func TestSetWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{200, maxBarWidth},
		{64, 40},
		{20, 10},
	}

	for _, test := range tests {
		model := NewModel()
		model.SetWidth(test.width)
		if model.bar.Width != test.expected {
			t.Errorf("SetWidth(%d): ширина бара %d, ожидалось %d", test.width, model.bar.Width, test.expected)
		}
	}
}
