package playback

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatDuration форматирует секунды в вид "M:SS".
// NaN, бесконечность и отрицательные значения дают "0:00".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}

	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ParseDuration разбирает строку "M:SS" в целое число секунд
func ParseDuration(label string) (int, error) {
	minutes, seconds, ok := strings.Cut(strings.TrimSpace(label), ":")
	if !ok {
		return 0, fmt.Errorf("неверный формат длительности: %q", label)
	}

	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("неверные минуты в %q", label)
	}
	if len(seconds) != 2 {
		return 0, fmt.Errorf("неверные секунды в %q", label)
	}
	s, err := strconv.Atoi(seconds)
	if err != nil || s < 0 || s > 59 {
		return 0, fmt.Errorf("неверные секунды в %q", label)
	}

	return m*60 + s, nil
}
