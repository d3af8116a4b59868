// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// TruncateString обрезает строку до указанной ширины в ячейках терминала, добавляя "..."
func TruncateString(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// PadRight дополняет строку пробелами до ширины в ячейках терминала
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
