package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/playback"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List tracks from the library",
		Long:  `Display the library as a table. An optional query filters by title or artist.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			app.listTracks(query)
		},
	}
}

func (app *Application) listTracks(query string) {
	if len(app.Library.Tracks) == 0 {
		fmt.Println("📚 Библиотека пуста. Добавьте треки с помощью команды 'add'.")
		return
	}

	indices := playback.Filter(app.Library.Tracks, query)
	if len(indices) == 0 {
		fmt.Printf("🔍 По запросу '%s' ничего не найдено\n", query)
		return
	}

	fmt.Printf("📚 Найдено треков: %d\n\n", len(indices))

	// Выводим заголовок таблицы
	fmt.Printf("%-4s %-30s %-30s %-20s %-8s %s\n",
		"ID", "Artist", "Title", "Album", "Time", "Source")
	fmt.Println(strings.Repeat("-", 120))

	total := 0
	for _, i := range indices {
		track := app.Library.Tracks[i]

		// Длительность хранится строкой "M:SS"; неразобранные значения не учитываются
		if seconds, err := playback.ParseDuration(track.Duration); err == nil {
			total += seconds
		}

		duration := track.Duration
		if duration == "" {
			duration = "N/A"
		}

		// Выравниваем по ячейкам терминала, а не по байтам
		fmt.Printf("%-4d %s %s %s %-8s %s\n",
			track.ID,
			utils.PadRight(utils.TruncateString(track.Artist, 28), 30),
			utils.PadRight(utils.TruncateString(track.Title, 28), 30),
			utils.PadRight(utils.TruncateString(track.Album, 18), 20),
			duration,
			track.Source)
	}

	fmt.Println()
	fmt.Printf("⏱️  Общая длительность: %s\n", playback.FormatDuration(float64(total)))
	fmt.Println("💡 Используйте 'playlist' для запуска плеера")
}
