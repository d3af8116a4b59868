package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/probe"
)

const probeWorkers = 4

// createProbeCommand создает команду probe с привязкой к экземпляру приложения
func (app *Application) createProbeCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that every track source exists",
		Long:  `Probe every track of the library and report missing or unreachable sources.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			prober, err := app.newProber()
			if err != nil {
				return err
			}
			return app.probeTracks(ctx, prober)
		},
	}
}

// newProber создает пробу, подключая S3 только при наличии ключей
func (app *Application) newProber() (*probe.Prober, error) {
	client, err := app.S3Client()
	if err != nil {
		return nil, err
	}

	var store probe.ObjectStore
	if client != nil {
		store = client
	}
	return probe.New(nil, store, app.Config.ProbeTimeout, app.Logger), nil
}

func (app *Application) probeTracks(ctx context.Context, prober *probe.Prober) error {
	if len(app.Library.Tracks) == 0 {
		fmt.Println("📚 Библиотека пуста. Проверять нечего.")
		return nil
	}

	fmt.Printf("🔎 Проверяем треков: %d\n\n", len(app.Library.Tracks))

	missing, failed := 0, 0
	for _, result := range prober.All(ctx, app.Library.Tracks, probeWorkers) {
		track := result.Track
		switch {
		case result.Err == nil:
			fmt.Printf("✅ %d. %s - %s\n", track.ID, track.Artist, track.Title)
		case result.Missing():
			missing++
			fmt.Printf("❌ %d. %s - %s: не найден (%s)\n", track.ID, track.Artist, track.Title, track.Source)
			app.Logger.Warn("источник трека не найден",
				zap.Int("id", track.ID),
				zap.String("src", track.Source))
		default:
			failed++
			fmt.Printf("⚠️  %d. %s - %s: %v\n", track.ID, track.Artist, track.Title, result.Err)
		}
	}

	fmt.Println()
	if missing == 0 && failed == 0 {
		fmt.Println("✅ Все треки доступны")
		return nil
	}
	return fmt.Errorf("не найдено треков: %d, ошибок проверки: %d", missing, failed)
}
