package main

import (
	"context"

	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/tui"
	tuiapp "github.com/hazadus/go-playlist/internal/tui/app"
)

// runTUI собирает плеер и пробу и запускает интерфейс
func (app *Application) runTUI(ctx context.Context) error {
	prober, err := app.newProber()
	if err != nil {
		return err
	}

	client, err := app.S3Client()
	if err != nil {
		return err
	}
	var store player.ObjectOpener
	if client != nil {
		store = client
	}

	volume := app.Config.VolumeLevel()
	media := player.New(player.Options{
		Autoplay: app.Config.AutoplayEnabled(),
		Volume:   volume,
		Store:    store,
		Logger:   app.Logger,
	})
	defer media.Close()

	return tui.NewApp(app.Library, tuiapp.Options{
		Media:        media,
		Prober:       prober,
		Logger:       app.Logger,
		ProbeTimeout: app.Config.ProbeTimeout,
		Volume:       &volume,
	}).Run(ctx)
}
