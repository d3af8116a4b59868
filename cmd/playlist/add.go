package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/importer"
	"github.com/hazadus/go-playlist/internal/utils"
)

// createAddCommand создает команду add с привязкой к экземпляру приложения
func (app *Application) createAddCommand(ctx context.Context) *cobra.Command {
	var upload bool

	cmd := &cobra.Command{
		Use:   "add [file path]",
		Short: "Add an audio file to the library",
		Long:  `Read tags and duration of an audio file and append it to the library, optionally uploading it to S3.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для загрузки (10 минут)
			addCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.addTrack(addCtx, args[0], upload)
		},
	}

	cmd.Flags().BoolVar(&upload, "upload", false, "upload the file to S3 and store the s3:// URI")
	return cmd
}

func (app *Application) addTrack(ctx context.Context, filePath string, upload bool) error {
	var uploader importer.Uploader
	if upload {
		client, err := app.S3Client()
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("для загрузки задайте ключи доступа к S3")
		}
		uploader = client

		fmt.Printf("📤 Загружаем файл в S3:\n")
		fmt.Printf("   Файл: %s\n", filePath)
		fmt.Printf("   Бакет: %s\n", app.Config.AwsBucketName)
		fmt.Println()
	}

	service := importer.NewService(uploader, app.Library, app.Logger)

	opts := importer.Options{Upload: upload}
	if upload {
		opts.OnProgress = progressPrinter(time.Now())
	}

	result, err := service.Import(ctx, filePath, opts)
	if err != nil {
		return fmt.Errorf("ошибка добавления трека: %w", err)
	}
	if upload {
		fmt.Println()
	}

	// Проверяем, не была ли операция отменена
	if ctx.Err() != nil {
		return fmt.Errorf("операция отменена: %w", ctx.Err())
	}

	if err := app.SaveLibrary(); err != nil {
		return fmt.Errorf("ошибка сохранения библиотеки: %w", err)
	}

	track := result.Track
	fmt.Printf("✅ Трек добавлен: %d. %s - %s\n", track.ID, track.Artist, track.Title)
	fmt.Printf("   Альбом: %s\n", track.Album)
	fmt.Printf("   Длительность: %s\n", track.Duration)
	fmt.Printf("   Размер: %s\n", utils.FormatFileSize(result.Info.Size))
	fmt.Printf("   Источник: %s\n", track.Source)
	fmt.Printf("\n📦 Библиотека сохранена в %s\n", app.Config.LibraryPath)
	return nil
}

// progressPrinter выводит прогресс загрузки в одну строку
func progressPrinter(startTime time.Time) func(read, total int64) {
	return func(read, total int64) {
		if read <= 0 || total <= 0 {
			return
		}

		elapsed := time.Since(startTime)
		percentage := float64(read) / float64(total) * 100

		// Вычисляем скорость загрузки
		speed := float64(read) / max(elapsed.Seconds(), 0.001)

		fmt.Printf("\r📊 Прогресс: %.1f%% | Скорость: %s/s | Прошло: %s",
			percentage,
			utils.FormatFileSize(int64(speed)),
			elapsed.Truncate(time.Second))
	}
}
