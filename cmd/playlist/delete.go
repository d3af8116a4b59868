package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/s3"
)

// createDeleteCommand создает команду delete с привязкой к экземпляру приложения
func (app *Application) createDeleteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a track by ID",
		Long:  `Delete a track from the library by its ID. Objects behind s3:// sources are removed too.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный ID '%s': ID должен быть числом", args[0])
			}
			return app.deleteTrack(ctx, id)
		},
	}
}

func (app *Application) deleteTrack(ctx context.Context, id int) error {
	track, err := app.Library.TrackByID(id)
	if err != nil {
		return err
	}

	fmt.Printf("🗑️  Удаляем трек: %s - %s\n", track.Artist, track.Title)

	// Объект в S3 удаляем только для s3:// источников
	if s3.IsURI(track.Source) {
		if err := app.deleteFromS3(ctx, track.Source); err != nil {
			fmt.Printf("⚠️  Предупреждение: не удалось удалить файл из S3: %v\n", err)
			app.Logger.Warn("объект S3 не удален",
				zap.String("src", track.Source),
				zap.Error(err))
		} else {
			fmt.Println("✅ Файл успешно удален из S3")
		}
	}

	if err := app.Library.DeleteTrackByID(id); err != nil {
		return fmt.Errorf("ошибка удаления трека из библиотеки: %w", err)
	}

	if err := app.SaveLibrary(); err != nil {
		return fmt.Errorf("ошибка сохранения библиотеки: %w", err)
	}

	fmt.Println("✅ Трек успешно удален из библиотеки")
	return nil
}

func (app *Application) deleteFromS3(ctx context.Context, uri string) error {
	client, err := app.S3Client()
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("ключи доступа к S3 не заданы")
	}
	return client.DeleteFile(ctx, uri)
}
