package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hazadus/go-playlist/internal/config"
	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/logger"
	"github.com/hazadus/go-playlist/internal/s3"
)

const (
	defaultConfigPath = "~/.playlist/config.yaml"
)

// Application содержит состояние приложения, общее для всех команд
type Application struct {
	Config  *config.Config
	Library *data.Library
	Logger  *zap.Logger

	s3Client *s3.Client
}

// init загружает конфигурацию, журнал и библиотеку.
// console включает вывод предупреждений в stderr.
func (app *Application) init(configPath, libraryPath string, console bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if libraryPath != "" {
		if cfg.LibraryPath, err = data.ExpandHome(libraryPath); err != nil {
			return err
		}
	}
	app.Config = cfg

	app.Logger, err = logger.New(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Console:    console,
	})
	if err != nil {
		return fmt.Errorf("ошибка настройки журнала: %w", err)
	}

	app.Library, err = data.LoadLibrary(cfg.LibraryPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки библиотеки: %w", err)
	}

	app.Logger.Debug("библиотека загружена",
		zap.String("path", cfg.LibraryPath),
		zap.Int("tracks", len(app.Library.Tracks)))
	return nil
}

// SaveLibrary сохраняет библиотеку в файл из конфигурации
func (app *Application) SaveLibrary() error {
	return app.Library.SaveLibrary(app.Config.LibraryPath)
}

// S3Client возвращает клиент S3 или nil, если доступ не настроен
func (app *Application) S3Client() (*s3.Client, error) {
	if app.s3Client != nil || !app.Config.HasS3() {
		return app.s3Client, nil
	}

	client, err := s3.NewClient(&s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания S3 клиента: %w", err)
	}
	app.s3Client = client
	return client, nil
}

func (app *Application) close() {
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &Application{}
	rootCmd := app.createRootCommand(ctx)
	err := rootCmd.ExecuteContext(ctx)

	app.close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка: %v\n", err)
		os.Exit(1)
	}
}
