// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-playlist/internal/data"
)

const defaultVolume = 0.8

// Config структура для хранения конфигурации приложения
type Config struct {
	LibraryPath  string        `yaml:"library_path"`
	Volume       *float64      `yaml:"volume"`
	Autoplay     *bool         `yaml:"autoplay"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	LogPath      string        `yaml:"log_path"`
	LogLevel     string        `yaml:"log_level"`

	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// AutoplayEnabled сообщает, разрешен ли автоматический запуск треков
func (c *Config) AutoplayEnabled() bool {
	return c.Autoplay == nil || *c.Autoplay
}

// VolumeLevel возвращает начальную громкость от 0 до 1. Без значения в файле - 0.8.
func (c *Config) VolumeLevel() float64 {
	if c.Volume == nil {
		return defaultVolume
	}
	return min(max(*c.Volume, 0), 1)
}

// LoadConfig загружает конфигурацию из файла, затем применяет переменные окружения.
// Отсутствующий файл не является ошибкой.
func LoadConfig(filePath string) (*Config, error) {
	path, err := data.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	config := &Config{}

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	// .env не переопределяет уже заданные переменные окружения
	_ = godotenv.Load()
	config.applyEnv()

	// Устанавливаем значения по умолчанию, если они не заданы
	if config.LibraryPath == "" {
		config.LibraryPath = "~/.playlist/library.yaml"
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = 5 * time.Second
	}
	if config.LogPath == "" {
		config.LogPath = "~/.playlist/playlist.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	// Раскрываем тильду в путях
	if config.LibraryPath, err = data.ExpandHome(config.LibraryPath); err != nil {
		return nil, err
	}
	if config.LogPath, err = data.ExpandHome(config.LogPath); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv переопределяет поля значениями из окружения
func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*dst = value
		}
	}

	setString(&c.LibraryPath, "PLAYLIST_LIBRARY")
	setString(&c.LogPath, "PLAYLIST_LOG_PATH")
	setString(&c.LogLevel, "PLAYLIST_LOG_LEVEL")
	setString(&c.AwsBucketName, "AWS_BUCKET")
	setString(&c.AwsAccessKey, "AWS_ACCESS_KEY_ID")
	setString(&c.AwsSecretKey, "AWS_SECRET_ACCESS_KEY")
	setString(&c.AwsRegion, "AWS_REGION")
	setString(&c.AwsEndpoint, "AWS_ENDPOINT")

	if value, ok := os.LookupEnv("PLAYLIST_AUTOPLAY"); ok {
		if enabled, err := strconv.ParseBool(value); err == nil {
			c.Autoplay = &enabled
		}
	}
}

// HasS3 сообщает, заданы ли параметры доступа к S3
func (c *Config) HasS3() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != ""
}
