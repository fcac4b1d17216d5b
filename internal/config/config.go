// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultVolume — громкость по умолчанию (0-100)
const DefaultVolume = 70

// Config структура для хранения конфигурации приложения
type Config struct {
	// Ключ и модель для агента
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	// Каталог кэша скачанных треков и файл библиотеки
	CacheDir    string `yaml:"cache_dir"`
	LibraryPath string `yaml:"library_path"`

	DefaultVolume int `yaml:"default_volume"`

	// Настройки S3 для выгрузки треков в облако
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не ошибка: возвращается конфигурация по умолчанию,
// ключ API при этом может прийти из окружения.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := strings.Replace(filePath, "~", home, 1)

	config := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	// Устанавливаем значения по умолчанию, если они не заданы
	if config.APIKey == "" {
		config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}
	if config.CacheDir == "" {
		config.CacheDir = "~/.vibeplay/cache"
	}
	if config.LibraryPath == "" {
		config.LibraryPath = "~/.vibeplay/library.json"
	}
	if config.DefaultVolume <= 0 || config.DefaultVolume > 100 {
		config.DefaultVolume = DefaultVolume
	}

	// Раскрываем тильду в путях
	config.CacheDir = strings.Replace(config.CacheDir, "~", home, 1)
	config.LibraryPath = strings.Replace(config.LibraryPath, "~", home, 1)

	return config, nil
}

// LogPath возвращает путь к файлу журнала приложения
func LogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vibeplay", "vibeplay.log"), nil
}
