package main

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

// Config — конфигурация процесса. Учетные данные API приходят из
// окружения, директория состояния имеет фиксированное расположение
// на пользователя с возможностью переопределения.
type Config struct {
	AppID    int
	AppHash  string
	StateDir string
	LogLevel string
}

// LoadConfig читает конфигурацию из переменных окружения
func LoadConfig() Config {
	v := viper.New()

	v.SetDefault("state_dir", defaultStateDir())
	v.SetDefault("log_level", "info")

	_ = v.BindEnv("api_id", "API_ID")
	_ = v.BindEnv("api_hash", "API_HASH")
	_ = v.BindEnv("state_dir", "TELEGRAM_STATE_DIR")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	return Config{
		AppID:    v.GetInt("api_id"),
		AppHash:  v.GetString("api_hash"),
		StateDir: v.GetString("state_dir"),
		LogLevel: v.GetString("log_level"),
	}
}

// ValidateCredentials проверяет наличие учетных данных API
func (c Config) ValidateCredentials() error {
	if c.AppID == 0 || c.AppHash == "" {
		return errors.New("API_ID and API_HASH environment variables are required, get them at https://my.telegram.org/apps")
	}
	return nil
}

// SessionFile — путь к файлу сессии. Формат файла принадлежит
// библиотеке клиента, мы только указываем расположение.
func (c Config) SessionFile() string {
	return filepath.Join(c.StateDir, "session.json")
}

// DownloadsDir — директория загрузок по умолчанию
func (c Config) DownloadsDir() string {
	return filepath.Join(c.StateDir, "downloads")
}

// EnsureStateDir создает директорию состояния
func (c Config) EnsureStateDir() error {
	if err := os.MkdirAll(c.StateDir, 0o700); err != nil {
		return errors.Wrap(err, "create state directory")
	}
	return nil
}

// SessionExists сообщает, был ли уже выполнен login
func (c Config) SessionExists() bool {
	_, err := os.Stat(c.SessionFile())
	return err == nil
}

// defaultStateDir возвращает директорию состояния на пользователя
// по соглашению XDG: $XDG_STATE_HOME/mcp-telegram или
// ~/.local/state/mcp-telegram.
func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "mcp-telegram")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "mcp-telegram")
	}
	return filepath.Join(home, ".local", "state", "mcp-telegram")
}
