package config

import (
	"fmt"
	"log/slog"
	"time"

	"recfetch/internal/naming"
)

type Logger struct {
	Level     slog.Level
	Plaintext bool
}

type Server struct {
	Addr string
}

type FTP struct {
	Addr     string        // host:port сервера записи
	User     string
	Password string
	Dir      string        // каталог с записями на сервере
	Prefix   string        // префикс имён файлов записей
	Timeout  time.Duration // таймаут соединения
}

type Loader struct {
	DestDir       string        // локальный каталог для сохранения
	ProgressEvery time.Duration // как часто логировать прогресс
}

type Naming struct {
	Schedule     naming.Schedule
	FolderPrefix string
	DayNames     []string // с воскресенья
}

type Status struct {
	ErrorTTL time.Duration // сколько живёт ошибка загрузки
}

type Render struct {
	Size     int
	FontPath string // пусто - встроенный шрифт
	FontSize float64
}

type Config struct {
	Logger Logger
	Server Server
	FTP    FTP
	Loader Loader
	Naming Naming
	Status Status
	Render Render
}

var defaultDayNames = []string{"Söndag", "Måndag", "Tisdag", "Onsdag", "Torsdag", "Fredag", "Lördag"}

func Load() (Config, error) {
	var ge getenv
	delay := ge.Duration("SCHEDULE_DELAY", false, 30*time.Minute)
	cfg := Config{
		Logger: Logger{
			Level:     ge.LogLevel("LOG_LEVEL", false, slog.LevelInfo),
			Plaintext: ge.Bool("LOG_PLAINTEXT", false, false),
		},
		Server: Server{
			Addr: ge.String("SERVER_ADDR", false, ":3154"),
		},
		FTP: FTP{
			Addr:     ge.String("FTP_ADDR", false, "192.168.177.71:21"),
			User:     ge.String("FTP_USER", false, "admin"),
			Password: ge.String("FTP_PASSWORD", false, "admin"),
			Dir:      ge.String("FTP_DIR", false, "LTs SSD 1"),
			Prefix:   ge.String("FTP_PREFIX", false, "Inspelning"),
			Timeout:  ge.Duration("FTP_TIMEOUT", false, 10*time.Second),
		},
		Loader: Loader{
			DestDir:       ge.String("DEST_DIR", true, ""),
			ProgressEvery: ge.Duration("LOG_PROGRESS_EVERY", false, 1*time.Second),
		},
		Naming: Naming{
			Schedule:     ge.Schedule("SCHEDULE", false, "1030 1400 1530 1830 2200", delay),
			FolderPrefix: ge.String("FOLDER_PREFIX", false, "2024070"),
			DayNames:     ge.Strings("DAY_NAMES", false, defaultDayNames),
		},
		Status: Status{
			ErrorTTL: ge.Duration("ERROR_TTL", false, 5*time.Minute),
		},
		Render: Render{
			Size:     ge.Int("ICON_SIZE", false, 72),
			FontPath: ge.String("ICON_FONT", false, ""),
			FontSize: ge.Float("ICON_FONT_SIZE", false, 16),
		},
	}

	if n := len(cfg.Naming.DayNames); n != 7 {
		ge.errs = append(ge.errs, fmt.Errorf("DAY_NAMES must contain 7 names, got %d", n))
	}
	if cfg.Render.Size <= 0 {
		ge.errs = append(ge.errs, fmt.Errorf("ICON_SIZE must be > 0, got %d", cfg.Render.Size))
	}

	return cfg, ge.Err()
}
