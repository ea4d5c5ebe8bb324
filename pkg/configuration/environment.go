package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mavis-digital/hrbot/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

// RecordStoreOptions configures the low-code table backend client.
type RecordStoreOptions struct {
	BaseURL  string        `env:"RECORD_STORE_URL"`
	APIToken string        `env:"RECORD_STORE_API_TOKEN"`
	Timeout  time.Duration `env:"RECORD_STORE_TIMEOUT" envDefault:"30s"`
}

// TableOptions carries the backend table identifiers the sync engine
// reads and writes.
type TableOptions struct {
	Source       string `env:"DATA_1C_TABLE_ID"`
	Pivot        string `env:"PIVOT_TABLE_ID"`
	Auth         string `env:"AUTH_TABLE_ID"`
	PulseTasks   string `env:"PULSE_TASKS_ID"`
	PulseContent string `env:"PULSE_CONTENT_ID"`
	Broadcast    string `env:"BROADCAST_TABLE_ID"`
}

func (t *TableOptions) Validate() error {
	required := []struct{ name, value string }{
		{"DATA_1C_TABLE_ID", t.Source},
		{"PIVOT_TABLE_ID", t.Pivot},
		{"AUTH_TABLE_ID", t.Auth},
		{"PULSE_TASKS_ID", t.PulseTasks},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	return nil
}

// SyncOptions drives the daily trigger loop and the synchronizers.
type SyncOptions struct {
	// Moscow wall-clock times, comma separated.
	Times          string        `env:"SYNC_TIMES" envDefault:"11:49,16:00"`
	RolesCheckTime string        `env:"ROLES_CHECK_TIME" envDefault:"14:00"`
	SettlingDelay  time.Duration `env:"AUTH_SETTLING_DELAY" envDefault:"2s"`
	PulseRetry     time.Duration `env:"PULSE_RETRY_DELAY" envDefault:"5s"`
}

type Configuration struct {
	RecordStore RecordStoreOptions
	Tables      TableOptions
	Sync        SyncOptions

	BotToken         string        `env:"BOT_TOKEN"`
	OpsPort          int           `env:"OPS_PORT" envDefault:"8090"`
	AuthCacheTTL     time.Duration `env:"AUTH_CACHE_TTL" envDefault:"1h"`
	HolidayFile      string        `env:"HOLIDAY_FILE"`
	GoAppEnvironment string        `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string        `env:"LOG_PATH" envDefault:"./logs/hrbot.log"`
	SocketAddress    string        `env:"-"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Tables.Validate(); err != nil {
		return fmt.Errorf("table configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.OpsPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.OpsPort)
	}

	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
