// Package config loads server settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds the server settings. Flags override environment values.
type Config struct {
	DBPath             string `env:"SKATEDESK_DB" envDefault:"skatedesk.sqlite3"`
	Addr               string `env:"SKATEDESK_ADDR" envDefault:":8080"`
	AdminUser          string `env:"SKATEDESK_ADMIN" envDefault:"Admin"`
	LogPath            string `env:"SKATEDESK_LOG"`
	LogLevel           string `env:"SKATEDESK_LOG_LEVEL" envDefault:"info"`
	NoteTimeZone       string `env:"SKATEDESK_NOTE_TZ" envDefault:"Local"`
	LenientTransitions bool   `env:"SKATEDESK_LENIENT_TRANSITIONS"`
	SeedFile           string `env:"SKATEDESK_SEED"`

	// Location is NoteTimeZone resolved; time.Local when it cannot be loaded.
	Location *time.Location `env:"-"`
	// Warnings collects settings that fell back to a default.
	Warnings []string `env:"-"`
}

const usage = `Usage: skatedesk [flags]

Flags:
  -d, -db <path>          SQLite database path (default: skatedesk.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
      -log-level <level>  debug, info, warn or error (default: info)
      -note-tz <zone>     IANA time zone for note timestamps (default: Local)
      -lenient            apply lifecycle actions from any status
      -seed <path>        YAML catalog to import at startup
  -h, -help               show this help and exit

Every flag can also be set with its SKATEDESK_* environment variable or a .env file.
`

// Load reads .env, the environment and then args. It returns flag.ErrHelp
// when help was requested.
func Load(args []string, output io.Writer) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	fs := flag.NewFlagSet("skatedesk", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { fmt.Fprint(output, usage) }

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "")
	fs.StringVar(&cfg.NoteTimeZone, "note-tz", cfg.NoteTimeZone, "")
	fs.BoolVar(&cfg.LenientTransitions, "lenient", cfg.LenientTransitions, "")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg.resolve()
	return cfg, nil
}

func (c *Config) resolve() {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.Warnings = append(c.Warnings, fmt.Sprintf("unknown log level %q, using info", c.LogLevel))
		c.LogLevel = "info"
	}

	c.Location = time.Local
	if c.NoteTimeZone != "" && c.NoteTimeZone != "Local" {
		loc, err := time.LoadLocation(c.NoteTimeZone)
		if err != nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("unknown time zone %q, using local time", c.NoteTimeZone))
			return
		}
		c.Location = loc
	}
}
