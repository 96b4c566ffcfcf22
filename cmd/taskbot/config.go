package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/agalitsyn/tasks/internal/logging"
	"github.com/agalitsyn/tasks/version"
)

const EnvPrefix = "TASKS_BOT"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Token         secret.String
	OwnerChatID   int64
	UpdateTimeout int

	File     string
	Username string
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info).")
	token := flag.String("token", "", "Telegram bot token.")
	owner := flag.Int64("owner", 0, "Chat ID allowed to use the bot. Any chat when 0.")
	updateTimeout := flag.Int("update-timeout", 60, "Long polling timeout in seconds.")
	file := flag.String("file", "", "Path to the tasks file. Tasks are kept in memory only when empty.")
	username := flag.String("user", "me", "User name shown in /status.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = logging.ParseLevel(*logLevel)
	if cfg.Log.Level == logging.LevelDebug {
		cfg.Debug = true
	}

	cfg.Token = secret.NewString(*token)
	cfg.OwnerChatID = *owner
	cfg.UpdateTimeout = *updateTimeout
	cfg.File = *file
	cfg.Username = *username

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
