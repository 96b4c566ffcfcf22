package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agalitsyn/flagutils"

	"github.com/agalitsyn/tasks/internal/logging"
	"github.com/agalitsyn/tasks/version"
)

const EnvPrefix = "TASKS"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	// File is the tasks file. Empty means tasks are not persisted.
	File     string
	Username string
	NoColor  bool
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
	file := flag.String("file", "", "Path to the tasks file. Tasks are kept in memory only when empty.")
	username := flag.String("user", "me", "User name shown in the menu.")
	noColor := flag.Bool("no-color", false, "Disable colored output.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = logging.ParseLevel(*logLevel)
	if cfg.Log.Level == logging.LevelDebug {
		cfg.Debug = true
	}

	cfg.File = *file
	cfg.Username = *username
	cfg.NoColor = *noColor

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
