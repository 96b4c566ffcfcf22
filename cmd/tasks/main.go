package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/tasks/internal/app"
	"github.com/agalitsyn/tasks/internal/logging"
	"github.com/agalitsyn/tasks/internal/model"
	"github.com/agalitsyn/tasks/internal/service"
	"github.com/agalitsyn/tasks/internal/storage/flatfile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	logger := logging.Setup(cfg.Log.Level, os.Stderr)
	if cfg.NoColor {
		color.NoColor = true
	}

	if cfg.Debug {
		logger.Logf("[DEBUG] running with config")
		fmt.Fprintln(os.Stderr, cfg.String())
	}

	var repo model.TaskRepository
	if cfg.File != "" {
		repo = flatfile.NewTaskStorage(cfg.File, logger)
	} else {
		logger.Logf("[WARN] no tasks file configured, tasks will not be saved")
	}

	svc, err := service.New(model.NewUser(cfg.Username), repo, logger)
	if err != nil {
		lgr.Fatalf("[ERROR] could not init service: %v", err)
	}
	if err := svc.Load(ctx); err != nil {
		logger.Logf("[WARN] starting with no tasks: %v", err)
	}

	// Unblock the pending read when interrupted.
	go func() {
		<-ctx.Done()
		os.Stdin.Close()
	}()

	console := app.NewConsole(app.ConsoleConfig{Color: !color.NoColor}, svc, os.Stdin, os.Stdout, logger)
	if err := console.Run(ctx); err != nil {
		lgr.Fatalf("[ERROR] %v", err)
	}
}
