package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

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
	logger := logging.Setup(cfg.Log.Level, os.Stdout)

	if cfg.Debug {
		logger.Logf("[DEBUG] running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
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

	bot, err := app.NewBot(
		app.BotConfig{UpdateTimeout: cfg.UpdateTimeout, OwnerChatID: cfg.OwnerChatID},
		cfg.Token.Unmask(),
		svc,
		logger,
	)
	if err != nil {
		lgr.Fatalf("[ERROR] %v", err)
	}
	bot.SetDebug(cfg.Debug)
	logger.Logf("[INFO] authorized as %s", bot.Username())

	bot.Start(ctx)
}
