package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/tasks/internal/model"
	"github.com/agalitsyn/tasks/internal/service"
	"github.com/agalitsyn/tasks/version"
)

const (
	callbackList      = "cmd_list"
	callbackTodo      = "cmd_todo"
	callbackCompleted = "cmd_done_list"
	callbackStatus    = "cmd_status"

	callbackDonePrefix   = "done:"
	callbackRemovePrefix = "remove:"

	maxTaskButtons = 20
)

type BotConfig struct {
	UpdateTimeout int
	// OwnerChatID restricts the bot to one chat. Zero serves any chat.
	OwnerChatID int64
}

// sender is the part of the Telegram API the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves one task collection over Telegram. Updates are handled one at
// a time in the polling goroutine.
type Bot struct {
	client *tgbotapi.BotAPI
	api    sender

	cfg      BotConfig
	username string
	svc      *service.TaskService
	logger   lgr.L
}

func NewBot(cfg BotConfig, token string, svc *service.TaskService, logger lgr.L) (*Bot, error) {
	if logger == nil {
		logger = lgr.NoOp
	}
	if err := tgbotapi.SetLogger(botLogger{logger}); err != nil {
		return nil, fmt.Errorf("could not set bot logger: %w", err)
	}
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("could not init bot: %w", err)
	}
	b := newBot(cfg, client, client.Self.UserName, svc, logger)
	b.client = client
	return b, nil
}

func newBot(cfg BotConfig, api sender, username string, svc *service.TaskService, logger lgr.L) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		username: username,
		svc:      svc,
		logger:   logger,
	}
}

func (b *Bot) Username() string {
	return b.username
}

func (b *Bot) SetDebug(debug bool) {
	if b.client != nil {
		b.client.Debug = debug
	}
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.client.GetUpdatesChan(u)
	defer b.client.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.Logf("[ERROR] handling update %d: %v", update.UpdateID, err)
			}
		case <-ctx.Done():
			b.logger.Logf("[DEBUG] stopped: %v", ctx.Err())
			return
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return b.handleCallbackQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil { // ignore any non-Message updates
		return nil
	}
	if !b.allowed(msg.Chat.ID) {
		return b.reply(msg.Chat.ID, "⛔ This task tracker belongs to another chat.")
	}

	command, args := msg.Command(), msg.CommandArguments()
	if !msg.IsCommand() {
		var ok bool
		command, args, ok = parseCommand(msg.Text, b.username)
		if !ok {
			return b.reply(msg.Chat.ID, "Send /help to see what I can do.")
		}
	}
	return b.handleCommand(ctx, msg.Chat.ID, command, args)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start", "help":
		return b.showMainMenu(chatID)
	case "list":
		return b.sendEntries(chatID, "📋 All tasks", b.svc.AllTasks())
	case "todo":
		return b.sendEntries(chatID, "⏳ "+statusLabel(false), b.svc.TasksByStatus(false))
	case "done_list":
		return b.sendEntries(chatID, "✅ "+statusLabel(true), b.svc.TasksByStatus(true))
	case "add", "personal", "school":
		return b.addCommand(ctx, chatID, command, args)
	case "done":
		return b.positionCommand(ctx, chatID, args, b.svc.CompleteTask, "Task has been marked as completed.")
	case "remove":
		return b.positionCommand(ctx, chatID, args, b.svc.RemoveTask, "Task has been removed successfully.")
	case "status":
		return b.statusCommand(chatID)
	default:
		return b.reply(chatID, "Unknown command.")
	}
}

const helpText = `🗂 Task tracker

/add title | description | due date
/personal title | description | due date | urgency 1-10
/school title | description | due date | subject | study minutes
/list, /todo, /done_list
/done N, /remove N

Due dates are DD/MM/YYYY. N is the task number shown in the lists.`

func (b *Bot) showMainMenu(chatID int64) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 All tasks", callbackList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ Not completed", callbackTodo),
			tgbotapi.NewInlineKeyboardButtonData("✅ Completed", callbackCompleted),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Status", callbackStatus),
		),
	)

	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) statusCommand(chatID int64) error {
	storage := "in memory only"
	if b.svc.Persistent() {
		storage = "saved to file"
	}
	text := fmt.Sprintf(
		"🤖 Task tracker of %s\n\n📝 Tasks: %d (%d not completed)\n💾 %s\n📊 Version: %s",
		b.svc.Username(), len(b.svc.AllTasks()), len(b.svc.TasksByStatus(false)), storage, version.String(),
	)
	return b.reply(chatID, text)
}

func (b *Bot) addCommand(ctx context.Context, chatID int64, command, args string) error {
	task, err := parseTaskArgs(command, args)
	if err != nil {
		return b.reply(chatID, fmt.Sprintf("Failed to add the task: %v.\n\n%s", err, helpText))
	}

	entry, err := b.svc.AddTask(ctx, task)
	if err != nil {
		return b.replySaveErr(chatID, err)
	}
	return b.reply(chatID, "✨ Task added\n\n"+renderEntry(entry, plainPalette()))
}

func (b *Bot) positionCommand(
	ctx context.Context,
	chatID int64,
	args string,
	op func(context.Context, int) (model.Task, error),
	success string,
) error {
	pos, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return b.reply(chatID, "Please give the task number, for example /done 0.")
	}

	_, err = op(ctx, pos)
	if errors.Is(err, model.ErrInvalidIndex) {
		return b.reply(chatID, "Task ID is not valid.")
	}
	if err != nil {
		return b.replySaveErr(chatID, err)
	}
	return b.reply(chatID, success)
}

func (b *Bot) sendEntries(chatID int64, title string, entries []model.TaskEntry) error {
	msg := tgbotapi.NewMessage(chatID, title+"\n\n"+renderEntries(entries, plainPalette()))
	if kb, ok := taskKeyboard(entries); ok {
		msg.ReplyMarkup = kb
	}
	_, err := b.api.Send(msg)
	return err
}

// taskKeyboard has one row per task. Buttons carry the task's stable ID so
// that a stale list never acts on a different task.
func taskKeyboard(entries []model.TaskEntry) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range entries {
		if len(rows) == maxTaskButtons {
			break
		}
		var row []tgbotapi.InlineKeyboardButton
		if !e.Task.Completed {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ %d", e.Position), callbackDonePrefix+e.Task.ID))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("🗑 %d", e.Position), callbackRemovePrefix+e.Task.ID))
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Logf("[WARN] answering callback query: %v", err)
	}
	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}

	chatID := query.Message.Chat.ID
	if !b.allowed(chatID) {
		return nil
	}

	data := query.Data
	switch {
	case data == callbackList:
		return b.handleCommand(ctx, chatID, "list", "")
	case data == callbackTodo:
		return b.handleCommand(ctx, chatID, "todo", "")
	case data == callbackCompleted:
		return b.handleCommand(ctx, chatID, "done_list", "")
	case data == callbackStatus:
		return b.statusCommand(chatID)
	case strings.HasPrefix(data, callbackDonePrefix):
		return b.idCallback(ctx, chatID, strings.TrimPrefix(data, callbackDonePrefix), b.svc.CompleteTaskByID, "marked as completed")
	case strings.HasPrefix(data, callbackRemovePrefix):
		return b.idCallback(ctx, chatID, strings.TrimPrefix(data, callbackRemovePrefix), b.svc.RemoveTaskByID, "removed")
	default:
		return nil
	}
}

func (b *Bot) idCallback(
	ctx context.Context,
	chatID int64,
	id string,
	op func(context.Context, string) (model.Task, error),
	verb string,
) error {
	task, err := op(ctx, id)
	if errors.Is(err, model.ErrTaskNotFound) {
		return b.reply(chatID, "This task no longer exists.")
	}
	if err != nil {
		return b.replySaveErr(chatID, err)
	}
	return b.reply(chatID, fmt.Sprintf("Task %q %s.", task.Title, verb))
}

func (b *Bot) replySaveErr(chatID int64, err error) error {
	if !errors.Is(err, service.ErrSaveFailed) {
		return err
	}
	b.logger.Logf("[WARN] %v", err)
	return b.reply(chatID, "⚠️ The change was applied but could not be saved.")
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) allowed(chatID int64) bool {
	return b.cfg.OwnerChatID == 0 || b.cfg.OwnerChatID == chatID
}

// parseCommand recognizes "@bot /command args" written as plain text.
func parseCommand(text string, botUsername string) (string, string, bool) {
	prefix := "@" + botUsername + " /"
	if botUsername == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	command, args, _ := strings.Cut(strings.TrimPrefix(text, prefix), " ")
	return command, strings.TrimSpace(args), true
}

// parseTaskArgs builds a task from "|" separated arguments in the order
// title, description, due date, then the variant fields of command.
func parseTaskArgs(command, args string) (model.Task, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	arg := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	title, description, dueDate := arg(0), arg(1), arg(2)
	if title == "" {
		return model.Task{}, errors.New("title is required")
	}

	switch command {
	case "personal":
		urgency, err := strconv.Atoi(arg(3))
		if err != nil {
			return model.Task{}, fmt.Errorf("urgency level %q is not a number", arg(3))
		}
		return model.NewPersonalTask(title, description, dueDate, urgency), nil
	case "school":
		studyTime, err := strconv.Atoi(arg(4))
		if err != nil {
			return model.Task{}, fmt.Errorf("study time %q is not a number", arg(4))
		}
		return model.NewSchoolTask(title, description, dueDate, arg(3), studyTime), nil
	default:
		return model.NewTask(title, description, dueDate), nil
	}
}

// botLogger routes the Telegram library logs to lgr.
type botLogger struct {
	l lgr.L
}

func (l botLogger) Printf(format string, args ...interface{}) {
	l.l.Logf("[DEBUG] telegram: "+format, args...)
}

func (l botLogger) Println(v ...interface{}) {
	l.l.Logf("[DEBUG] telegram: %s", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}
