package app

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/tasks/internal/model"
	"github.com/agalitsyn/tasks/internal/service"
)

const testChatID int64 = 42

type fakeSender struct {
	sent      []tgbotapi.MessageConfig
	requested []tgbotapi.Chattable
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.requested = append(s.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("no message sent")
	}
	return s.sent[len(s.sent)-1].Text
}

func newTestBot(t *testing.T, cfg BotConfig) (*Bot, *fakeSender, *service.TaskService) {
	t.Helper()
	svc, err := service.New(model.NewUser("tester"), nil, nil)
	if err != nil {
		t.Fatalf("service.New() err = %v", err)
	}
	api := &fakeSender{}
	return newBot(cfg, api, "tasks_bot", svc, nil), api, svc
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	command, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(command)},
			},
		},
	}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "q1",
			Data:    data,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		},
	}
}

func handle(t *testing.T, b *Bot, update tgbotapi.Update) {
	t.Helper()
	if err := b.handleUpdate(context.Background(), update); err != nil {
		t.Fatalf("handleUpdate() err = %v", err)
	}
}

func TestBot_AddAndList(t *testing.T) {
	b, api, svc := newTestBot(t, BotConfig{})

	handle(t, b, commandUpdate(testChatID, "/add Buy milk | Get 2% milk | 20/05/2024"))
	if text := api.lastText(t); !strings.Contains(text, "Task added") || !strings.Contains(text, "Title: Buy milk") {
		t.Fatalf("reply = %q", text)
	}
	handle(t, b, commandUpdate(testChatID, "/personal Call mom | | 02/06/2024 | 7"))
	handle(t, b, commandUpdate(testChatID, "/school Essay | History essay | 03/06/2024 | History | 90"))

	all := svc.AllTasks()
	if len(all) != 3 {
		t.Fatalf("AllTasks() len = %d, want 3", len(all))
	}
	if all[1].Task.Kind != model.TaskKindPersonal || all[1].Task.UrgencyLevel != 7 {
		t.Fatalf("task 1 = %+v", all[1].Task)
	}
	if all[2].Task.Subject != "History" || all[2].Task.StudyTime != 90 {
		t.Fatalf("task 2 = %+v", all[2].Task)
	}

	handle(t, b, commandUpdate(testChatID, "/list"))
	last := api.sent[len(api.sent)-1]
	if !strings.Contains(last.Text, "Task 2 (School)") {
		t.Fatalf("list = %q", last.Text)
	}
	kb, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 3 {
		t.Fatalf("ReplyMarkup = %#v, want keyboard with 3 rows", last.ReplyMarkup)
	}
}

func TestBot_AddInvalid(t *testing.T) {
	b, api, svc := newTestBot(t, BotConfig{})

	for _, text := range []string{
		"/add",
		"/add  | description",
		"/personal Call | | | urgent",
		"/school Essay | | | History",
	} {
		handle(t, b, commandUpdate(testChatID, text))
		if reply := api.lastText(t); !strings.HasPrefix(reply, "Failed to add the task") {
			t.Fatalf("%s: reply = %q", text, reply)
		}
	}
	if len(svc.AllTasks()) != 0 {
		t.Fatalf("AllTasks() = %+v, want none", svc.AllTasks())
	}
}

func TestBot_DoneAndRemoveByPosition(t *testing.T) {
	b, api, svc := newTestBot(t, BotConfig{})
	ctx := context.Background()
	svc.AddTask(ctx, model.NewTask("a", "", ""))
	svc.AddTask(ctx, model.NewTask("b", "", ""))

	handle(t, b, commandUpdate(testChatID, "/done 1"))
	if got := api.lastText(t); got != "Task has been marked as completed." {
		t.Fatalf("reply = %q", got)
	}
	handle(t, b, commandUpdate(testChatID, "/done 5"))
	if got := api.lastText(t); got != "Task ID is not valid." {
		t.Fatalf("reply = %q", got)
	}
	handle(t, b, commandUpdate(testChatID, "/remove -1"))
	if got := api.lastText(t); got != "Task ID is not valid." {
		t.Fatalf("reply = %q", got)
	}
	handle(t, b, commandUpdate(testChatID, "/remove x"))
	if got := api.lastText(t); !strings.HasPrefix(got, "Please give the task number") {
		t.Fatalf("reply = %q", got)
	}
	handle(t, b, commandUpdate(testChatID, "/remove 0"))
	if got := api.lastText(t); got != "Task has been removed successfully." {
		t.Fatalf("reply = %q", got)
	}

	all := svc.AllTasks()
	if len(all) != 1 || all[0].Task.Title != "b" || !all[0].Task.Completed {
		t.Fatalf("AllTasks() = %+v", all)
	}

	handle(t, b, commandUpdate(testChatID, "/done_list"))
	if got := api.lastText(t); !strings.Contains(got, "Task 0 (Generic)") {
		t.Fatalf("done list = %q", got)
	}
	handle(t, b, commandUpdate(testChatID, "/todo"))
	if got := api.lastText(t); !strings.Contains(got, "No tasks.") {
		t.Fatalf("todo list = %q", got)
	}
}

func TestBot_CallbackUsesStableID(t *testing.T) {
	b, api, svc := newTestBot(t, BotConfig{})
	ctx := context.Background()
	svc.AddTask(ctx, model.NewTask("a", "", ""))
	c, _ := svc.AddTask(ctx, model.NewTask("c", "", ""))

	// A list rendered before the removal still points at task c.
	svc.RemoveTask(ctx, 0)

	handle(t, b, callbackUpdate(testChatID, callbackDonePrefix+c.Task.ID))
	if len(api.requested) != 1 {
		t.Fatalf("callback answered %d times, want 1", len(api.requested))
	}
	if got := api.lastText(t); got != `Task "c" marked as completed.` {
		t.Fatalf("reply = %q", got)
	}

	handle(t, b, callbackUpdate(testChatID, callbackRemovePrefix+c.Task.ID))
	if len(svc.AllTasks()) != 0 {
		t.Fatalf("AllTasks() = %+v, want none", svc.AllTasks())
	}

	handle(t, b, callbackUpdate(testChatID, callbackRemovePrefix+c.Task.ID))
	if got := api.lastText(t); got != "This task no longer exists." {
		t.Fatalf("reply = %q", got)
	}
}

func TestBot_MenuCallbacks(t *testing.T) {
	b, api, _ := newTestBot(t, BotConfig{})

	handle(t, b, commandUpdate(testChatID, "/start"))
	if _, ok := api.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Fatalf("/start ReplyMarkup = %#v", api.sent[0].ReplyMarkup)
	}

	handle(t, b, callbackUpdate(testChatID, callbackStatus))
	if got := api.lastText(t); !strings.Contains(got, "Tasks: 0") || !strings.Contains(got, "in memory only") {
		t.Fatalf("status = %q", got)
	}
	handle(t, b, callbackUpdate(testChatID, callbackList))
	if got := api.lastText(t); !strings.HasPrefix(got, "📋 All tasks") {
		t.Fatalf("list = %q", got)
	}
}

func TestBot_OwnerOnly(t *testing.T) {
	b, api, svc := newTestBot(t, BotConfig{OwnerChatID: testChatID})

	handle(t, b, commandUpdate(7, "/add intruder"))
	if got := api.lastText(t); !strings.HasPrefix(got, "⛔") {
		t.Fatalf("reply = %q", got)
	}
	handle(t, b, callbackUpdate(7, callbackList))
	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	if len(svc.AllTasks()) != 0 {
		t.Fatalf("AllTasks() = %+v, want none", svc.AllTasks())
	}
}

func TestBot_MentionCommand(t *testing.T) {
	b, _, svc := newTestBot(t, BotConfig{})

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "@tasks_bot /add Buy milk",
		Chat: &tgbotapi.Chat{ID: testChatID},
	}}
	handle(t, b, update)
	if all := svc.AllTasks(); len(all) != 1 || all[0].Task.Title != "Buy milk" {
		t.Fatalf("AllTasks() = %+v", all)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    string
		ok      bool
	}{
		{"@bot /list", "list", "", true},
		{"@bot /done 3", "done", "3", true},
		{"@other /list", "", "", false},
		{"hello", "", "", false},
	}
	for _, tt := range tests {
		command, args, ok := parseCommand(tt.text, "bot")
		if command != tt.command || args != tt.args || ok != tt.ok {
			t.Errorf("parseCommand(%q) = %q, %q, %v", tt.text, command, args, ok)
		}
	}
}
