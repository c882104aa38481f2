package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/export"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/handler"
	"github.com/KasumiMercury/primind-expense-assistant/internal/infra/pendingstore"
	"github.com/KasumiMercury/primind-expense-assistant/internal/testutil"
)

const testUser int64 = 1001

type fixture struct {
	router     *gin.Engine
	handler    *handler.ChatHandler
	clock      *clockwork.FakeClock
	expenses   *testutil.MemoryExpenseRepository
	schedules  *testutil.MemoryReminderScheduleRepository
	dispatcher *testutil.RecordingDispatcher
}

func setupTestRouter(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.RegisterValidators())

	f := &fixture{
		clock:      clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)),
		expenses:   testutil.NewMemoryExpenseRepository(),
		schedules:  testutil.NewMemoryReminderScheduleRepository(),
		dispatcher: testutil.NewRecordingDispatcher(),
	}

	csv := export.NewCSVExporter(time.UTC)
	expenseUseCase := app.NewExpenseUseCase(f.expenses, csv, f.clock, time.UTC)
	resets := app.NewConfirmationStateMachine(
		pendingstore.NewMemoryStore(f.clock, 5*time.Minute),
		f.expenses,
		export.NewDeliveringExporter(csv, f.dispatcher),
		f.clock,
		time.Minute,
		nil,
	)
	reminders := app.NewReminderScheduler(f.schedules, f.expenses, f.dispatcher, f.clock, time.UTC, nil)
	t.Cleanup(reminders.Close)

	f.handler = handler.NewChatHandler(expenseUseCase, resets, reminders, f.dispatcher)

	f.router = gin.New()
	api := f.router.Group("/api/v1")
	f.handler.RegisterRoutes(api)

	return f
}

func (f *fixture) send(t *testing.T, kind, payload string) (int, handler.EventResponse) {
	t.Helper()

	body, _ := json.Marshal(map[string]any{
		"user_id": testUser,
		"chat_id": testUser,
		"kind":    kind,
		"payload": payload,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var response handler.EventResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	}

	return rec.Code, response
}

func (f *fixture) command(t *testing.T, payload string) []handler.ReplyResponse {
	t.Helper()

	code, response := f.send(t, "command", payload)
	require.Equal(t, http.StatusOK, code)

	return response.Replies
}

func TestHandleEventValidationError(t *testing.T) {
	f := setupTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "unknown kind",
			body: map[string]any{"user_id": testUser, "chat_id": testUser, "kind": "sticker", "payload": "x"},
		},
		{
			name: "missing user",
			body: map[string]any{"chat_id": testUser, "kind": "command", "payload": "/help"},
		},
		{
			name: "negative user",
			body: map[string]any{"user_id": -5, "chat_id": testUser, "kind": "command", "payload": "/help"},
		},
		{
			name: "missing chat",
			body: map[string]any{"user_id": testUser, "kind": "command", "payload": "/help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var response handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, "validation_error", response.Error)
		})
	}
}

func TestHelpCommandSuccess(t *testing.T) {
	f := setupTestRouter(t)

	for _, cmd := range []string{"/start", "/help", "/commands", "/HELP@expense_bot"} {
		replies := f.command(t, cmd)
		require.Len(t, replies, 1, cmd)
		assert.Equal(t, handler.MessageHelp, replies[0].Text)
		assert.Equal(t, testUser, replies[0].ChatID)
	}

	replies := f.command(t, "/chart")
	require.Len(t, replies, 1)
	assert.Equal(t, handler.MessageUnknownCommand, replies[0].Text)
}

func TestAddAndSummaryCommandsSuccess(t *testing.T) {
	f := setupTestRouter(t)

	replies := f.command(t, "/add 150 food lunch with team")
	require.Len(t, replies, 1)
	assert.Equal(t, "✅ Added 150.00 💵 in food\n📝 lunch with team", replies[0].Text)

	f.command(t, "/add 12.5 transport")
	assert.Equal(t, 2, f.expenses.Count(domain.MustUserID(testUser)))

	replies = f.command(t, "/daily")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "• food: 150.00 💵")
	assert.Contains(t, replies[0].Text, "• transport: 12.50 💵")
	assert.Contains(t, replies[0].Text, "💰 Total: 162.50")

	f.clock.Advance(24 * time.Hour)

	replies = f.command(t, "/daily")
	require.Len(t, replies, 1)
	assert.NotContains(t, replies[0].Text, "food")

	replies = f.command(t, "/monthly")
	assert.Contains(t, replies[0].Text, "💰 Total: 162.50")

	replies = f.command(t, "/summary")
	assert.Contains(t, replies[0].Text, "💰 Total: 162.50")
}

func TestAddCommandError(t *testing.T) {
	f := setupTestRouter(t)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "no arguments", payload: "/add", want: handler.MessageAddUsage},
		{name: "missing category", payload: "/add 150", want: handler.MessageAddUsage},
		{name: "not a number", payload: "/add lots food", want: handler.MessageInvalidAmount},
		{name: "zero amount", payload: "/add 0 food", want: handler.MessageInvalidAmount},
		{name: "negative amount", payload: "/add -3 food", want: handler.MessageInvalidAmount},
		{name: "sub-cent amount", payload: "/add 0.001 food", want: handler.MessageInvalidAmount},
		{name: "amount too large", payload: "/add 1e15 food", want: handler.MessageInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies := f.command(t, tt.payload)
			require.Len(t, replies, 1)
			assert.Equal(t, tt.want, replies[0].Text)
		})
	}

	assert.Zero(t, f.expenses.Count(domain.MustUserID(testUser)))
}

func TestExportCommandSuccess(t *testing.T) {
	f := setupTestRouter(t)

	replies := f.command(t, "/export")
	require.Len(t, replies, 1)
	assert.Equal(t, app.MessageNoDataToExport, replies[0].Text)

	f.command(t, "/add 150 food lunch")

	replies = f.command(t, "/export")
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Document)
	assert.Equal(t, app.ExportFilename, replies[0].Document.Filename)

	content := string(replies[0].Document.Content)
	assert.True(t, strings.HasPrefix(content, "Amount,Category,Note,Date\n"))
	assert.Contains(t, content, "150.00,food,lunch,2026-03-14")
}

func TestResetFlowSuccess(t *testing.T) {
	f := setupTestRouter(t)
	user := domain.MustUserID(testUser)

	f.command(t, "/add 150 food")
	f.command(t, "/add 20 coffee")

	replies := f.command(t, "/reset")
	require.Len(t, replies, 1)
	assert.Equal(t, app.MessageResetWarning, replies[0].Text)
	require.Len(t, replies[0].Buttons, 1)
	assert.Equal(t, handler.ButtonCancelReset, replies[0].Buttons[0].Data)

	replies = f.command(t, "/reset")
	assert.Equal(t, app.MessageResetAlreadyPending, replies[0].Text)

	code, response := f.send(t, "free_text", "CONFIRMED")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, response.Replies, 1)
	assert.Equal(t, app.MessageTypeConfirm, response.Replies[0].Text)
	assert.Equal(t, 2, f.expenses.Count(user))

	code, response = f.send(t, "free_text", "  confirm ")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, response.Replies, 1)
	assert.Equal(t, app.MessageResetProcessing, response.Replies[0].Text)

	f.handler.Wait()

	assert.Zero(t, f.expenses.Count(user))

	sent := f.dispatcher.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, app.NotificationBackup, sent[0].Kind)
	require.NotNil(t, sent[0].Document)
	assert.Equal(t, app.BackupFilename, sent[0].Document.Filename)
	assert.Equal(t, app.NotificationResetCompleted, sent[1].Kind)
	assert.Equal(t, app.MessageResetCompleted, sent[1].Text)
	assert.Equal(t, testUser, sent[1].ChatID)

	// The pending action is gone: the next free text gets no reply.
	code, response = f.send(t, "free_text", "CONFIRM")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, response.Replies)
}

func TestResetBackupFailureKeepsData(t *testing.T) {
	f := setupTestRouter(t)
	user := domain.MustUserID(testUser)

	f.command(t, "/add 150 food")
	f.command(t, "/reset")

	f.dispatcher.FailWith(errors.New("gateway down"))

	_, response := f.send(t, "free_text", "CONFIRM")
	require.Len(t, response.Replies, 1)
	assert.Equal(t, app.MessageResetProcessing, response.Replies[0].Text)

	f.handler.Wait()

	assert.Equal(t, 1, f.expenses.Count(user))
	assert.Zero(t, f.expenses.DeleteCalls())

	// The failed attempt cleared the pending action, so a new reset can start.
	replies := f.command(t, "/reset")
	assert.Equal(t, app.MessageResetWarning, replies[0].Text)
}

func TestCancelButtonSuccess(t *testing.T) {
	f := setupTestRouter(t)

	_, response := f.send(t, "button_press", handler.ButtonCancelReset)
	require.Len(t, response.Replies, 1)
	assert.Equal(t, app.MessageNoActiveReset, response.Replies[0].Text)

	f.command(t, "/add 150 food")
	f.command(t, "/reset")

	_, response = f.send(t, "button_press", handler.ButtonCancelReset)
	require.Len(t, response.Replies, 1)
	assert.Equal(t, app.MessageResetCancelled, response.Replies[0].Text)

	_, response = f.send(t, "free_text", "CONFIRM")
	assert.Empty(t, response.Replies)
	assert.Equal(t, 1, f.expenses.Count(domain.MustUserID(testUser)))

	_, response = f.send(t, "button_press", "something_else")
	assert.Empty(t, response.Replies)
}

func TestFreeTextWithoutResetIsIgnored(t *testing.T) {
	f := setupTestRouter(t)

	code, response := f.send(t, "free_text", "hello there")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, response.Replies)
}

func TestReminderCommandsSuccess(t *testing.T) {
	f := setupTestRouter(t)

	replies := f.command(t, "/reminder")
	assert.Equal(t, handler.MessageNoReminder, replies[0].Text)

	replies = f.command(t, "/setreminder 09:30")
	require.Len(t, replies, 1)
	assert.Equal(t, "⏰ Daily reminder set for 09:30.", replies[0].Text)

	replies = f.command(t, "/reminder")
	assert.Equal(t, "⏰ Daily reminder at 09:30\nNext: 2026-03-14 09:30", replies[0].Text)

	replies = f.command(t, "/reminderoff")
	assert.Equal(t, handler.MessageReminderOff, replies[0].Text)

	replies = f.command(t, "/reminder")
	assert.Equal(t, handler.MessageNoReminder, replies[0].Text)

	replies = f.command(t, "/reminderoff")
	assert.Equal(t, handler.MessageReminderOff, replies[0].Text)
}

func TestSetReminderCommandError(t *testing.T) {
	f := setupTestRouter(t)

	tests := []struct {
		payload string
		want    string
	}{
		{payload: "/setreminder", want: handler.MessageReminderUsage},
		{payload: "/setreminder 24:00", want: handler.MessageInvalidTime},
		{payload: "/setreminder 9", want: handler.MessageInvalidTime},
		{payload: "/setreminder ab:cd", want: handler.MessageInvalidTime},
		{payload: "/setreminder 09:60", want: handler.MessageInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			replies := f.command(t, tt.payload)
			require.Len(t, replies, 1)
			assert.Equal(t, tt.want, replies[0].Text)
		})
	}
}

func TestSetReminderPersistenceError(t *testing.T) {
	f := setupTestRouter(t)
	f.schedules.FailWith(errors.New("connection refused"))

	code, _ := f.send(t, "command", "/setreminder 09:30")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
