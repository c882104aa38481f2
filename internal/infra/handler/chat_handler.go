package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-expense-assistant/internal/app"
	"github.com/KasumiMercury/primind-expense-assistant/internal/domain"
	"github.com/KasumiMercury/primind-expense-assistant/internal/observability/logging"
)

type ResetFlow interface {
	RequestConfirmation(ctx context.Context, userID domain.UserID, kind string) error
	Begin(ctx context.Context, userID domain.UserID, raw string) (app.ConfirmOutcome, *app.ResetClaim, error)
	Cancel(ctx context.Context, userID domain.UserID) (app.CancelOutcome, error)
}

type ReminderService interface {
	SetReminderFromText(ctx context.Context, userID domain.UserID, text string) (app.ReminderOutput, error)
	RemoveReminder(ctx context.Context, userID domain.UserID) error
	GetReminder(ctx context.Context, userID domain.UserID) (app.ReminderOutput, error)
}

// ChatHandler turns chat updates into replies. Work that outlives the request
// (the reset after its claim) reports back through the dispatcher.
type ChatHandler struct {
	expenses   app.ExpenseUseCase
	resets     ResetFlow
	reminders  ReminderService
	dispatcher app.NotificationDispatcher

	wg sync.WaitGroup
}

func NewChatHandler(
	expenses app.ExpenseUseCase,
	resets ResetFlow,
	reminders ReminderService,
	dispatcher app.NotificationDispatcher,
) *ChatHandler {
	return &ChatHandler{
		expenses:   expenses,
		resets:     resets,
		reminders:  reminders,
		dispatcher: dispatcher,
	}
}

func (h *ChatHandler) HandleEvent(c *gin.Context) {
	var req ChatEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("request validation failed",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Field:   "",
		})

		return
	}

	userID, err := domain.NewUserID(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Field:   "user_id",
		})

		return
	}

	ctx := c.Request.Context()

	slog.DebugContext(ctx, "handling chat event",
		"kind", req.Kind,
		"user_id", req.UserID,
		"chat_id", req.ChatID,
	)

	var replies []ReplyResponse

	switch EventKind(req.Kind) {
	case EventCommand:
		replies, err = h.handleCommand(ctx, userID, req)
	case EventFreeText:
		replies, err = h.handleFreeText(ctx, userID, req)
	case EventButtonPress:
		replies, err = h.handleButton(ctx, userID, req)
	}

	if err != nil {
		h.handleError(c, err)

		return
	}

	if replies == nil {
		replies = []ReplyResponse{}
	}

	c.JSON(http.StatusOK, EventResponse{Replies: replies})
}

func (h *ChatHandler) handleCommand(ctx context.Context, userID domain.UserID, req ChatEventRequest) ([]ReplyResponse, error) {
	cmd, ok := ParseCommand(req.Payload)
	if !ok {
		return []ReplyResponse{textReply(req.ChatID, MessageUnknownCommand)}, nil
	}

	switch cmd.Name {
	case "start", "help", "commands":
		return []ReplyResponse{textReply(req.ChatID, MessageHelp)}, nil
	case "add":
		return h.addExpense(ctx, req, cmd)
	case "daily":
		return h.summary(ctx, req, app.PeriodDaily)
	case "monthly":
		return h.summary(ctx, req, app.PeriodMonthly)
	case "summary":
		return h.summary(ctx, req, app.PeriodAll)
	case "export":
		return h.export(ctx, req)
	case "reset":
		return h.requestReset(ctx, userID, req)
	case "setreminder":
		return h.setReminder(ctx, userID, req, cmd)
	case "reminderoff":
		return h.removeReminder(ctx, userID, req)
	case "reminder":
		return h.showReminder(ctx, userID, req)
	default:
		return []ReplyResponse{textReply(req.ChatID, MessageUnknownCommand)}, nil
	}
}

func (h *ChatHandler) addExpense(ctx context.Context, req ChatEventRequest, cmd Command) ([]ReplyResponse, error) {
	amount, category, note, ok := AddArgs(cmd.Args)
	if !ok {
		return []ReplyResponse{textReply(req.ChatID, MessageAddUsage)}, nil
	}

	output, err := h.expenses.AddExpense(ctx, app.AddExpenseInput{
		UserID:   req.UserID,
		Amount:   amount,
		Category: category,
		Note:     note,
	})
	if err != nil {
		var validationErr *app.ValidationError
		if errors.As(err, &validationErr) {
			if validationErr.Field == "amount" {
				return []ReplyResponse{textReply(req.ChatID, MessageInvalidAmount)}, nil
			}

			return []ReplyResponse{textReply(req.ChatID, MessageAddUsage)}, nil
		}

		return nil, err
	}

	slog.InfoContext(ctx, "expense added",
		"user_id", req.UserID,
		"expense_id", output.ID,
	)

	return []ReplyResponse{textReply(req.ChatID, output.Text)}, nil
}

func (h *ChatHandler) summary(ctx context.Context, req ChatEventRequest, period app.ReportPeriod) ([]ReplyResponse, error) {
	output, err := h.expenses.Summary(ctx, app.SummaryInput{
		UserID: req.UserID,
		Period: period,
	})
	if err != nil {
		return nil, err
	}

	return []ReplyResponse{textReply(req.ChatID, output.Text)}, nil
}

func (h *ChatHandler) export(ctx context.Context, req ChatEventRequest) ([]ReplyResponse, error) {
	output, err := h.expenses.Export(ctx, app.ExportInput{UserID: req.UserID})
	if errors.Is(err, app.ErrNotFound) {
		return []ReplyResponse{textReply(req.ChatID, app.MessageNoDataToExport)}, nil
	}

	if err != nil {
		return nil, err
	}

	return []ReplyResponse{FromDocument(req.ChatID, output.Document)}, nil
}

func (h *ChatHandler) requestReset(ctx context.Context, userID domain.UserID, req ChatEventRequest) ([]ReplyResponse, error) {
	err := h.resets.RequestConfirmation(ctx, userID, string(domain.ActionReset))
	if errors.Is(err, app.ErrConflict) {
		return []ReplyResponse{resetPrompt(req.ChatID, app.MessageResetAlreadyPending)}, nil
	}

	if err != nil {
		return nil, err
	}

	return []ReplyResponse{resetPrompt(req.ChatID, app.MessageResetWarning)}, nil
}

// handleFreeText only answers when a reset is waiting for its token.
func (h *ChatHandler) handleFreeText(ctx context.Context, userID domain.UserID, req ChatEventRequest) ([]ReplyResponse, error) {
	outcome, claim, err := h.resets.Begin(ctx, userID, req.Payload)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case app.ConfirmTokenMismatch:
		return []ReplyResponse{resetPrompt(req.ChatID, app.MessageTypeConfirm)}, nil
	case app.ConfirmClaimed:
		h.runReset(ctx, claim, req.ChatID)

		return []ReplyResponse{textReply(req.ChatID, app.MessageResetProcessing)}, nil
	default:
		return nil, nil
	}
}

func (h *ChatHandler) handleButton(ctx context.Context, userID domain.UserID, req ChatEventRequest) ([]ReplyResponse, error) {
	if req.Payload != ButtonCancelReset {
		slog.DebugContext(ctx, "ignoring unknown button", "payload", req.Payload)

		return nil, nil
	}

	outcome, err := h.resets.Cancel(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case app.CancelCancelled:
		return []ReplyResponse{textReply(req.ChatID, app.MessageResetCancelled)}, nil
	case app.CancelInProgress:
		return []ReplyResponse{textReply(req.ChatID, app.MessageResetInProgress)}, nil
	default:
		return []ReplyResponse{textReply(req.ChatID, app.MessageNoActiveReset)}, nil
	}
}

// runReset executes a claimed reset off the request path and reports the
// outcome to the chat it came from.
func (h *ChatHandler) runReset(ctx context.Context, claim *app.ResetClaim, chatID int64) {
	ctx = logging.WithModule(context.WithoutCancel(ctx), logging.Module("reset"))

	h.wg.Add(1)

	go func() {
		defer h.wg.Done()

		kind := app.NotificationResetCompleted
		text := app.MessageResetCompleted

		if _, err := claim.Execute(ctx); err != nil {
			kind = app.NotificationResetFailed
			text = app.MessageResetFailed

			if errors.Is(err, app.ErrBackupFailure) {
				text = app.MessageResetBackupFailed
			}
		}

		n := app.NewNotification(claim.UserID(), kind, text)
		n.ChatID = chatID

		if err := h.dispatcher.Dispatch(ctx, n); err != nil {
			slog.ErrorContext(ctx, "failed to deliver reset outcome",
				"user_id", claim.UserID().Int64(),
				"kind", string(kind),
				"error", err,
			)
		}
	}()
}

// Wait blocks until every reset started by this handler has finished.
func (h *ChatHandler) Wait() {
	h.wg.Wait()
}

func (h *ChatHandler) setReminder(ctx context.Context, userID domain.UserID, req ChatEventRequest, cmd Command) ([]ReplyResponse, error) {
	if cmd.Args == "" {
		return []ReplyResponse{textReply(req.ChatID, MessageReminderUsage)}, nil
	}

	output, err := h.reminders.SetReminderFromText(ctx, userID, cmd.Args)
	if app.IsValidationError(err) {
		return []ReplyResponse{textReply(req.ChatID, MessageInvalidTime)}, nil
	}

	if err != nil {
		return nil, err
	}

	return []ReplyResponse{textReply(req.ChatID, fmt.Sprintf("⏰ Daily reminder set for %s.", output.TimeOfDay))}, nil
}

func (h *ChatHandler) removeReminder(ctx context.Context, userID domain.UserID, req ChatEventRequest) ([]ReplyResponse, error) {
	if err := h.reminders.RemoveReminder(ctx, userID); err != nil {
		return nil, err
	}

	return []ReplyResponse{textReply(req.ChatID, MessageReminderOff)}, nil
}

func (h *ChatHandler) showReminder(ctx context.Context, userID domain.UserID, req ChatEventRequest) ([]ReplyResponse, error) {
	output, err := h.reminders.GetReminder(ctx, userID)
	if errors.Is(err, app.ErrNotFound) {
		return []ReplyResponse{textReply(req.ChatID, MessageNoReminder)}, nil
	}

	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("⏰ Daily reminder at %s", output.TimeOfDay)
	if !output.NextFireAt.IsZero() {
		text += "\nNext: " + output.NextFireAt.Format("2006-01-02 15:04")
	}

	return []ReplyResponse{textReply(req.ChatID, text)}, nil
}

func (h *ChatHandler) handleError(c *gin.Context, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

		return
	}

	if errors.Is(err, app.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
			Field:   "",
		})

		return
	}

	if errors.Is(err, app.ErrPersistence) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "storage is temporarily unavailable",
			Field:   "",
		})

		return
	}

	slog.ErrorContext(c.Request.Context(), "chat event failed", "error", err)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
		Field:   "",
	})
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/events", h.HandleEvent)
}
