package handler

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type EventKind string

const (
	EventCommand     EventKind = "command"
	EventFreeText    EventKind = "free_text"
	EventButtonPress EventKind = "button_press"
)

// ChatEventRequest is one update forwarded by the chat gateway.
type ChatEventRequest struct {
	UserID  int64  `json:"user_id" binding:"required,gt=0"`
	ChatID  int64  `json:"chat_id" binding:"required"`
	Kind    string `json:"kind" binding:"required,chat_event_kind"`
	Payload string `json:"payload" binding:"max=4096"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error

	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())

			return
		}

		err = v.RegisterValidation("chat_event_kind", func(fl validator.FieldLevel) bool {
			switch EventKind(fl.Field().String()) {
			case EventCommand, EventFreeText, EventButtonPress:
				return true
			default:
				return false
			}
		})
	})

	return err
}
