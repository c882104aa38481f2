package handler

import "github.com/KasumiMercury/primind-expense-assistant/internal/app"

const ButtonCancelReset = "cancel_reset"

type ButtonResponse struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

type DocumentResponse struct {
	Filename    string `json:"filename"`
	Caption     string `json:"caption,omitempty"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

type ReplyResponse struct {
	ChatID   int64             `json:"chat_id"`
	Text     string            `json:"text,omitempty"`
	Document *DocumentResponse `json:"document,omitempty"`
	Buttons  []ButtonResponse  `json:"buttons,omitempty"`
}

type EventResponse struct {
	Replies []ReplyResponse `json:"replies"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var cancelButton = ButtonResponse{Text: "❎ Cancel", Data: ButtonCancelReset}

func textReply(chatID int64, text string) ReplyResponse {
	return ReplyResponse{ChatID: chatID, Text: text}
}

func resetPrompt(chatID int64, text string) ReplyResponse {
	return ReplyResponse{
		ChatID:  chatID,
		Text:    text,
		Buttons: []ButtonResponse{cancelButton},
	}
}

func FromDocument(chatID int64, doc *app.Document) ReplyResponse {
	return ReplyResponse{
		ChatID: chatID,
		Document: &DocumentResponse{
			Filename:    doc.Filename,
			Caption:     doc.Caption,
			ContentType: doc.ContentType,
			Content:     doc.Content,
		},
	}
}
