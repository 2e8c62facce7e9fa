package natsbus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
)

// Subjects of the chat bridge. The bridge process owns the actual chat
// platform connection; this engine only speaks JSON over NATS.
const (
	SubjectInbound   = "chat.inbound"
	SubjectSendText  = "chat.outbound.send_text"
	SubjectSendPhoto = "chat.outbound.send_photo"
	SubjectDelete    = "chat.outbound.delete"
)

type inboundPayload struct {
	UserChatID int64  `json:"user_chat_id"`
	UserName   string `json:"user_name"`
	MessageRef int64  `json:"message_ref"`
	Kind       string `json:"kind"`
	PhotoRef   string `json:"photo_ref,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Text       string `json:"text,omitempty"`
	Action     string `json:"action,omitempty"`
}

type buttonPayload struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

type sendTextPayload struct {
	ChatID   int64           `json:"chat_id"`
	ThreadID int64           `json:"thread_id,omitempty"`
	Body     string          `json:"body"`
	Buttons  []buttonPayload `json:"buttons,omitempty"`
}

type sendPhotoPayload struct {
	ChatID   int64           `json:"chat_id"`
	ThreadID int64           `json:"thread_id,omitempty"`
	PhotoRef string          `json:"photo_ref"`
	Caption  string          `json:"caption,omitempty"`
	Buttons  []buttonPayload `json:"buttons,omitempty"`
}

type deletePayload struct {
	ChatID     int64 `json:"chat_id"`
	MessageRef int64 `json:"message_ref"`
}

type sendReply struct {
	MessageRef int64  `json:"message_ref"`
	Error      string `json:"error,omitempty"`
}

// decodeInbound turns a bridge message into a ports.Event, assigning a
// fresh event id for log correlation. Unknown actions are rejected here so
// the engine only ever sees tagged values.
func decodeInbound(data []byte) (ports.Event, error) {
	var payload inboundPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ports.Event{}, errs.Wrap(err, "unmarshal inbound payload")
	}
	if payload.UserChatID == 0 {
		return ports.Event{}, fmt.Errorf("inbound payload missing user_chat_id")
	}

	event := ports.Event{
		ID:         uuid.NewString(),
		UserChatID: payload.UserChatID,
		UserName:   payload.UserName,
		MessageRef: payload.MessageRef,
	}

	switch ports.EventKind(payload.Kind) {
	case ports.EventPhoto:
		if strings.TrimSpace(payload.PhotoRef) == "" {
			return ports.Event{}, fmt.Errorf("photo event missing photo_ref")
		}
		event.Kind = ports.EventPhoto
		event.PhotoRef = payload.PhotoRef
		event.Caption = payload.Caption
	case ports.EventText:
		event.Kind = ports.EventText
		event.Text = payload.Text
	case ports.EventAction:
		action, err := ports.ParseAction(payload.Action)
		if err != nil {
			return ports.Event{}, err
		}
		event.Kind = ports.EventAction
		event.Action = action
	default:
		return ports.Event{}, fmt.Errorf("unknown inbound kind %q", payload.Kind)
	}

	return event, nil
}

func encodeButtons(buttons []ports.Button) []buttonPayload {
	if len(buttons) == 0 {
		return nil
	}
	out := make([]buttonPayload, 0, len(buttons))
	for _, b := range buttons {
		out = append(out, buttonPayload{Label: b.Label, Action: b.Action.Encode()})
	}
	return out
}
