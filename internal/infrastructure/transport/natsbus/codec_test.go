package natsbus

import (
	"testing"

	"roundcheck/internal/ports"
)

func TestDecodeInboundPhoto(t *testing.T) {
	data := []byte(`{"user_chat_id":42,"user_name":"petrov","message_ref":1001,"kind":"photo","photo_ref":"file-abc","caption":"loose wire"}`)

	event, err := decodeInbound(data)
	if err != nil {
		t.Fatalf("decodeInbound: %v", err)
	}
	if event.ID == "" {
		t.Error("expected generated event id")
	}
	if event.Kind != ports.EventPhoto {
		t.Errorf("kind = %q, want photo", event.Kind)
	}
	if event.UserChatID != 42 || event.MessageRef != 1001 {
		t.Errorf("identity = (%d,%d), want (42,1001)", event.UserChatID, event.MessageRef)
	}
	if event.PhotoRef != "file-abc" || event.Caption != "loose wire" {
		t.Errorf("photo = (%q,%q)", event.PhotoRef, event.Caption)
	}
}

func TestDecodeInboundAction(t *testing.T) {
	data := []byte(`{"user_chat_id":7,"kind":"action","action":"admin-approve:15"}`)

	event, err := decodeInbound(data)
	if err != nil {
		t.Fatalf("decodeInbound: %v", err)
	}
	if event.Kind != ports.EventAction {
		t.Fatalf("kind = %q, want action", event.Kind)
	}
	if event.Action.Kind != ports.ActionApproveIssue || event.Action.TargetID != 15 {
		t.Errorf("action = %+v, want admin-approve target 15", event.Action)
	}
}

func TestDecodeInboundRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"malformed json":     `{"user_chat_id":`,
		"missing chat id":    `{"kind":"text","text":"hi"}`,
		"unknown kind":       `{"user_chat_id":1,"kind":"sticker"}`,
		"photo without ref":  `{"user_chat_id":1,"kind":"photo","caption":"x"}`,
		"unparseable action": `{"user_chat_id":1,"kind":"action","action":"bogus-verb"}`,
	}
	for name, raw := range cases {
		if _, err := decodeInbound([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEncodeButtons(t *testing.T) {
	buttons := []ports.Button{
		{Label: "OK", Action: ports.Action{Kind: ports.ActionApproveIssue, TargetID: 3}},
		{Label: "Return", Action: ports.Action{Kind: ports.ActionReturnIssue, TargetID: 3}},
	}

	encoded := encodeButtons(buttons)
	if len(encoded) != 2 {
		t.Fatalf("len = %d, want 2", len(encoded))
	}
	if encoded[0].Action != "admin-approve:3" || encoded[1].Action != "admin-return:3" {
		t.Errorf("actions = %q, %q", encoded[0].Action, encoded[1].Action)
	}

	if got := encodeButtons(nil); got != nil {
		t.Errorf("nil buttons should encode to nil, got %v", got)
	}
}
