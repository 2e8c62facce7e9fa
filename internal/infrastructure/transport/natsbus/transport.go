package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"roundcheck/internal/bootstrap/config"
	"roundcheck/internal/bootstrap/logging"
	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
)

const (
	requestTimeout = 10 * time.Second
	reconnectWait  = 2 * time.Second
)

// Transport bridges the engine to a chat platform over NATS. It implements
// both ports.Messenger (request-reply to the bridge) and ports.EventSource
// (subscription on the inbound subject).
type Transport struct {
	conn *nats.Conn
}

func Connect(ctx context.Context, cfg config.TransportConfig) (*Transport, error) {
	opts := []nats.Option{
		nats.Name("roundcheck"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logging.Warn(ctx, "nats disconnected", slog.Any("err", errs.Loggable(err)))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info(ctx, "nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", cfg.URL)
	}
	return &Transport{conn: conn}, nil
}

func (t *Transport) Close() {
	if t.conn != nil {
		t.conn.Drain()
	}
}

// Events subscribes to the inbound subject and delivers decoded events
// until ctx is cancelled. Malformed payloads are logged and skipped so one
// bad bridge message cannot stall the stream.
func (t *Transport) Events(ctx context.Context) (<-chan ports.Event, error) {
	raw := make(chan *nats.Msg, 64)
	sub, err := t.conn.ChanSubscribe(SubjectInbound, raw)
	if err != nil {
		return nil, errs.Wrapf(err, "subscribe %s", SubjectInbound)
	}

	events := make(chan ports.Event)
	go func() {
		defer close(events)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-raw:
				if !ok {
					return
				}
				event, err := decodeInbound(msg.Data)
				if err != nil {
					logging.Warn(ctx, "drop inbound message", slog.Any("err", errs.Loggable(err)))
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}

func (t *Transport) SendText(ctx context.Context, to ports.Recipient, body string, buttons ...ports.Button) (int64, error) {
	payload := sendTextPayload{
		ChatID:   to.ChatID,
		ThreadID: to.ThreadID,
		Body:     body,
		Buttons:  encodeButtons(buttons),
	}
	return t.request(ctx, SubjectSendText, payload)
}

func (t *Transport) SendPhoto(ctx context.Context, to ports.Recipient, photoRef, caption string, buttons ...ports.Button) (int64, error) {
	payload := sendPhotoPayload{
		ChatID:   to.ChatID,
		ThreadID: to.ThreadID,
		PhotoRef: photoRef,
		Caption:  caption,
		Buttons:  encodeButtons(buttons),
	}
	return t.request(ctx, SubjectSendPhoto, payload)
}

func (t *Transport) DeleteMessage(ctx context.Context, to ports.Recipient, messageRef int64) error {
	_, err := t.request(ctx, SubjectDelete, deletePayload{ChatID: to.ChatID, MessageRef: messageRef})
	return err
}

func (t *Transport) request(ctx context.Context, subject string, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, errs.Wrap(err, "marshal outbound payload")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	msg, err := t.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return 0, errs.Wrapf(err, "request %s", subject)
	}

	var reply sendReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return 0, errs.Wrapf(err, "unmarshal %s reply", subject)
	}
	if reply.Error != "" {
		return 0, fmt.Errorf("bridge rejected %s: %s", subject, reply.Error)
	}
	return reply.MessageRef, nil
}
