package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"roundcheck/internal/bootstrap/logging"
	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/errs"
	"roundcheck/internal/ports"
	"roundcheck/internal/usecase/audit"
)

const deliveryMaxRetries = 2

// Dispatcher fans lifecycle events out to admin recipients and the round
// summary channel. Deliveries are best-effort: the lifecycle transition has
// already committed by the time a notification is attempted, so a failed
// recipient is logged and skipped, never propagated.
type Dispatcher struct {
	messenger ports.Messenger
	admins    []int64
	summary   ports.Recipient
	timeout   time.Duration
}

func NewDispatcher(messenger ports.Messenger, admins []int64, summary ports.Recipient, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		messenger: messenger,
		admins:    admins,
		summary:   summary,
		timeout:   timeout,
	}
}

// FixSubmitted shows every admin the original evidence next to the new fix
// evidence, with approve/return controls bound to the issue.
func (d *Dispatcher) FixSubmitted(ctx context.Context, sub audit.FixSubmission) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "notify"),
		slog.Uint64("issue_id", sub.IssueID),
	)

	controls := []ports.Button{
		{Label: "OK", Action: ports.Action{Kind: ports.ActionApproveIssue, TargetID: sub.IssueID}},
		{Label: "Return to work", Action: ports.Action{Kind: ports.ActionReturnIssue, TargetID: sub.IssueID}},
	}

	for _, adminID := range d.admins {
		to := ports.Recipient{ChatID: adminID}

		if sub.OriginalPhoto != "" {
			d.deliver(logCtx, adminID, "fix submitted (before)", func(callCtx context.Context) error {
				_, err := d.messenger.SendPhoto(callCtx, to, sub.OriginalPhoto, beforeFixCaption(sub))
				return err
			})
		}

		d.deliver(logCtx, adminID, "fix submitted (after)", func(callCtx context.Context) error {
			if sub.FixPhoto != nil {
				_, err := d.messenger.SendPhoto(callCtx, to, *sub.FixPhoto, afterFixCaption(sub), controls...)
				return err
			}
			_, err := d.messenger.SendText(callCtx, to, afterFixCaption(sub), controls...)
			return err
		})
	}
}

// FixReturned tells the original submitter their fix was rejected. No-op
// when no submitter was recorded.
func (d *Dispatcher) FixReturned(ctx context.Context, ret audit.ReturnedIssue) {
	if ret.SubmitterChatID == nil {
		return
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "notify"),
		slog.Uint64("issue_id", ret.IssueID),
	)

	submitter := *ret.SubmitterChatID
	d.deliver(logCtx, submitter, "fix returned", func(callCtx context.Context) error {
		_, err := d.messenger.SendText(callCtx, ports.Recipient{ChatID: submitter}, returnedNotice(ret))
		return err
	})
}

// RoundCompleted posts the round summary to the shared channel.
func (d *Dispatcher) RoundCompleted(ctx context.Context, summary domainaudit.RoundSummary) {
	if d.summary.ChatID == 0 {
		return
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "notify"),
		slog.Uint64("inspection_id", summary.InspectionID),
	)

	d.deliver(logCtx, d.summary.ChatID, "round summary", func(callCtx context.Context) error {
		_, err := d.messenger.SendText(callCtx, d.summary, roundSummaryBody(summary))
		return err
	})
}

// deliver runs one outbound request under the configured timeout with a
// short exponential backoff. Backoff state is per call; instances are not
// reusable.
func (d *Dispatcher) deliver(ctx context.Context, recipient int64, what string, send func(context.Context) error) {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), deliveryMaxRetries),
		callCtx,
	)

	err := backoff.Retry(func() error { return send(callCtx) }, bo)
	if err != nil {
		logging.Warn(ctx, "notification delivery failed",
			slog.String("what", what),
			slog.Int64("recipient", recipient),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
