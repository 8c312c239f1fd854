package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/washplan/internal/models"
	"github.com/fatflowers/washplan/pkg/config"
	"github.com/fatflowers/washplan/pkg/logctx"
	"github.com/fatflowers/washplan/pkg/tool"
	"github.com/fatflowers/washplan/pkg/types"
)

// Sender delivers a rendered message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Gate decides whether a lifecycle event becomes an email. It applies the
// tenant's preference record, suppresses repeats of the same event type
// within the dedup window, and records every attempt. Delivery failures are
// logged, never propagated.
type Gate struct {
	cfg    *config.Config
	store  Store
	sender Sender
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewGate(cfg *config.Config, store Store, sender Sender, log *zap.SugaredLogger) *Gate {
	return &Gate{cfg: cfg, store: store, sender: sender, log: log, now: time.Now}
}

// ShouldNotify reports whether the tenant accepts the event type. Absence of
// a preference row means send (opt-out model). An explicit false on the
// general toggle suppresses every event type; a nil per-type flag defaults
// to true.
func (g *Gate) ShouldNotify(ctx context.Context, userID string, event types.NotificationEvent) (bool, error) {
	pref, err := g.store.GetPreference(ctx, userID)
	if err != nil {
		return false, err
	}
	return prefAllows(pref, event), nil
}

func prefAllows(pref *models.NotificationPreference, event types.NotificationEvent) bool {
	if pref == nil {
		return true
	}
	if pref.EmailEnabled != nil && !*pref.EmailEnabled {
		return false
	}
	var flag *bool
	switch event {
	case types.NotificationEventStatusChange:
		flag = pref.StatusChange
	case types.NotificationEventRenewalDue:
		flag = pref.RenewalDue
	case types.NotificationEventCancellationOutcome:
		flag = pref.CancellationOutcome
	}
	return flag == nil || *flag
}

// Dispatch runs the full gate for one event. It is called from goroutines
// after the triggering write commits and reports nothing back to the caller.
func (g *Gate) Dispatch(ctx context.Context, userID string, event types.NotificationEvent, data map[string]any) {
	log := logctx.FromCtx(ctx, g.log)

	pref, err := g.store.GetPreference(ctx, userID)
	if err != nil {
		// Opt-out model: on a preference read failure we still attempt the
		// send rather than silently dropping a lifecycle email.
		log.Errorf("failed to read notification preference, user_id=%s: %v", userID, err)
		pref = nil
	}
	if !prefAllows(pref, event) {
		g.record(ctx, userID, event, false, "suppressed by preference")
		return
	}

	last, err := g.store.LastSentAt(ctx, userID, event)
	if err != nil {
		log.Errorf("failed to read notification log, user_id=%s: %v", userID, err)
	}
	if last != nil && g.now().Sub(*last) < g.cfg.Subscription.NotificationDedupWindow {
		log.Infof("notification deduplicated, user_id=%s, event=%s, last_sent_at=%s", userID, event, last)
		return
	}

	if pref == nil || pref.Email == "" {
		g.record(ctx, userID, event, false, "no recipient on file")
		return
	}

	subject, body := render(event, data)
	if err := g.sender.Send(ctx, pref.Email, subject, body); err != nil {
		log.Errorf("failed to send notification, user_id=%s, event=%s: %v", userID, event, err)
		g.record(ctx, userID, event, false, err.Error())
		return
	}
	g.record(ctx, userID, event, true, "")
}

func (g *Gate) record(ctx context.Context, userID string, event types.NotificationEvent, sent bool, reason string) {
	traceID, _ := ctx.Value("traceID").(string)
	entry := &models.NotificationLog{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		EventType: string(event),
		TraceID:   traceID,
		Sent:      sent,
		Reason:    reason,
		SentAt:    g.now(),
	}
	if err := g.store.RecordSend(ctx, entry); err != nil {
		logctx.FromCtx(ctx, g.log).Errorf("failed to record notification, user_id=%s: %v", userID, err)
	}
}

func render(event types.NotificationEvent, data map[string]any) (subject, body string) {
	switch event {
	case types.NotificationEventRenewalDue:
		subject = "Your subscription is up for renewal"
		body = fmt.Sprintf("Your %v plan period ends at %v. A renewal decision is pending.", data["plan_type"], data["current_period_end"])
	case types.NotificationEventCancellationOutcome:
		if approved, _ := data["approved"].(bool); approved {
			subject = "Your cancellation was approved"
		} else {
			subject = "Your cancellation was declined"
		}
		body = fmt.Sprintf("Your subscription status is now %v.", data["status"])
	default:
		subject = "Your subscription status changed"
		body = fmt.Sprintf("Your subscription status is now %v.", data["status"])
	}
	return subject, body
}
