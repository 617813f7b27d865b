package usecase

import (
	"context"
	"errors"
	"time"

	domrepo "PriceSignal/internal/domain/repository"
	domsvc "PriceSignal/internal/domain/service"
	"PriceSignal/pkg/kafka"
	applogger "PriceSignal/pkg/logger"
)

const (
	AlertBuyNow   = "buy_now"
	AlertExpiring = "expiring_deal"
)

// AlertEnvelope wraps every published alert row.
type AlertEnvelope struct {
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generated_at"`
	Payload     any       `json:"payload"`
}

// AlertPublisher periodically snapshots buy-now signals and expiring deals and
// publishes one message per row, keyed by SKU.
type AlertPublisher struct {
	engine   domsvc.PriceAnalytics
	pub      kafka.Publisher
	topic    string
	interval time.Duration
	l        *applogger.Logger
	m        domrepo.Metrics
	now      Clock
}

func NewAlertPublisher(engine domsvc.PriceAnalytics, pub kafka.Publisher, topic string, interval time.Duration, l *applogger.Logger, m domrepo.Metrics) *AlertPublisher {
	if l == nil {
		l = applogger.Nop()
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AlertPublisher{engine: engine, pub: pub, topic: topic, interval: interval, l: l, m: m, now: SystemClock}
}

// SetClock overrides the tick time source.
func (a *AlertPublisher) SetClock(c Clock) { a.now = c }

// Run publishes once immediately and then on every interval until ctx is done.
func (a *AlertPublisher) Run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()

	a.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.tick(ctx)
		}
	}
}

func (a *AlertPublisher) tick(ctx context.Context) {
	if err := a.PublishOnce(ctx, a.now()); err != nil && !errors.Is(err, context.Canceled) {
		a.l.Error("alert publish failed", applogger.String("topic", a.topic), applogger.Error(err))
	}
}

// PublishOnce computes both snapshots at asOf and publishes them. A failure in
// one snapshot does not stop the other.
func (a *AlertPublisher) PublishOnce(ctx context.Context, asOf time.Time) error {
	var errs []error

	buy, err := a.engine.BuyNowSignals(ctx, asOf)
	if err != nil {
		errs = append(errs, err)
	} else {
		msgs := make([]kafka.Message, 0, len(buy))
		for _, s := range buy {
			msgs = append(msgs, a.message(AlertBuyNow, s.SKU, asOf, s))
		}
		errs = append(errs, a.send(ctx, AlertBuyNow, msgs))
	}

	exp, err := a.engine.ExpiringDeals(ctx, asOf)
	if err != nil {
		errs = append(errs, err)
	} else {
		msgs := make([]kafka.Message, 0, len(exp))
		for _, d := range exp {
			msgs = append(msgs, a.message(AlertExpiring, d.SKU, asOf, d))
		}
		errs = append(errs, a.send(ctx, AlertExpiring, msgs))
	}

	return errors.Join(errs...)
}

func (a *AlertPublisher) message(kind, sku string, asOf time.Time, payload any) kafka.Message {
	return kafka.Message{
		Key:   []byte(sku),
		Value: AlertEnvelope{Type: kind, GeneratedAt: asOf, Payload: payload},
	}
}

func (a *AlertPublisher) send(ctx context.Context, kind string, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := a.pub.PublishBatch(ctx, a.topic, msgs); err != nil {
		if a.m != nil {
			a.m.RecordError("alerts_" + kind)
		}
		return err
	}
	if a.m != nil {
		a.m.RecordAlertsPublished(kind, len(msgs))
	}
	a.l.Info("alerts published",
		applogger.String("kind", kind),
		applogger.String("topic", a.topic),
		applogger.Int("count", len(msgs)),
	)
	return nil
}
