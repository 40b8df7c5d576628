package eventsvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/trezcool/stemquest/core"
)

// headerCarrier lets the trace context travel in NATS message headers.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSService publishes each event as JSON on "<subject>.<event name>".
type NATSService struct {
	conn    *nats.Conn
	subject string
	logger  core.Logger
}

var _ core.EventPublisher = (*NATSService)(nil)

func NewNATSService(conf *core.Config, logger core.Logger) (*NATSService, error) {
	conn, err := nats.Connect(
		conf.NATS.URL,
		nats.Name(conf.AppName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected to " + nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to nats")
	}
	return &NATSService{conn: conn, subject: conf.NATS.Subject, logger: logger}, nil
}

func (svc *NATSService) Publish(ctx context.Context, events ...core.Event) error {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return errors.Wrap(err, "encoding event")
		}
		msg := &nats.Msg{Subject: svc.subject + "." + ev.Name, Data: data}
		otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
		if err = svc.conn.PublishMsg(msg); err != nil {
			return errors.Wrapf(err, "publishing %s", ev.Name)
		}
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (svc *NATSService) Close() error {
	if err := svc.conn.Drain(); err != nil {
		svc.conn.Close()
		return errors.Wrap(err, "draining nats connection")
	}
	return nil
}
