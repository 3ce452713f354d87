package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Subject returns "<prefix>.<module>.<kind>" for a record event
func Subject(prefix, module string, kind activity.Kind) string {
	return strings.Join([]string{prefix, module, string(kind)}, ".")
}

// Sink delivers an encoded event to a subject
type Sink interface {
	Send(ctx context.Context, subject, msgID string, data []byte) error
}

// NATSForwarder is an event handler that republishes record events to NATS
type NATSForwarder struct {
	sink   Sink
	prefix string
	logger *zap.Logger
}

// NewNATSForwarder creates a forwarder publishing under prefix
func NewNATSForwarder(sink Sink, prefix string, logger *zap.Logger) *NATSForwarder {
	return &NATSForwarder{sink: sink, prefix: prefix, logger: logger.Named("nats")}
}

// EventTypes subscribes to every event
func (f *NATSForwarder) EventTypes() []string {
	return nil
}

// Handle encodes and forwards ev
func (f *NATSForwarder) Handle(ctx context.Context, ev shared.DomainEvent) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}
	module, _ := ev.Origin()
	subject := Subject(f.prefix, module, activity.KindOf(ev.EventType()))
	if err := f.sink.Send(ctx, subject, ev.EventID().String(), data); err != nil {
		return fmt.Errorf("forward %s: %w", subject, err)
	}
	f.logger.Debug("event forwarded", zap.String("subject", subject))
	return nil
}

// Connect dials NATS with unlimited reconnects and logs connection changes
func Connect(url, name string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// CoreSink publishes with core NATS. Delivery is at most once.
type CoreSink struct {
	conn *nats.Conn
}

// NewCoreSink wraps a connection
func NewCoreSink(conn *nats.Conn) *CoreSink {
	return &CoreSink{conn: conn}
}

// Send publishes data; msgID is carried as a header for consumers
func (s *CoreSink) Send(_ context.Context, subject, msgID string, data []byte) error {
	msg := nats.NewMsg(subject)
	msg.Header.Set(nats.MsgIdHdr, msgID)
	msg.Data = data
	return s.conn.PublishMsg(msg)
}

// JetStreamSink publishes to a stream; the event ID doubles as the message ID
// so redelivered publishes inside the stream's duplicate window are dropped.
type JetStreamSink struct {
	js jetstream.JetStream
}

// NewJetStreamSink ensures stream captures "<prefix>.>" and returns a sink for it
func NewJetStreamSink(ctx context.Context, conn *nats.Conn, stream, prefix string) (*JetStreamSink, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("open JetStream: %w", err)
	}
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       stream,
		Subjects:   []string{prefix + ".>"},
		Storage:    jetstream.FileStorage,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", stream, err)
	}
	return &JetStreamSink{js: js}, nil
}

// Send publishes data and waits for the stream acknowledgement
func (s *JetStreamSink) Send(ctx context.Context, subject, msgID string, data []byte) error {
	_, err := s.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID))
	return err
}

var _ shared.EventHandler = (*NATSForwarder)(nil)
