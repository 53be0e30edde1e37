package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn used by NATSNotifier.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// NATSNotifier publishes alerts as JSON to a NATS subject.
type NATSNotifier struct {
	pub     Publisher
	subject string
	conn    *nats.Conn
}

// NewNATSNotifier connects to the given server and publishes to subject.
// Call Close when done.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("airwatch"),
		nats.Timeout(10*time.Second),
		nats.NoReconnect(),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSNotifier{pub: nc, subject: subject, conn: nc}, nil
}

// NewNATSNotifierWithPublisher wraps an existing publisher.
func NewNATSNotifierWithPublisher(pub Publisher, subject string) *NATSNotifier {
	return &NATSNotifier{pub: pub, subject: subject}
}

func (n *NATSNotifier) Name() string { return "nats" }

// Send publishes the alert and waits for the server to acknowledge the flush,
// so a nil error means the server received it.
func (n *NATSNotifier) Send(ctx context.Context, alert Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal nats payload: %w", err)
	}

	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish nats alert: %w", err)
	}

	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := n.pub.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("flush nats alert: %w", err)
	}
	return nil
}

// Close drains and closes the connection opened by NewNATSNotifier.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
