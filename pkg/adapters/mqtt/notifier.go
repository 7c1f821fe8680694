// Package mqtt publishes change events to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/quizgraph/pkg/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the subset of paho.Client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) paho.Token
}

// Notifier implements ports.ChangeNotifier. Events go to
// "<topic>/<quizID>" as JSON at QoS 1.
type Notifier struct {
	pub     Publisher
	topic   string
	timeout time.Duration
}

// NewNotifier wraps a publisher.
func NewNotifier(pub Publisher, topic string) *Notifier {
	return &Notifier{pub: pub, topic: topic, timeout: 5 * time.Second}
}

// Dial connects a paho client to brokerURL and returns a notifier over it
// along with a disconnect func.
func Dial(brokerURL, clientID, topic string) (*Notifier, func(), error) {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, nil, fmt.Errorf("mqtt connect to %s: timeout", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return NewNotifier(client, topic), func() { client.Disconnect(1000) }, nil
}

// Topic returns the topic an event is published on.
func (n *Notifier) Topic(ev domain.ChangeEvent) string {
	if ev.QuizID == "" {
		return n.topic
	}
	return n.topic + "/" + ev.QuizID
}

// Notify publishes ev and waits for the broker ack or ctx.
func (n *Notifier) Notify(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := n.pub.Publish(n.Topic(ev), 1, false, payload)

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("mqtt publish to %s: timeout", n.Topic(ev))
	}
}
