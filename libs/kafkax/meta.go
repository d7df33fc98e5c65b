package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// Header keys stamped on every domain event.
const (
	HeaderEventID     = "event_id"
	HeaderEventType   = "event_type"
	HeaderAggregateID = "aggregate_id"
)

// EventMeta identifies a message independently of its payload.
type EventMeta struct {
	EventID     string
	EventType   string
	AggregateID string
}

// Headers renders meta as Kafka headers, skipping empty fields.
func (m EventMeta) Headers() []kafka.Header {
	var headers []kafka.Header
	for _, kv := range [][2]string{
		{HeaderEventID, m.EventID},
		{HeaderEventType, m.EventType},
		{HeaderAggregateID, m.AggregateID},
	} {
		if kv[1] != "" {
			headers = append(headers, kafka.Header{Key: kv[0], Value: []byte(kv[1])})
		}
	}
	return headers
}

// HeaderValue returns the value of the first header named key.
func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// NewWriter returns a synchronous writer that routes by message key so events
// for one aggregate stay ordered on a single partition.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
