package kafkax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("kafka brokers not configured")

// ReadyCheck reports ready as soon as one broker accepts a connection within
// timeout. The error lists every broker that failed.
func ReadyCheck(brokers []string, timeout time.Duration) func(context.Context) error {
	dialer := kafka.Dialer{Timeout: timeout}
	return func(ctx context.Context) error {
		if len(brokers) == 0 {
			return ErrNoBrokers
		}
		var errs []error
		for _, addr := range brokers {
			conn, err := dialer.DialContext(ctx, "tcp", addr)
			if err == nil {
				_ = conn.Close()
				return nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
		}
		return errors.Join(errs...)
	}
}
