package publisher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/niatrack-data/internal/common/logger"
	"github.com/niatrack-data/pkg/trips/models"
)

// PublisherMetrics is the slice of the metrics collector the publisher
// needs, kept as an interface so tests can pass a stub.
type PublisherMetrics interface {
	PublishedInc()
	PublishErrInc()
}

// NATSPublisher pushes each computed trip row to a per-trip subject so
// downstream dashboards can subscribe to individual trips or the whole
// stream with a wildcard.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	logger  logger.Logger
	metrics PublisherMetrics
}

func NewNATSPublisher(url, subject string, log logger.Logger, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("niatrack-data"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			log.Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &NATSPublisher{nc: nc, subject: subject, logger: log, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// PublishReport emits one message per trip row.
func (p *NATSPublisher) PublishReport(rep *models.Report) error {
	var firstErr error
	for _, row := range rep.Wide {
		if err := p.publishRow(row); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *NATSPublisher) publishRow(row models.TripRow) error {
	subject := fmt.Sprintf("%s.%s", p.subject, subjectToken(row.NIA))
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshaling trip %s: %w", row.NIA, err)
	}

	err = p.nc.Publish(subject, payload)
	if p.metrics != nil {
		if err != nil {
			p.metrics.PublishErrInc()
		} else {
			p.metrics.PublishedInc()
		}
	}
	if err != nil {
		return fmt.Errorf("publishing trip %s: %w", row.NIA, err)
	}
	return nil
}

// subjectToken sanitizes a trip id for use as a NATS subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
