package mailer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Outbox hands email jobs to a background publisher so request handlers
// never wait on the broker. Delivery is best effort: a full buffer or a
// publish failure is logged and the job is dropped.
type Outbox struct {
	pub     Publisher
	logger  *logrus.Logger
	jobs    chan EmailJob
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewOutbox(pub Publisher, logger *logrus.Logger, size int) *Outbox {
	if size <= 0 {
		size = 1
	}
	o := &Outbox{
		pub:     pub,
		logger:  logger,
		jobs:    make(chan EmailJob, size),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go o.run()
	return o
}

// Send enqueues job without blocking.
func (o *Outbox) Send(job EmailJob) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.logger.WithField("to", job.To).Warn("outbox closed; email dropped")
		return
	}
	select {
	case o.jobs <- job:
	default:
		o.logger.WithField("to", job.To).Warn("outbox full; email dropped")
	}
}

// Close stops accepting jobs and waits for the buffer to drain.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.done
		return
	}
	o.closed = true
	close(o.jobs)
	o.mu.Unlock()
	<-o.done
}

func (o *Outbox) run() {
	defer close(o.done)
	for job := range o.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		if err := o.pub.PublishJSON(ctx, job); err != nil {
			o.logger.WithError(err).WithField("to", job.To).Error("failed to publish email job")
		}
		cancel()
	}
}

// LogPublisher stands in for the queue when MAIL_SEND_ENABLED=false.
type LogPublisher struct {
	Logger *logrus.Logger
}

func (p LogPublisher) PublishJSON(_ context.Context, body any) error {
	entry := p.Logger.WithField("job", body)
	if job, ok := body.(EmailJob); ok {
		entry = p.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template, "data": job.Data})
	}
	entry.Info("email not sent (mail sending disabled)")
	return nil
}
