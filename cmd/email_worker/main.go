package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

// sender delivers a rendered message; *mailer.Mailgun in production.
type sender interface {
	Send(ctx context.Context, from string, to []string, subject, text, html string) error
}

type worker struct {
	mail    sender
	geo     mailtpl.GeoResolver
	logger  *logrus.Logger
	timeout time.Duration
}

const consumerTag = "email-worker"

type outcome int

const (
	ack outcome = iota
	retry
	drop
)

// handle renders and sends one queued job. A delivery failure is retried
// once through redelivery, then dropped.
func (w *worker) handle(ctx context.Context, body []byte, redelivered bool) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad email message")
		return drop
	}
	if len(job.To) == 0 {
		w.logger.Warn("email message without recipient")
		return drop
	}

	subject, text, html, err := w.render(ctx, &job)
	if err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Error("render failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.mail.Send(c, job.From, job.To, subject, text, html); err != nil {
		entry := w.logger.WithError(err).WithField("to", job.To)
		if redelivered {
			entry.Error("send failed again; dropping email")
			return drop
		}
		entry.Warn("send failed; requeueing")
		return retry
	}
	w.logger.WithFields(logrus.Fields{"to": job.To, "subject": subject}).Info("email sent")
	return ack
}

func (w *worker) render(ctx context.Context, job *mailer.EmailJob) (subject, text, html string, err error) {
	helpers.EnsureRecipientAndEmail(job)
	helpers.MapTypedToUniversal(job)

	if job.Template == "" {
		if job.Text == "" && job.HTML == "" {
			return "", "", "", errors.New("email has neither template nor body")
		}
		return job.Subject, job.Text, job.HTML, nil
	}

	if w.geo != nil {
		if loc := fmt.Sprintf("%v", job.Data["Location"]); loc == "" || loc == "<nil>" {
			if ip := fmt.Sprintf("%v", job.Data["IP"]); ip != "" && ip != "<nil>" {
				if g, gerr := w.geo.Lookup(ctx, ip); gerr == nil {
					job.Data["Location"] = mailtpl.FormatGeo(g)
				}
			}
		}
		helpers.LocalizeTimesIfPossible(ctx, w.geo, job.Data)
	}

	text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", err
	}
	subject = job.Subject
	if subject == "" && strings.EqualFold(job.Template, mailtpl.Universal) {
		subject = helpers.SubjectForUniversal(job.Data)
	}
	return subject, text, html, nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	w := &worker{
		mail:    mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		logger:  logger,
		timeout: 15 * time.Second,
	}
	if cfg.GeoLookupEnabled {
		w.geo = mailtpl.IPAPIResolver{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			switch w.handle(ctx, msg.Body, msg.Redelivered) {
			case ack:
				_ = msg.Ack(false)
			case retry:
				_ = msg.Nack(false, true)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-ctx.Done()
	logger.Info("shutting down email worker")
	_ = ch.Cancel(consumerTag, false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
