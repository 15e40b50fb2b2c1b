// Package email implementa notification.Sender sobre SMTP.
package email

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/Facturo-api/internal/application/notification"
)

var _ notification.Sender = (*SMTPSender)(nil)

// Config datos del servidor SMTP.
type Config struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	RatePerSecond int
}

// dialer abstrae gomail.Dialer para poder sustituirlo en tests.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envía emails multiparte (texto + HTML) con adjuntos, limitando la tasa de envío.
type SMTPSender struct {
	from    string
	dialer  dialer
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewSMTPSender construye el sender con un gomail.Dialer.
func NewSMTPSender(cfg Config, log zerolog.Logger) *SMTPSender {
	return newSender(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), log)
}

func newSender(cfg Config, d dialer, log zerolog.Logger) *SMTPSender {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	return &SMTPSender{
		from:    cfg.From,
		dialer:  d,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		log:     log,
	}
}

// Send espera turno en el limitador y entrega el mensaje.
func (s *SMTPSender) Send(ctx context.Context, e notification.Email) error {
	if len(e.To) == 0 {
		return fmt.Errorf("email: sin destinatarios")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email: esperar turno de envío: %w", err)
	}
	m := BuildMessage(s.from, e)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: smtp: %w", err)
	}
	s.log.Debug().Strs("to", e.To).Str("subject", e.Subject).Msg("email entregado al servidor SMTP")
	return nil
}

// BuildMessage arma el mensaje multipart/alternative con los adjuntos.
func BuildMessage(from string, e notification.Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", e.To...)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		m.AddAlternative("text/html", e.HTML)
	}
	for _, a := range e.Attachments {
		data := a.Data
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		m.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
		)
	}
	return m
}
