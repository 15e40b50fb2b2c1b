package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Attachment archivo adjunto a un email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email mensaje listo para enviar.
type Email struct {
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender puerto de salida hacia el proveedor de email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Service renderiza y envía emails transaccionales.
type Service struct {
	renderer     *Renderer
	sender       Sender
	supportEmail string
	log          zerolog.Logger
	observe      func(kind string, err error)
}

// NewService construye el servicio.
func NewService(renderer *Renderer, sender Sender, supportEmail string, log zerolog.Logger) *Service {
	return &Service{renderer: renderer, sender: sender, supportEmail: supportEmail, log: log}
}

// OnSent registra un callback por cada intento de envío (métricas).
func (s *Service) OnSent(fn func(kind string, err error)) {
	s.observe = fn
}

// Notify renderiza el tipo indicado y lo envía a un destinatario.
func (s *Service) Notify(ctx context.Context, to string, kind Kind, data Data, attachments ...Attachment) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("notification: destinatario vacío")
	}
	if data.SupportEmail == "" {
		data.SupportEmail = s.supportEmail
	}
	msg, err := s.renderer.Render(kind, data)
	if err != nil {
		return err
	}
	err = s.sender.Send(ctx, Email{
		To:          []string{to},
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		Text:        msg.Text,
		Attachments: attachments,
	})
	if s.observe != nil {
		s.observe(string(kind), err)
	}
	if err != nil {
		return fmt.Errorf("notification: enviar %s: %w", kind, err)
	}
	s.log.Info().Str("kind", string(kind)).Str("to", to).Msg("email enviado")
	return nil
}
