package email

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturo-api/internal/application/notification"
)

var _ notification.Sender = (*LogSender)(nil)

// LogSender registra los emails en el log sin enviarlos. Se usa cuando no hay SMTP configurado.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender construye el sender de desarrollo.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send solo registra el email.
func (s *LogSender) Send(_ context.Context, e notification.Email) error {
	s.log.Info().
		Strs("to", e.To).
		Str("subject", e.Subject).
		Int("attachments", len(e.Attachments)).
		Msg("SMTP no configurado: email descartado")
	return nil
}
