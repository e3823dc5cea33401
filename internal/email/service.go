package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Service sends transactional mail. All sends are best effort; the
// caller's domain write has already committed when Send runs.
type Service interface {
	SendAppointmentApproved(ctx context.Context, to, patientName string, date time.Time) error
	SendAppointmentCancelled(ctx context.Context, to, patientName string, date time.Time) error
	SendWelcome(ctx context.Context, to, name string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *service) SendAppointmentApproved(_ context.Context, to, patientName string, date time.Time) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment on %s has been confirmed.\n\nRegards,\nCliniCore",
		patientName, date.Format("Monday, 2 January 2006 at 15:04"),
	)
	return s.send(to, "Appointment confirmed", body)
}

func (s *service) SendAppointmentCancelled(_ context.Context, to, patientName string, date time.Time) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment on %s has been cancelled.\n\nRegards,\nCliniCore",
		patientName, date.Format("Monday, 2 January 2006 at 15:04"),
	)
	return s.send(to, "Appointment cancelled", body)
}

func (s *service) SendWelcome(_ context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour CliniCore account is ready. You can now book appointments online.\n\nRegards,\nCliniCore",
		name,
	)
	return s.send(to, "Welcome to CliniCore", body)
}

// NoopService discards all mail; used when SMTP is not configured.
type NoopService struct{}

func (NoopService) SendAppointmentApproved(context.Context, string, string, time.Time) error {
	return nil
}
func (NoopService) SendAppointmentCancelled(context.Context, string, string, time.Time) error {
	return nil
}
func (NoopService) SendWelcome(context.Context, string, string) error { return nil }
