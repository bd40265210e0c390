package mail

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/live627/elkarte.net/internal/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const defaultSMTPPort = 25

// Sender delivers plain-text notices to operators.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	addr     string
	from     string
	user     string
	password string
	logger   *zap.Logger
}

func NewSMTPSender(cfg *config.Config, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		addr:     cfg.SMTPAddr,
		from:     cfg.SMTPFrom,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		logger:   logger,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	if s.addr == "" || to == "" {
		s.logger.Warn("Mail not sent, SMTP or recipient not configured", zap.String("subject", subject))
		return nil
	}

	msg, err := NewMessage(s.from, to, subject, body)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (s *SMTPSender) client() (*gomail.Client, error) {
	host, portStr, err := net.SplitHostPort(s.addr)
	if err != nil {
		host, portStr = s.addr, ""
	}
	port := defaultSMTPPort
	if portStr != "" {
		if port, err = strconv.Atoi(portStr); err != nil {
			return nil, fmt.Errorf("failed to parse SMTP port: %w", err)
		}
	}

	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if s.user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.user),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

// NewMessage builds a UTF-8 plain-text message. Line breaks in the subject
// are folded into spaces.
func NewMessage(from, to, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed to set mail recipient: %w", err)
	}
	msg.Subject(strings.NewReplacer("\r", "", "\n", " ").Replace(subject))
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}
