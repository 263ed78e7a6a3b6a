package service

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Mail struct {
	Subject string
	Body    string // HTML
}

type Mailer interface {
	Send(ctx context.Context, to string, m Mail) error
}

func RegistrationMail(name, code string) Mail {
	return Mail{
		Subject: "Verify your email",
		Body: fmt.Sprintf("<p>Hi %v,</p><p>Your verification code is <b>%v</b>.</p>"+
			"<p>This code will expire in 10 minutes.</p>", name, code),
	}
}

func LoginMail(name, code string) Mail {
	return Mail{
		Subject: "Your login code",
		Body: fmt.Sprintf("<p>Hi %v,</p><p>Your login code is <b>%v</b>.</p>"+
			"<p>This code will expire in 10 minutes. If you didn't try to log in, change your password.</p>", name, code),
	}
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	SenderAddress string
	SenderName    string
}

type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	user := cfg.Username
	if user == "" {
		user = cfg.SenderAddress
	}

	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, user, cfg.Password),
	}
}

func (s *SMTPMailer) message(to string, mail Mail) (*gomail.Message, error) {
	if to == s.cfg.SenderAddress {
		return nil, errors.New("invalid email address")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.SenderAddress, s.cfg.SenderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/html", mail.Body)

	return m, nil
}

// Send dials the SMTP server for every message. gomail has no context
// support, so a cancelled ctx only stops a send that hasn't started.
func (s *SMTPMailer) Send(ctx context.Context, to string, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.message(to, mail)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail, %w", err)
	}

	return nil
}
