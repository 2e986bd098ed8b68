package notify

//go:generate mockgen -destination=mocks/mock_notify.go -package=mocks github.com/relloyd/psvexport/notify Notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/psvexport/helper"
	"github.com/relloyd/psvexport/logger"
	mail "github.com/xhit/go-simple-mail/v2"
)

const (
	EncryptionNone     = "none"
	EncryptionStartTls = "starttls"
	EncryptionSslTls   = "ssltls"
	defaultSmtpPort    = 25
	smtpTimeout        = 30 * time.Second
)

// Notifier sends a message to the people who look after the export.
type Notifier interface {
	Notify(subject string, body string) error
}

// Subject returns the fixed subject line used for notifications about service.
func Subject(service string) string {
	return fmt.Sprintf("Script Notification - %v", service)
}

// SmtpConfig holds the mail server settings.
type SmtpConfig struct {
	Host       string `errorTxt:"SMTP host" mandatory:"yes"`
	Port       int
	User       string
	Password   string
	Encryption string
	From       string `errorTxt:"notification sender address" mandatory:"yes"`
	To         []string
}

// NewNotifier returns an SMTP Notifier for cfg, or a no-op Notifier if there are no recipients.
func NewNotifier(log logger.Logger, cfg SmtpConfig) (Notifier, error) {
	if len(cfg.To) == 0 {
		log.Debug("no notification recipients configured, notifications are disabled")
		return &NoopNotifier{log: log}, nil
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, err
	}
	if cfg.Port == 0 {
		cfg.Port = defaultSmtpPort
	}
	switch strings.ToLower(cfg.Encryption) {
	case "", EncryptionNone, EncryptionStartTls, EncryptionSslTls:
	default:
		return nil, fmt.Errorf("unsupported SMTP encryption %q", cfg.Encryption)
	}
	return &SmtpNotifier{log: log, cfg: cfg}, nil
}

// NoopNotifier logs the message instead of sending it.
type NoopNotifier struct {
	log logger.Logger
}

func (n *NoopNotifier) Notify(subject string, body string) error {
	n.log.Debug("notification skipped: ", subject)
	return nil
}

// SmtpNotifier sends plain text email.
type SmtpNotifier struct {
	log logger.Logger
	cfg SmtpConfig
}

func (n *SmtpNotifier) Notify(subject string, body string) error {
	server := mail.NewSMTPClient()
	server.Host = n.cfg.Host
	server.Port = n.cfg.Port
	server.Username = n.cfg.User
	server.Password = n.cfg.Password
	server.ConnectTimeout = smtpTimeout
	server.SendTimeout = smtpTimeout
	switch strings.ToLower(n.cfg.Encryption) {
	case EncryptionStartTls:
		server.Encryption = mail.EncryptionSTARTTLS
	case EncryptionSslTls:
		server.Encryption = mail.EncryptionSSLTLS
	default:
		server.Encryption = mail.EncryptionNone
	}
	if n.cfg.User == "" {
		server.Authentication = mail.AuthNone
	}
	client, err := server.Connect()
	if err != nil {
		return errors.Wrapf(err, "unable to connect to SMTP server %v:%v", n.cfg.Host, n.cfg.Port)
	}
	defer func() {
		_ = client.Close()
	}()
	email := mail.NewMSG()
	email.SetFrom(n.cfg.From).AddTo(n.cfg.To...).SetSubject(subject)
	email.SetBody(mail.TextPlain, body)
	if email.Error != nil {
		return errors.Wrap(email.Error, "unable to build notification email")
	}
	if err = email.Send(client); err != nil {
		return errors.Wrap(err, "unable to send notification email")
	}
	n.log.Info("sent notification to ", strings.Join(n.cfg.To, ", "))
	return nil
}

// NotifyError sends err using n and logs any failure to do so.
func NotifyError(log logger.Logger, n Notifier, service string, err error) {
	if n == nil || err == nil {
		return
	}
	if errSend := n.Notify(Subject(service), err.Error()); errSend != nil {
		log.Error("unable to send notification: ", errSend)
	}
}
