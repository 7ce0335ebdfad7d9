package mail

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/amana-asso/delivery-service/internal/config"
)

// ErrQuotaExceeded signals the daily send budget is spent. Callers
// treat it as a recoverable per-recipient failure.
var ErrQuotaExceeded = errors.New("mail: daily quota exceeded")

// SMTPMailer sends through a single SMTP account and enforces the
// daily quota the account is subject to.
type SMTPMailer struct {
	dialer     *gomail.Dialer
	senderName string
	senderAddr string

	mu        sync.Mutex
	quota     int
	sentToday int
	day       time.Time
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		senderName: cfg.SenderName,
		senderAddr: cfg.SenderAddr,
		quota:      cfg.DailyQuota,
		day:        today(),
	}
}

// Send delivers one message. htmlBody may be empty for plain-text
// mail.
func (m *SMTPMailer) Send(to, subject, textBody, htmlBody string) error {
	if err := m.consumeQuota(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.senderAddr, m.senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.refundQuota()
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// RemainingQuota reports how many messages may still go out today.
func (m *SMTPMailer) RemainingQuota() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolloverLocked()
	return m.quota - m.sentToday
}

func (m *SMTPMailer) consumeQuota() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolloverLocked()
	if m.sentToday >= m.quota {
		return ErrQuotaExceeded
	}
	m.sentToday++
	return nil
}

func (m *SMTPMailer) refundQuota() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sentToday > 0 {
		m.sentToday--
	}
}

func (m *SMTPMailer) rolloverLocked() {
	if d := today(); !d.Equal(m.day) {
		m.day = d
		m.sentToday = 0
	}
}

func today() time.Time {
	y, mo, d := time.Now().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
