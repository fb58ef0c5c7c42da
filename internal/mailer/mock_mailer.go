package mailer

import (
	"sync"
	"time"
)

// Email represents a sent email
type Email struct {
	Recipient    string
	TemplateFile string
	Data         any
}

// MockMailer records emails instead of sending them. Mails are sent from
// background goroutines, so tests read them through WaitForEmails.
type MockMailer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	emails []Email
	err    error
}

func NewMockMailer() *MockMailer {
	m := &MockMailer{
		emails: make([]Email, 0),
	}
	m.cond = sync.NewCond(&m.mu)

	return m
}

// FailWith makes every following Send return err.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.emails = append(m.emails, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Data:         data,
	})
	m.cond.Broadcast()

	return nil
}

// WaitForEmails blocks until at least n emails were recorded or the timeout
// expires, and returns a copy of what was recorded.
func (m *MockMailer) WaitForEmails(n int, timeout time.Duration) []Email {
	timer := time.AfterFunc(timeout, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cond.Broadcast()
	})
	defer timer.Stop()

	deadline := time.Now().Add(timeout)

	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.emails) < n && time.Now().Before(deadline) {
		m.cond.Wait()
	}

	emails := make([]Email, len(m.emails))
	copy(emails, m.emails)
	return emails
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = make([]Email, 0)
	m.err = nil
}
