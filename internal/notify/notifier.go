package notify

// Notifier sends transactional email. Sends are best-effort
// everywhere in this service: callers log failures and move on.
type Notifier interface {
	Send(to, subject, body string) error
}
