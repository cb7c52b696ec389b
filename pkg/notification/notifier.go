// Package notification delivers auth notices (magic-link login emails)
// through pluggable notifiers keyed by delivery system.
package notification

// NotificationSystem represents a delivery system (e.g. email)
type NotificationSystem string

// NoticeType represents a type of notice (e.g. "magic_link_login")
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	// MagicLinkLogin is the login-link email sent by the auth service
	MagicLinkLogin NoticeType = "magic_link_login"
)

// NotificationData carries the recipient and template data for one notice
type NotificationData struct {
	To   string            // Recipient identifier (email address)
	Data map[string]string // Template data (e.g. MagicLink, ExpiryMinutes)
}

// NoticeTemplate holds the renderable content for a notice
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier delivers a rendered notice to a recipient
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
