package leads

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/myautoimport/site-api/internal/notify"
	"github.com/myautoimport/site-api/pkg/logging"
)

// Notifier sends the internal "new lead" email. It is strictly best-effort:
// every failure is logged and swallowed, the caller's outcome never changes.
type Notifier struct {
	sender     notify.EmailSender
	toEmail    string
	siteOrigin string
	logger     *logging.Logger
	onResult   func(status string)
}

// NewNotifier creates a lead notifier. Returns nil when no sender or
// destination is configured, and callers treat a nil notifier as "skip".
func NewNotifier(sender notify.EmailSender, toEmail, siteOrigin string, logger *logging.Logger) *Notifier {
	if sender == nil || toEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{
		sender:     sender,
		toEmail:    toEmail,
		siteOrigin: strings.TrimRight(siteOrigin, "/"),
		logger:     logger,
	}
}

// OnResult registers a hook receiving "sent" or "failed" per notification.
func (n *Notifier) OnResult(fn func(status string)) {
	if n == nil {
		return
	}
	n.onResult = fn
}

func (n *Notifier) reportResult(status string) {
	if n.onResult != nil {
		n.onResult(status)
	}
}

// NotifyNewLead renders and sends the notification for an accepted lead.
// If the provider rejects the first attempt, one retry goes out with a
// plain ASCII subject; some relays choke on emoji subjects.
func (n *Notifier) NotifyNewLead(ctx context.Context, lead *Lead, id string) {
	if n == nil {
		return
	}

	msg := notify.EmailMessage{
		To:      n.toEmail,
		ReplyTo: lead.Email,
		Subject: buildSubject("🚗 Lead", lead),
		HTML:    n.renderHTML(lead),
		Body:    n.renderText(lead),
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("lead notification failed, retrying with plain subject", "error", err, "lead_id", id)
		msg.Subject = buildSubject("New lead", lead)
		if err := n.sender.Send(ctx, msg); err != nil {
			n.logger.Error("lead notification failed", "error", err, "lead_id", id)
			n.reportResult("failed")
			return
		}
	}

	n.reportResult("sent")
	n.logger.Info("lead notification sent", "lead_id", id, "to", n.toEmail)
}

func buildSubject(prefix string, lead *Lead) string {
	subject := fmt.Sprintf("%s: %s", prefix, lead.Name)
	if lead.CarOfInterest != nil {
		subject += " — " + *lead.CarOfInterest
	}
	return subject
}

// CarURL builds the public deep link for a car page when the id is known.
func (n *Notifier) CarURL(lead *Lead) string {
	if n == nil || lead.CarID == nil {
		return ""
	}
	return fmt.Sprintf("%s/car.html?id=%s", n.siteOrigin, *lead.CarID)
}

func (n *Notifier) renderHTML(lead *Lead) string {
	var b strings.Builder
	b.WriteString("<h2>🚗 New lead</h2>")
	fmt.Fprintf(&b, "<p><b>Name:</b> %s</p>", html.EscapeString(lead.Name))
	fmt.Fprintf(&b, "<p><b>Email:</b> %s</p>", html.EscapeString(lead.Email))
	if lead.Phone != nil {
		fmt.Fprintf(&b, "<p><b>Phone:</b> %s</p>", html.EscapeString(*lead.Phone))
	}
	if lead.CarOfInterest != nil {
		fmt.Fprintf(&b, "<p><b>Car:</b> %s</p>", html.EscapeString(*lead.CarOfInterest))
	}
	if url := n.CarURL(lead); url != "" {
		fmt.Fprintf(&b, `<p><a href="%s">View car page</a></p>`, url)
	}
	b.WriteString("<p><b>Message:</b></p>")
	fmt.Fprintf(&b, `<div style="white-space:pre-wrap;border-left:4px solid #6366F1;padding-left:12px">%s</div>`,
		html.EscapeString(lead.Message))
	b.WriteString("<hr/>")
	fmt.Fprintf(&b, `<p style="color:#666;font-size:.9rem">%s<br/>%s</p>`,
		html.EscapeString(lead.PageURL), html.EscapeString(lead.UserAgent))
	return b.String()
}

func (n *Notifier) renderText(lead *Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New lead\n\nName: %s\nEmail: %s\n", lead.Name, lead.Email)
	if lead.Phone != nil {
		fmt.Fprintf(&b, "Phone: %s\n", *lead.Phone)
	}
	if lead.CarOfInterest != nil {
		fmt.Fprintf(&b, "Car: %s\n", *lead.CarOfInterest)
	}
	if url := n.CarURL(lead); url != "" {
		fmt.Fprintf(&b, "Car page: %s\n", url)
	}
	fmt.Fprintf(&b, "\nMessage:\n%s\n", lead.Message)
	if lead.PageURL != "" {
		fmt.Fprintf(&b, "\nSource: %s\n", lead.PageURL)
	}
	if lead.UserAgent != "" {
		fmt.Fprintf(&b, "User agent: %s\n", lead.UserAgent)
	}
	return b.String()
}
