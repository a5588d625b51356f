package leads

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func carLead() *Lead {
	req := validRequest()
	req.Phone = "+34 612 345 678"
	req.CarOfInterest = "BMW 320d"
	req.CarID = "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	req.PageURL = "https://myautoimport.es/car.html?id=3fa85f64-5717-4562-b3fc-2c963f66afa6"
	return req.Normalize()
}

func TestNotifierRendersBothParts(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "sales@myautoimport.es", "https://myautoimport.es/", nil)

	n.NotifyNewLead(context.Background(), carLead(), "lead-1")

	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
	msg := sender.sent[0]

	if msg.To != "sales@myautoimport.es" {
		t.Errorf("unexpected destination %q", msg.To)
	}
	if msg.ReplyTo != "jane@example.com" {
		t.Errorf("expected reply-to set to the lead's email, got %q", msg.ReplyTo)
	}
	if !strings.Contains(msg.Subject, "🚗") {
		t.Errorf("expected emoji subject on first attempt, got %q", msg.Subject)
	}
	if !strings.Contains(msg.Subject, "BMW 320d") {
		t.Errorf("expected car of interest in subject, got %q", msg.Subject)
	}
	if msg.HTML == "" || msg.Body == "" {
		t.Fatal("expected both HTML and plain-text parts")
	}
	if !strings.Contains(msg.HTML, "car.html?id=3fa85f64-5717-4562-b3fc-2c963f66afa6") {
		t.Error("expected deep link to the car page in the HTML part")
	}
	if !strings.Contains(msg.Body, "34612345678") {
		t.Error("expected normalized phone in the text part")
	}
}

func TestNotifierEscapesHTML(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "sales@myautoimport.es", "https://myautoimport.es", nil)

	req := validRequest()
	req.Message = `<script>alert("x")</script> plus some padding`
	n.NotifyNewLead(context.Background(), req.Normalize(), "lead-2")

	if strings.Contains(sender.sent[0].HTML, "<script>") {
		t.Fatal("message content must be HTML-escaped")
	}
}

func TestNotifierRetriesWithPlainSubject(t *testing.T) {
	sender := &recordingSender{errs: []error{errors.New("invalid subject encoding")}}
	n := NewNotifier(sender, "sales@myautoimport.es", "https://myautoimport.es", nil)

	n.NotifyNewLead(context.Background(), carLead(), "lead-3")

	if len(sender.sent) != 2 {
		t.Fatalf("expected retry after rejection, got %d attempts", len(sender.sent))
	}
	if strings.Contains(sender.sent[1].Subject, "🚗") {
		t.Errorf("retry subject must be plain ASCII, got %q", sender.sent[1].Subject)
	}
}

func TestNotifierReportsResult(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "sales@myautoimport.es", "https://myautoimport.es", nil)

	var statuses []string
	n.OnResult(func(status string) { statuses = append(statuses, status) })

	n.NotifyNewLead(context.Background(), carLead(), "lead-5")

	sender.errs = []error{errors.New("boom"), errors.New("boom again")}
	n.NotifyNewLead(context.Background(), carLead(), "lead-6")

	if len(statuses) != 2 || statuses[0] != "sent" || statuses[1] != "failed" {
		t.Fatalf("expected [sent failed], got %v", statuses)
	}
}

func TestNotifierNilWhenUnconfigured(t *testing.T) {
	if NewNotifier(nil, "sales@myautoimport.es", "", nil) != nil {
		t.Error("nil sender should disable the notifier")
	}
	if NewNotifier(&recordingSender{}, "", "", nil) != nil {
		t.Error("missing destination should disable the notifier")
	}

	var n *Notifier
	n.NotifyNewLead(context.Background(), carLead(), "lead-4") // must not panic
}

func TestCarURLAbsentWithoutCarID(t *testing.T) {
	n := NewNotifier(&recordingSender{}, "sales@myautoimport.es", "https://myautoimport.es", nil)
	if url := n.CarURL(validRequest().Normalize()); url != "" {
		t.Fatalf("expected empty URL without carId, got %q", url)
	}
}
