package matches

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/myautoimport/site-api/internal/catalog"
	"github.com/myautoimport/site-api/internal/notify"
	"github.com/myautoimport/site-api/internal/observability/metrics"
	"github.com/myautoimport/site-api/pkg/logging"
)

// Service finds buyers whose stored preferences match a car and sends each
// of them one notification email, recording the user/car pair so nobody is
// notified twice for the same listing.
type Service struct {
	cars       catalog.Repository
	repo       Repository
	sender     notify.EmailSender
	siteOrigin string
	logger     *logging.Logger
	metrics    *metrics.LeadMetrics
}

// NewService wires the match notifier.
func NewService(cars catalog.Repository, repo Repository, sender notify.EmailSender, siteOrigin string, logger *logging.Logger, m *metrics.LeadMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		cars:       cars,
		repo:       repo,
		sender:     sender,
		siteOrigin: strings.TrimRight(siteOrigin, "/"),
		logger:     logger,
		metrics:    m,
	}
}

// NotifyForCar runs the full match pass for one car and returns the number
// of notification emails sent.
func (s *Service) NotifyForCar(ctx context.Context, carID string) (int, error) {
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		return 0, err
	}

	prefs, err := s.repo.ListPrefs(ctx)
	if err != nil {
		return 0, err
	}

	matched := Filter(prefs, car)
	if len(matched) == 0 {
		return 0, nil
	}

	notified, err := s.repo.NotifiedUsers(ctx, car.ID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range matched {
		p := &matched[i]
		if notified[p.UserID] {
			continue
		}

		email, err := s.repo.UserEmail(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				s.logger.Warn("preference row without user, skipping", "user_id", p.UserID)
				continue
			}
			return sent, err
		}

		msg := s.buildEmail(p, car, email)
		if err := s.sender.Send(ctx, msg); err != nil {
			// One buyer's bounce must not starve the rest of the batch.
			s.logger.Error("match notification failed", "error", err, "user_id", p.UserID, "car_id", car.ID)
			continue
		}

		if err := s.repo.LogNotified(ctx, p.UserID, car.ID); err != nil {
			s.logger.Error("notify log append failed", "error", err, "user_id", p.UserID, "car_id", car.ID)
		}
		sent++
	}

	s.metrics.ObserveMatchesSent(sent)
	s.logger.Info("match pass complete", "car_id", car.ID, "matched", len(matched), "sent", sent)
	return sent, nil
}

// CarURL prefers the slug deep link and falls back to the id form.
func (s *Service) CarURL(car *catalog.Car) string {
	if car.Slug != "" {
		return fmt.Sprintf("%s/car.html?slug=%s", s.siteOrigin, url.QueryEscape(car.Slug))
	}
	return fmt.Sprintf("%s/car.html?id=%s", s.siteOrigin, car.ID)
}

func (s *Service) buildEmail(p *BuyerPrefs, car *catalog.Car, to string) notify.EmailMessage {
	carURL := s.CarURL(car)
	subject := fmt.Sprintf("🔔 New car matching your search: %s %s", car.Brand, car.Model)

	year := "?"
	if car.Year != nil {
		year = fmt.Sprintf("%d", *car.Year)
	}
	km := "?"
	if car.KM != nil {
		km = fmt.Sprintf("%d", *car.KM)
	}
	price := "price on request"
	if car.Price != nil {
		price = fmt.Sprintf("%d €", *car.Price)
	}

	htmlBody := fmt.Sprintf(`
		<h2>New car</h2>
		<p><b>%s %s</b> — year %s, %s km — %s</p>
		<p><a href="%s">View listing</a></p>
		<hr>
		<p style="color:#6b7280">You are receiving this email because you have alerts enabled at My Auto Import.</p>
	`, html.EscapeString(car.Brand), html.EscapeString(car.Model), year, km, price, carURL)

	textBody := fmt.Sprintf("New car: %s %s — year %s, %s km — %s\n\nView listing: %s\n",
		car.Brand, car.Model, year, km, price, carURL)

	return notify.EmailMessage{
		To:      to,
		ToName:  p.Name,
		Subject: subject,
		HTML:    htmlBody,
		Body:    textBody,
	}
}
