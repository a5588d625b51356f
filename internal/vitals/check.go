package vitals

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/myautoimport/site-api/internal/notify"
	"github.com/myautoimport/site-api/pkg/logging"
)

// Core Web Vitals "poor" thresholds.
const (
	lcpThresholdMS = 2500
	inpThresholdMS = 500
	clsThreshold   = 0.25
)

// Fetcher is the PageSpeed surface the checker needs.
type Fetcher interface {
	Fetch(ctx context.Context, site string) (FieldMetrics, error)
}

// Checker probes the live site's field metrics and emails an alert when
// any of them crosses the poor threshold.
type Checker struct {
	psi       Fetcher
	sender    notify.EmailSender
	site      string
	alertTo   string
	alertFrom string
	logger    *logging.Logger
}

// NewChecker wires the vitals checker. The alert email is optional;
// without a sender or recipient the checker only reports.
func NewChecker(psi Fetcher, sender notify.EmailSender, site, alertTo, alertFrom string, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Default()
	}
	if alertFrom == "" {
		alertFrom = "alerts@myautoimport.es"
	}
	return &Checker{
		psi:       psi,
		sender:    sender,
		site:      strings.TrimRight(site, "/"),
		alertTo:   alertTo,
		alertFrom: alertFrom,
		logger:    logger,
	}
}

// Report is the outcome of one vitals check.
type Report struct {
	Site   string   `json:"site"`
	LCP    *float64 `json:"lcp"`
	INP    *float64 `json:"inp"`
	CLS    *float64 `json:"cls"`
	Alerts []string `json:"alerts"`
}

// Run fetches current field metrics, evaluates thresholds, and sends
// the alert email when anything is over. The email is best effort: a
// send failure is logged but the report still comes back.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	metrics, err := c.psi.Fetch(ctx, c.site)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Site:   c.site,
		LCP:    metrics.LCP,
		INP:    metrics.INP,
		CLS:    metrics.CLS,
		Alerts: []string{},
	}
	if metrics.LCP != nil && *metrics.LCP > lcpThresholdMS {
		report.Alerts = append(report.Alerts, fmt.Sprintf("LCP %.0f ms (>%d)", *metrics.LCP, lcpThresholdMS))
	}
	if metrics.INP != nil && *metrics.INP > inpThresholdMS {
		report.Alerts = append(report.Alerts, fmt.Sprintf("INP %.0f ms (>%d)", *metrics.INP, inpThresholdMS))
	}
	if metrics.CLS != nil && *metrics.CLS > clsThreshold {
		report.Alerts = append(report.Alerts, fmt.Sprintf("CLS %.2f (>%.2f)", *metrics.CLS, clsThreshold))
	}

	if len(report.Alerts) > 0 && c.sender != nil && c.alertTo != "" {
		if err := c.sender.Send(ctx, c.alertEmail(report)); err != nil {
			c.logger.Error("vitals alert email failed", "error", err)
		}
	}
	return report, nil
}

func (c *Checker) alertEmail(report *Report) notify.EmailMessage {
	var items strings.Builder
	for _, a := range report.Alerts {
		items.WriteString("<li>" + html.EscapeString(a) + "</li>")
	}

	htmlBody := fmt.Sprintf(`
		<h2>Core Web Vitals alerts</h2>
		<p><b>Site:</b> %s</p>
		<ul>%s</ul>
		<p><b>Current values:</b><br/>
		LCP: %s ms<br/>
		INP: %s ms<br/>
		CLS: %s</p>
	`, html.EscapeString(report.Site), items.String(),
		formatMetric(report.LCP, 0), formatMetric(report.INP, 0), formatMetric(report.CLS, 2))

	return notify.EmailMessage{
		To:      c.alertTo,
		Subject: fmt.Sprintf("Web Vitals alerts — %s", report.Site),
		HTML:    htmlBody,
		Body:    strings.Join(report.Alerts, "\n"),
	}
}

func formatMetric(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}
