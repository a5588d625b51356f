package vitals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultPSIEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// FieldMetrics holds the CrUX field percentiles PageSpeed reports for a
// page. A nil value means the dataset has no sample for that metric.
// LCP and INP are milliseconds; CLS is the unitless layout shift score.
type FieldMetrics struct {
	LCP *float64
	INP *float64
	CLS *float64
}

// PSIClient fetches field metrics from the PageSpeed Insights API.
type PSIClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewPSIClient builds a PageSpeed client. The key is the Google API key
// the project is registered under.
func NewPSIClient(apiKey string) *PSIClient {
	return &PSIClient{
		endpoint: defaultPSIEndpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type psiMetric struct {
	Percentile *float64 `json:"percentile"`
}

type psiResponse struct {
	LoadingExperience struct {
		Metrics struct {
			LCP psiMetric `json:"LARGEST_CONTENTFUL_PAINT_MS"`
			INP psiMetric `json:"EXPERIMENTAL_INTERACTION_TO_NEXT_PAINT"`
			CLS psiMetric `json:"CUMULATIVE_LAYOUT_SHIFT_SCORE"`
		} `json:"metrics"`
	} `json:"loadingExperience"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch runs a mobile performance probe for the site and returns its
// field metrics. PageSpeed reports CLS multiplied by 100, so it is
// scaled back to the score the web vitals thresholds are defined in.
func (c *PSIClient) Fetch(ctx context.Context, site string) (FieldMetrics, error) {
	q := url.Values{}
	q.Set("url", site)
	q.Set("category", "PERFORMANCE")
	q.Set("strategy", "mobile")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return FieldMetrics{}, fmt.Errorf("vitals: build pagespeed request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return FieldMetrics{}, fmt.Errorf("vitals: call pagespeed: %w", err)
	}
	defer resp.Body.Close()

	var parsed psiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return FieldMetrics{}, fmt.Errorf("vitals: decode pagespeed response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return FieldMetrics{}, fmt.Errorf("vitals: pagespeed status %d: %s", resp.StatusCode, parsed.Error.Message)
	}

	m := parsed.LoadingExperience.Metrics
	out := FieldMetrics{LCP: m.LCP.Percentile, INP: m.INP.Percentile}
	if m.CLS.Percentile != nil {
		cls := *m.CLS.Percentile / 100
		out.CLS = &cls
	}
	return out, nil
}
