package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/myautoimport/site-api/pkg/logging"
)

// DataAPIRepository inserts leads through the PostgREST-style data API in
// front of the database, authenticated with the service-role key. This is
// the primary access path.
type DataAPIRepository struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewDataAPIRepository creates the REST insert path. baseURL is the data API
// root without a trailing slash.
func NewDataAPIRepository(baseURL, serviceKey string, logger *logging.Logger) *DataAPIRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &DataAPIRepository{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type dataAPIRow struct {
	ID string `json:"id"`
}

// Insert posts the record to /rest/v1/leads and returns the generated id
// from the representation echoed back by the store.
func (r *DataAPIRepository) Insert(ctx context.Context, lead *Lead) (string, error) {
	payload, err := json.Marshal([]*Lead{lead})
	if err != nil {
		return "", fmt.Errorf("leads: marshal insert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rest/v1/leads", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("leads: build insert request: %w", err)
	}
	req.Header.Set("apikey", r.serviceKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("leads: data API insert: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Error("data API insert rejected", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("leads: data API insert returned status %d", resp.StatusCode)
	}

	var rows []dataAPIRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return "", fmt.Errorf("leads: decode insert representation: %w", err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", ErrNoInsertedID
	}

	return rows[0].ID, nil
}
