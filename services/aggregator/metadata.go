package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

// assetMetadata is the off-chain JSON document an asset's metadata_url
// points to.
type assetMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// MetadataClient fetches and parses off-chain asset metadata documents on
// behalf of the Hydrator worker.
type MetadataClient struct {
	httpClient *http.Client
}

// NewMetadataClient builds a MetadataClient with a bounded timeout,
// since metadata URLs are untrusted, caller-controlled endpoints.
func NewMetadataClient(timeout time.Duration) *MetadataClient {
	return &MetadataClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: httputil.DefaultTransportWithMinTLS12(),
		},
	}
}

// Fetch retrieves and parses the metadata document at url.
func (m *MetadataClient) Fetch(ctx context.Context, url string) (assetMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return assetMetadata{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return assetMetadata{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return assetMetadata{}, fmt.Errorf("metadata http error %d", resp.StatusCode)
	}

	body, err := httputil.ReadAllStrict(resp.Body, 1<<20)
	if err != nil {
		return assetMetadata{}, fmt.Errorf("read response: %w", err)
	}

	var meta assetMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return assetMetadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
