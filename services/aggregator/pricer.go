package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/infrastructure/httputil"
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

// priceEnvelope is the external price API's response shape: a status tag
// plus either a numeric payload or an error message.
type priceEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Msg    string          `json:"msg"`
}

// Pricer polls an external SOL/USD price feed and synthesizes a
// SolPriceEvent for the Applier, the same way the Scanner/Retriever
// synthesize events from chain data. Grounded on
// original_source/pricer.rs.
type Pricer struct {
	apiURL     string
	httpClient *http.Client
	out        chan<- decodedEvent
	interval   time.Duration
	log        *logrus.Entry
}

// NewPricer builds a Pricer that emits synthetic price events to out.
func NewPricer(apiURL string, out chan<- decodedEvent, interval time.Duration) *Pricer {
	return &Pricer{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: httputil.DefaultTransportWithMinTLS12(),
		},
		out:      out,
		interval: interval,
		log:      logrus.WithField("component", "aggregator-pricer"),
	}
}

// Run fetches immediately, then on a fixed interval, until ctx is
// canceled.
func (p *Pricer) Run(ctx context.Context) {
	p.fetchAndSend(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndSend(ctx)
		}
	}
}

func (p *Pricer) fetchAndSend(ctx context.Context) {
	price, err := p.fetchPrice(ctx)
	if err != nil {
		p.log.WithError(err).Warn("fetch sol price failed")
		return
	}

	evt := decodedEvent{
		signature: event.Signature{},
		timestamp: uint64(time.Now().Unix()),
		data:      event.SolPriceEvent{Price: price},
	}
	select {
	case p.out <- evt:
	case <-ctx.Done():
	}
}

func (p *Pricer) fetchPrice(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/sol-price", nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadAllStrict(resp.Body, 1<<20)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var env priceEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if env.Status != "ok" && env.Status != "success" {
		return 0, fmt.Errorf("price api error: %s", env.Msg)
	}

	var price float64
	if err := json.Unmarshal(env.Data, &price); err != nil {
		return 0, fmt.Errorf("decode price payload: %w", err)
	}
	return price, nil
}
