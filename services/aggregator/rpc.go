package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/R3E-Network/service_layer/infrastructure/httputil"
)

// RPCRequest is a JSON-RPC 2.0 request envelope, grounded on
// infrastructure/chain/client.go's request/response shape and reused
// here against the chain's getSignaturesForAddress/getTransaction calls
// instead of Neo's getblock/getrawtransaction.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

// RPCClient is the chain JSON-RPC client the Scanner and Retriever share,
// rate-limited so a backlog of retries can never overwhelm the upstream
// node.
type RPCClient struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// maxResponseBytes bounds a single RPC response, matching the original
// Retriever's MAX_RESPONSE_LEN safeguard against runaway batched replies.
const maxResponseBytes = 100_000_000

// NewRPCClient builds a rate-limited JSON-RPC client against url,
// allowing up to ratePerSecond requests/second with a burst of the same
// size.
func NewRPCClient(url string, ratePerSecond int, timeout time.Duration) (*RPCClient, error) {
	normalized, _, err := httputil.NormalizeBaseURL(url, httputil.BaseURLOptions{})
	if err != nil {
		return nil, fmt.Errorf("invalid rpc url: %w", err)
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 50
	}
	return &RPCClient{
		url: normalized,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: httputil.DefaultTransportWithMinTLS12(),
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}, nil
}

// Call issues a single JSON-RPC request.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := RPCRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute rpc request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, truncated, readErr := httputil.ReadAllWithLimit(resp.Body, 32<<10)
		if readErr != nil {
			return nil, fmt.Errorf("read error response: %w", readErr)
		}
		msg := strings.TrimSpace(string(respBody))
		if truncated {
			msg += "...(truncated)"
		}
		return nil, fmt.Errorf("rpc http error %d: %s", resp.StatusCode, msg)
	}

	respBody, err := httputil.ReadAllStrict(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

// CallBatch issues a batch of JSON-RPC requests in a single HTTP round
// trip, matching the Retriever's batched getTransaction calls. Some
// nodes silently ignore batching and return a single object instead of
// an array; callers detect this by checking len(result)==1 against an
// expected count greater than one.
func (c *RPCClient) CallBatch(ctx context.Context, reqs []RPCRequest) ([]RPCResponse, error) {
	if err := c.limiter.WaitN(ctx, len(reqs)); err != nil {
		return nil, err
	}

	body, err := json.Marshal(reqs)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc batch: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc batch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute rpc batch request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := httputil.ReadAllStrict(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read rpc batch response: %w", err)
	}

	var responses []RPCResponse
	if err := json.Unmarshal(respBody, &responses); err != nil {
		// Some nodes reject batching outright and answer with a single
		// object; let the caller detect and fall back.
		var single RPCResponse
		if singleErr := json.Unmarshal(respBody, &single); singleErr == nil {
			return []RPCResponse{single}, nil
		}
		return nil, fmt.Errorf("unmarshal rpc batch response: %w", err)
	}
	return responses, nil
}
