package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firestige.xyz/ingestd/internal/model"
)

const defaultTimeout = 10 * time.Second

// wireEntry mirrors one leaf of §6's nested route-config response:
// {"<sourceProvider>": {"<sourceTopic>": {destName, destTopic, batchSize, xformName}}}.
type wireEntry struct {
	DestName  string `json:"destName"`
	DestTopic string `json:"destTopic"`
	BatchSize int    `json:"batchSize"`
	XformName string `json:"xformName"`
}

// HTTPRegistry is the default MetaRegistry: it POSTs {"deployment_name":
// deployName} to endpoint and decodes the nested route-config shape (§6).
type HTTPRegistry struct {
	endpoint   string
	deployName string
	client     *http.Client
}

// NewHTTPRegistry constructs an HTTPRegistry targeting endpoint (the
// deployment's configured "get-route-config" URL).
func NewHTTPRegistry(endpoint, deployName string) *HTTPRegistry {
	return &HTTPRegistry{
		endpoint:   endpoint,
		deployName: deployName,
		client:     &http.Client{Timeout: defaultTimeout},
	}
}

// Initialize validates that an endpoint was configured; it performs no
// network I/O (the first Fetch happens during Router.refresh, §4.8).
func (h *HTTPRegistry) Initialize() bool {
	return h.endpoint != ""
}

// Fetch performs the get-route-config POST and flattens the response into
// RouteDescriptors. A non-nil error, or a response carrying errorMessage,
// means "retain previous table" to the caller (§4.8, §7 RegistryFetchFailure).
func (h *HTTPRegistry) Fetch() ([]model.RouteDescriptor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"deployment_name": h.deployName})
	if err != nil {
		return nil, fmt.Errorf("registry: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("registry: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		ErrorMessage string `json:"errorMessage"`
	}
	bodyBytes, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("registry: read response: %w", err)
	}
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil && envelope.ErrorMessage != "" {
		return nil, fmt.Errorf("registry: remote reported error: %s", envelope.ErrorMessage)
	}

	var raw map[string]map[string]wireEntry
	if err := json.Unmarshal(bodyBytes, &raw); err != nil {
		return nil, fmt.Errorf("registry: decode response: %w", err)
	}

	return flatten(raw), nil
}

func readBody(resp *http.Response) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flatten(raw map[string]map[string]wireEntry) []model.RouteDescriptor {
	out := make([]model.RouteDescriptor, 0, len(raw))
	for sourceProvider, topics := range raw {
		for sourceTopic, entry := range topics {
			out = append(out, model.RouteDescriptor{
				SourceProvider: sourceProvider,
				SourceTopic:    sourceTopic,
				DestProvider:   entry.DestName,
				DestTopic:      entry.DestTopic,
				MaxBatchSize:   entry.BatchSize,
				TransformMeta:  strings.TrimSpace(entry.XformName),
			})
		}
	}
	return out
}
