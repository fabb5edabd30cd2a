package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Print templates understood by the print service
const (
	TemplateFabrication = "fabrication"
	TemplateCaisse      = "caisse"
)

// CancelledItem is one line announced on a cancellation slip
type CancelledItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Client is the interface for sending print jobs to the remote print service.
type Client interface {
	// Print renders a whole order with the given template.
	Print(ctx context.Context, orderID, salesPointID uuid.UUID, template string) error
	// PrintCancellation sends a cancellation slip for the given items.
	PrintCancellation(ctx context.Context, orderID, salesPointID uuid.UUID, orderNumber string, items []CancelledItem) error
	// PrintSpecificItems renders only the given order lines.
	PrintSpecificItems(ctx context.Context, orderID, salesPointID uuid.UUID, itemIDs []uuid.UUID, template string) error
	Health(ctx context.Context) (json.RawMessage, error)
	Printers(ctx context.Context) (json.RawMessage, error)
	Mapping(ctx context.Context) (json.RawMessage, error)
}

// --- HTTP client (JSON over HTTP, e.g. http://print-server:5000) ---

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the print service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type printRequest struct {
	OrderID      uuid.UUID `json:"order_id"`
	SalesPointID uuid.UUID `json:"sales_point_id"`
	TemplateType string    `json:"template_type"`
}

type cancellationRequest struct {
	OrderID        uuid.UUID       `json:"order_id"`
	SalesPointID   uuid.UUID       `json:"sales_point_id"`
	CancelledItems []CancelledItem `json:"cancelled_items"`
	OrderNumber    string          `json:"order_number"`
}

type specificItemsRequest struct {
	OrderID      uuid.UUID   `json:"order_id"`
	SalesPointID uuid.UUID   `json:"sales_point_id"`
	ItemIDs      []uuid.UUID `json:"item_ids"`
	TemplateType string      `json:"template_type"`
}

type serviceReply struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *httpClient) Print(ctx context.Context, orderID, salesPointID uuid.UUID, template string) error {
	return c.post(ctx, "/api/print", printRequest{
		OrderID:      orderID,
		SalesPointID: salesPointID,
		TemplateType: template,
	})
}

func (c *httpClient) PrintCancellation(ctx context.Context, orderID, salesPointID uuid.UUID, orderNumber string, items []CancelledItem) error {
	return c.post(ctx, "/api/print-cancellation", cancellationRequest{
		OrderID:        orderID,
		SalesPointID:   salesPointID,
		CancelledItems: items,
		OrderNumber:    orderNumber,
	})
}

func (c *httpClient) PrintSpecificItems(ctx context.Context, orderID, salesPointID uuid.UUID, itemIDs []uuid.UUID, template string) error {
	return c.post(ctx, "/api/print-specific-items", specificItemsRequest{
		OrderID:      orderID,
		SalesPointID: salesPointID,
		ItemIDs:      itemIDs,
		TemplateType: template,
	})
}

func (c *httpClient) Health(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/health")
}

func (c *httpClient) Printers(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/printers")
}

func (c *httpClient) Mapping(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/mapping")
}

func (c *httpClient) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("printer: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("printer: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("printer: failed to reach %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var reply serviceReply
	if json.Unmarshal(raw, &reply) == nil && reply.Error != "" {
		return fmt.Errorf("printer: %s: %s", path, reply.Error)
	}
	return fmt.Errorf("printer: %s returned status %d", path, resp.StatusCode)
}

func (c *httpClient) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("printer: failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("printer: failed to reach %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("printer: failed to read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("printer: %s returned status %d", path, resp.StatusCode)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("printer: %s returned invalid JSON", path)
	}
	return json.RawMessage(raw), nil
}

// --- Null client (no-op, used when no print service is configured) ---

type nullClient struct{}

// NewNullClient creates a no-op client for environments without a print service.
func NewNullClient() Client {
	return nullClient{}
}

func (nullClient) Print(context.Context, uuid.UUID, uuid.UUID, string) error { return nil }

func (nullClient) PrintCancellation(context.Context, uuid.UUID, uuid.UUID, string, []CancelledItem) error {
	return nil
}

func (nullClient) PrintSpecificItems(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID, string) error {
	return nil
}

func (nullClient) Health(context.Context) (json.RawMessage, error) {
	return nil, fmt.Errorf("printer: print service is not configured")
}

func (nullClient) Printers(context.Context) (json.RawMessage, error) {
	return nil, fmt.Errorf("printer: print service is not configured")
}

func (nullClient) Mapping(context.Context) (json.RawMessage, error) {
	return nil, fmt.Errorf("printer: print service is not configured")
}

// NewClientFromConfig creates the appropriate Client.
//
//	enabled: false selects the null client
//	baseURL: print service root (e.g. "http://localhost:5000")
func NewClientFromConfig(enabled bool, baseURL string, timeout time.Duration) (Client, error) {
	if !enabled {
		return NewNullClient(), nil
	}
	if baseURL == "" {
		return nil, fmt.Errorf("printer: base URL is required when printing is enabled")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewHTTPClient(baseURL, timeout), nil
}
