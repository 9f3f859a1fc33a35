package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/sakibbengal/Bengal-Boats-sub000/pkg/errors"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/httpclient"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/domain"
)

const ordersPath = "/api/v1/orders"

// HTTPDoer is satisfied by httpclient.Client and httpclient.CircuitBreakerClient.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback replaces ErrCircuitOpen with a client-facing 503.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("order service is temporarily unavailable, please retry shortly")
}

// ErrRejected is returned when the order service answers 2xx with success=false.
var ErrRejected = errors.New("order rejected by order service")

// OrderClient submits drafts to the order service over HTTP.
type OrderClient struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewOrderClient creates a client for the order service at baseURL.
func NewOrderClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *OrderClient {
	return &OrderClient{http: doer, baseURL: baseURL, logger: logger}
}

type itemPayload struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image,omitempty"`
}

type customerPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
}

type orderPayload struct {
	Items          []itemPayload   `json:"items"`
	Customer       customerPayload `json:"customer"`
	PaymentMethod  string          `json:"paymentMethod"`
	DeliveryOption string          `json:"deliveryOption"`
	DeliveryFee    json.Number     `json:"deliveryFee"`
	Subtotal       json.Number     `json:"subtotal"`
	Total          json.Number     `json:"total"`
	Notes          string          `json:"notes,omitempty"`
	Status         string          `json:"status"`
}

type orderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *struct {
		ID string `json:"id"`
	} `json:"order"`
}

func newPayload(d *domain.OrderDraft) orderPayload {
	items := make([]itemPayload, len(d.Items))
	for i, it := range d.Items {
		items[i] = itemPayload{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     json.Number(it.UnitPrice.String()),
			Quantity:  it.Quantity,
			Image:     it.Image,
		}
	}
	return orderPayload{
		Items: items,
		Customer: customerPayload{
			Name:       d.Customer.Name,
			Email:      d.Customer.Email,
			Phone:      d.Customer.Phone,
			Address:    d.Customer.Address,
			City:       d.Customer.City,
			PostalCode: d.Customer.PostalCode,
		},
		PaymentMethod:  string(d.PaymentMethod),
		DeliveryOption: string(d.DeliveryZone),
		DeliveryFee:    json.Number(d.DeliveryFee.String()),
		Subtotal:       json.Number(d.Subtotal.String()),
		Total:          json.Number(d.Total.String()),
		Notes:          d.Notes,
		Status:         d.Status,
	}
}

// SubmitOrder posts the draft and returns the created order's confirmation.
func (c *OrderClient) SubmitOrder(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderConfirmation, error) {
	body, err := json.Marshal(newPayload(draft))
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call order service: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "order-service")
	}
	defer resp.Body.Close()

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if !out.Success || out.Order == nil || out.Order.ID == "" {
		msg := out.Message
		if msg == "" {
			msg = "no order id returned"
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	c.logger.InfoContext(ctx, "order submitted",
		slog.String("order_id", out.Order.ID),
		slog.String("total", draft.Total.String()),
	)

	return &domain.OrderConfirmation{
		OrderID: out.Order.ID,
		Message: out.Message,
		Draft:   draft,
	}, nil
}
