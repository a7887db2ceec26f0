package payment

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
)

// VirtualKeyPrefix prefixes every payment key issued by the virtual provider.
const VirtualKeyPrefix = "VIRTUAL_"

// VirtualGateway approves every payment without contacting a provider.
// It is the development and test provider.
type VirtualGateway struct {
	successURL string
	logger     *slog.Logger
	now        func() time.Time
}

// NewVirtualGateway creates a virtual provider. successURL, when set, is
// used to build a checkout URL that already carries the callback parameters.
func NewVirtualGateway(successURL string, log *slog.Logger) *VirtualGateway {
	if log == nil {
		log = slog.Default()
	}
	return &VirtualGateway{
		successURL: successURL,
		logger:     log.With(slog.String("component", "virtual_gateway")),
		now:        time.Now,
	}
}

// Name implements Gateway.
func (g *VirtualGateway) Name() string { return ProviderVirtual }

// Prepare implements Gateway.
func (g *VirtualGateway) Prepare(ctx context.Context, req PrepareRequest) (*Handle, error) {
	h := &Handle{
		Provider:  ProviderVirtual,
		OrderID:   req.OrderID,
		OrderName: req.OrderName,
		Amount:    req.Amount,
	}

	if g.successURL != "" {
		q := url.Values{}
		q.Set("orderId", req.OrderID)
		q.Set("paymentKey", VirtualKeyPrefix+uuid.NewString())
		q.Set("amount", strconv.FormatInt(req.Amount, 10))
		sep := "?"
		if strings.Contains(g.successURL, "?") {
			sep = "&"
		}
		h.SuccessURL = g.successURL
		h.CheckoutURL = g.successURL + sep + q.Encode()
	}

	logger.FromContextOrDefault(ctx, g.logger).Debug("virtual payment prepared",
		slog.String("order_id", req.OrderID),
		slog.Int64("amount", req.Amount))
	return h, nil
}

// Confirm implements Gateway. A missing payment key is replaced by a fresh
// virtual key.
func (g *VirtualGateway) Confirm(ctx context.Context, req ConfirmRequest) (*Receipt, error) {
	key := req.PaymentKey
	if key == "" {
		key = VirtualKeyPrefix + uuid.NewString()
	}

	logger.FromContextOrDefault(ctx, g.logger).Debug("virtual payment approved",
		slog.String("order_id", req.OrderID))

	return &Receipt{
		PaymentKey: key,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Method:     "VIRTUAL",
		ApprovedAt: g.now().UTC(),
	}, nil
}

// Cancel implements Gateway.
func (g *VirtualGateway) Cancel(ctx context.Context, req CancelRequest) error {
	logger.FromContextOrDefault(ctx, g.logger).Debug("virtual payment canceled",
		slog.Int64("amount", req.Amount),
		slog.String("reason", req.Reason))
	return nil
}

var _ Gateway = (*VirtualGateway)(nil)
