package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaflow/caja/internal/domain"
)

// Config holds the three webhook endpoints the notifier posts to. Any of
// them may be empty, in which case that event is silently skipped.
type Config struct {
	CreateURL  string
	VerifyURL  string
	RetractURL string
	Timeout    time.Duration
}

// Notifier implements usecase.Notifier against form-encoded webhooks of a
// downstream messaging system.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a new webhook Notifier.
func New(cfg Config, logger *slog.Logger) *Notifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// refsPayload is the correlation reference envelope the downstream system
// answers announcements with.
type refsPayload struct {
	MessageRef string `json:"message_ref"`
	ThreadRef  string `json:"thread_ref"`
}

// MovementCreated announces a new or updated movement and returns the
// correlation refs the downstream system handed back.
func (n *Notifier) MovementCreated(ctx context.Context, movement *domain.Movement, balance decimal.Decimal) (domain.NotificationRefs, error) {
	if n.cfg.CreateURL == "" {
		return domain.NotificationRefs{}, nil
	}

	form := movementForm(movement)
	form.Set("balance", balance.String())

	body, err := n.post(ctx, n.cfg.CreateURL, form)
	if err != nil {
		return domain.NotificationRefs{}, err
	}

	var refs refsPayload
	if err := json.Unmarshal(body, &refs); err != nil {
		n.logger.Warn("webhook response is not a refs envelope",
			slog.String("movement_id", movement.ID))
		return domain.NotificationRefs{}, nil
	}

	return domain.NotificationRefs{
		MessageRef: refs.MessageRef,
		ThreadRef:  refs.ThreadRef,
	}, nil
}

// MovementVerified announces the confirmation of a previously announced
// movement.
func (n *Notifier) MovementVerified(ctx context.Context, movement *domain.Movement) error {
	if n.cfg.VerifyURL == "" {
		return nil
	}

	form := movementForm(movement)
	form.Set("message_ref", movement.ExternalMessageRef)
	form.Set("thread_ref", movement.ExternalThreadRef)

	_, err := n.post(ctx, n.cfg.VerifyURL, form)
	return err
}

// MovementRetracted retracts an earlier announcement.
func (n *Notifier) MovementRetracted(ctx context.Context, movement *domain.Movement) error {
	if n.cfg.RetractURL == "" {
		return nil
	}

	form := url.Values{}
	form.Set("movement_id", movement.ID)
	form.Set("message_ref", movement.ExternalMessageRef)
	form.Set("thread_ref", movement.ExternalThreadRef)

	_, err := n.post(ctx, n.cfg.RetractURL, form)
	return err
}

func movementForm(movement *domain.Movement) url.Values {
	form := url.Values{}
	form.Set("movement_id", movement.ID)
	form.Set("kind", string(movement.Kind))
	form.Set("amount", movement.Amount.String())
	form.Set("reason", movement.Reason)
	form.Set("state", string(movement.VerificationState))
	if movement.ReceiptURL != "" {
		form.Set("receipt_url", movement.ReceiptURL)
	}
	return form
}

func (n *Notifier) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
