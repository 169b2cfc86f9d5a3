package clients

import (
	"context"
	"fmt"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/config"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Verify outcome values reported by the gateway.
const (
	TxnSuccess   = "success"
	TxnAbandoned = "abandoned"
	TxnFailed    = "failed"
)

// Paystack is the card payment gateway. Charge implements
// wizard.CardGateway; Verify resolves the outcome when the user comes back
// through the redirect callback.
type Paystack interface {
	wizard.CardGateway
	Verify(ctx context.Context, reference string) (string, error)
}

type paystackClient struct {
	rc *resty.Client
}

func NewPaystack(cfg config.PaystackConfig) Paystack {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Content-Type", "application/json")
	return &paystackClient{rc: rc}
}

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"` // smallest currency unit
	Reference   string   `json:"reference"`
	Channels    []string `json:"channels,omitempty"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *paystackClient) Charge(ctx context.Context, charge wizard.CardCharge) (*wizard.CardAuthorization, error) {
	var body initializeResponse

	resp, err := p.rc.R().
		SetContext(ctx).
		SetBody(initializeRequest{
			Email:       charge.Email,
			Amount:      charge.AmountMinor,
			Reference:   charge.Reference,
			Channels:    charge.Channels,
			CallbackURL: charge.CallbackURL,
		}).
		SetResult(&body).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("initialize transaction: %w", err)
	}
	if resp.IsError() || !body.Status {
		logrus.Errorf("paystack initialize failed for %s: %s", charge.Reference, body.Message)
		return nil, fmt.Errorf("initialize transaction: %s", body.Message)
	}

	return &wizard.CardAuthorization{
		AuthorizationURL: body.Data.AuthorizationURL,
		AccessCode:       body.Data.AccessCode,
	}, nil
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status string `json:"status"`
	} `json:"data"`
}

func (p *paystackClient) Verify(ctx context.Context, reference string) (string, error) {
	var body verifyResponse

	resp, err := p.rc.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/transaction/verify/" + reference)
	if err != nil {
		return "", fmt.Errorf("verify transaction %s: %w", reference, err)
	}
	if resp.IsError() || !body.Status {
		return "", fmt.Errorf("verify transaction %s: %s", reference, resp.Status())
	}

	return body.Data.Status, nil
}
