package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/config"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstreamConfig(url string) config.UpstreamConfig {
	return config.UpstreamConfig{BaseURL: url, APIKey: "test-key", Timeout: 5 * time.Second}
}

func TestListProductsNormalizesBothShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "lagos-1", r.URL.Query().Get("region"))
		assert.Equal(t, CategoryComputeInstance, r.URL.Query().Get("category"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"plain-1","name":"Plain","price":10},
			{"name":"ignored","product":{"id":"pr-2","productable_id":"res-2","name":"Wrapped","price":20}}
		]}`))
	}))
	defer srv.Close()

	cloud := NewCloud(upstreamConfig(srv.URL))
	opts, err := cloud.ListProducts(context.Background(), "lagos-1", CategoryComputeInstance)
	require.NoError(t, err)
	require.Len(t, opts, 2)

	assert.Equal(t, wizard.Option{ID: "plain-1", ResourceID: "plain-1", Label: "Plain", Price: 10, Region: "lagos-1"}, opts[0])
	assert.Equal(t, wizard.Option{ID: "pr-2", ResourceID: "res-2", Label: "Wrapped", Price: 20, Region: "lagos-1"}, opts[1])
}

func TestSubmitOrderParsesIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		var batch wizard.OrderBatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		assert.Len(t, batch.Requests, 1)
		assert.Equal(t, []string{"prod"}, batch.Tags)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{
			"reference":"ORD-9",
			"payment_gateway_options":[{"id":"po-1","provider":"paystack","payment_type":"card","total":5000}],
			"pricing":{"subtotal":5000,"total":5000}
		}}`))
	}))
	defer srv.Close()

	cloud := NewCloud(upstreamConfig(srv.URL))
	intent, err := cloud.SubmitOrder(context.Background(), wizard.OrderBatch{
		Requests: []wizard.PricingRequest{{Name: "web-01"}},
		Tags:     []string{"prod"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", intent.Reference)
	require.Len(t, intent.PaymentOptions, 1)
	assert.Equal(t, "paystack", intent.PaymentOptions[0].Provider)
	assert.Equal(t, float64(5000), intent.Pricing.Total)
}

func TestSubmitOrderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid batch"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	cloud := NewCloud(upstreamConfig(srv.URL))
	_, err := cloud.SubmitOrder(context.Background(), wizard.OrderBatch{})
	assert.Error(t, err)
}

func TestPaystackChargeSendsMinorUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req initializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(500000), req.Amount)
		assert.Equal(t, "ada@example.com", req.Email)
		assert.Equal(t, "ORD-9", req.Reference)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/xyz","access_code":"xyz","reference":"ORD-9"
		}}`))
	}))
	defer srv.Close()

	ps := NewPaystack(config.PaystackConfig{BaseURL: srv.URL, SecretKey: "sk_test"})
	auth, err := ps.Charge(context.Background(), wizard.CardCharge{
		Email:       "ada@example.com",
		AmountMinor: 500000,
		Reference:   "ORD-9",
		Channels:    []string{"card"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/xyz", auth.AuthorizationURL)
}

func TestPaystackVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/ORD-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"data":{"status":"success"}}`))
	}))
	defer srv.Close()

	ps := NewPaystack(config.PaystackConfig{BaseURL: srv.URL, SecretKey: "sk_test"})
	status, err := ps.Verify(context.Background(), "ORD-9")
	require.NoError(t, err)
	assert.Equal(t, TxnSuccess, status)
}
