package services_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"

	"careerkit/internal/services"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header the way the provider does:
// t=<unix>,v1=<hex hmac-sha256 over "<unix>.<payload>">.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newTestGateway(t *testing.T) services.IStripeGateway {
	t.Helper()
	gateway, err := services.NewStripeGateway(services.StripeConfig{
		SecretKey:     "sk_test_key",
		WebhookSecret: testWebhookSecret,
		FrontendURL:   "https://app.example.com",
	})
	require.NoError(t, err)
	return gateway
}

func TestVerifyWebhookAcceptsValidSignature(t *testing.T) {
	gateway := newTestGateway(t)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","customer":"cus_1"}}}`,
		stripe.APIVersion))

	event, err := gateway.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "customer.subscription.deleted", event.Type)

	var object struct {
		Customer string `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(event.Raw, &object))
	assert.Equal(t, "cus_1", object.Customer)
}

func TestVerifyWebhookRejectsTamperedPayload(t *testing.T) {
	gateway := newTestGateway(t)

	payload := []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"invoice.paid","data":{"object":{"customer":"cus_1"}}}`,
		stripe.APIVersion))
	header := signPayload(payload, testWebhookSecret, time.Now())

	tampered := []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":"invoice.paid","data":{"object":{"customer":"cus_attacker"}}}`,
		stripe.APIVersion))

	_, err := gateway.VerifyWebhook(tampered, header)
	require.Error(t, err)
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	gateway := newTestGateway(t)

	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	header := signPayload(payload, "whsec_other_secret", time.Now())

	_, err := gateway.VerifyWebhook(payload, header)
	require.Error(t, err)
}

func TestNewStripeGatewayRequiresSecretKey(t *testing.T) {
	_, err := services.NewStripeGateway(services.StripeConfig{WebhookSecret: testWebhookSecret})
	require.Error(t, err)
}
