package event

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PaymentSucceeded(t *testing.T) {
	body := []byte(`{
		"id": "msg_123",
		"type": "payment.succeeded",
		"data": {
			"id": "pay_1",
			"plan": {"id": "plan_A"},
			"product": {"id": "prod_1", "title": "Coaching"},
			"user": {"id": "user_1", "name": "Jane Doe", "email": "jane@example.com"},
			"membership": {"id": "mem_1", "email": "member@example.com"},
			"final_amount": 199.5,
			"total": "200.00",
			"currency": "USD",
			"paid_at": 1700000000
		}
	}`)

	env, err := Parse(body)
	require.NoError(t, err)

	assert.Equal(t, KindPaymentSucceeded, env.Kind)
	assert.Equal(t, "payment.succeeded", env.Type)
	assert.Equal(t, "msg_123", env.PayloadID)
	require.NotNil(t, env.Payment)
	assert.Nil(t, env.Refund)

	p := env.Payment
	assert.Equal(t, "pay_1", p.ID)
	assert.Equal(t, "plan_A", p.PlanID)
	assert.Equal(t, "prod_1", p.ProductID)
	assert.Equal(t, "Coaching", p.ProductTitle)
	assert.Equal(t, "Jane Doe", p.CustomerName())
	assert.Equal(t, "jane@example.com", p.CustomerEmail())
	assert.Equal(t, "mem_1", p.Membership.ID)
	assert.True(t, decimal.RequireFromString("200").Equal(p.Amount), "string total wins over final_amount")
	assert.Equal(t, "usd", p.Currency)
	require.NotNil(t, p.PaidAt)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *p.PaidAt)
}

func TestParse_EventTypeVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Kind
	}{
		{"type field", `{"type":"payment.failed","data":{}}`, KindPaymentFailed},
		{"action field", `{"action":"payment.pending","data":{}}`, KindPaymentPending},
		{"underscore variant", `{"action":"payment_succeeded","data":{}}`, KindPaymentSucceeded},
		{"refund underscore", `{"type":"refund_created","data":{}}`, KindRefundCreated},
		{"refund updated", `{"type":"refund.updated","data":{}}`, KindRefundUpdated},
		{"unknown type", `{"type":"membership.went_valid","data":{}}`, KindUnknown},
		{"missing type", `{"data":{}}`, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.Kind)
		})
	}
}

func TestParse_AmountFallbacks(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"final amount only", `{"final_amount": 49.99}`, "49.99"},
		{"numeric total", `{"total": 75}`, "75"},
		{"subtotal", `{"subtotal": "12.50"}`, "12.5"},
		{"creator total", `{"creator_total": 30}`, "30"},
		{"amount", `{"amount": 10}`, "10"},
		{"unparseable total falls through", `{"total": "n/a", "final_amount": 5}`, "5"},
		{"nothing", `{}`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Parse([]byte(`{"type":"payment.succeeded","data":` + tt.data + `}`))
			require.NoError(t, err)
			require.NotNil(t, env.Payment)
			assert.Equal(t, decimal.RequireFromString(tt.want).String(), env.Payment.Amount.String())
		})
	}
}

func TestParse_PayloadWithoutDataObject(t *testing.T) {
	body := []byte(`{"action":"payment_succeeded","id":"pay_9","plan_id":"plan_B","amount":"15.00","customer":{"email":"c@example.com"}}`)

	env, err := Parse(body)
	require.NoError(t, err)
	require.NotNil(t, env.Payment)
	assert.Equal(t, "pay_9", env.Payment.ID)
	assert.Equal(t, "plan_B", env.Payment.PlanID)
	assert.Equal(t, "c@example.com", env.Payment.CustomerEmail())
	assert.Equal(t, "pay_9", env.PayloadID)
	assert.Nil(t, env.Payment.PaidAt)
}

func TestParse_Refund(t *testing.T) {
	t.Run("nested payment reference", func(t *testing.T) {
		env, err := Parse([]byte(`{"type":"refund.created","data":{"id":"rf_1","payment":{"id":"pay_1"},"amount":"25.00","created_at":"2024-01-02T03:04:05Z"}}`))
		require.NoError(t, err)
		require.NotNil(t, env.Refund)
		assert.Nil(t, env.Payment)
		assert.Equal(t, "pay_1", env.Refund.PaymentID)
		assert.True(t, decimal.RequireFromString("25").Equal(env.Refund.Amount))
		require.NotNil(t, env.Refund.RefundedAt)
		assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), *env.Refund.RefundedAt)
	})

	t.Run("flat payment id", func(t *testing.T) {
		env, err := Parse([]byte(`{"type":"refund_updated","data":{"id":"rf_2","payment_id":"pay_2","refund_amount":5}}`))
		require.NoError(t, err)
		require.NotNil(t, env.Refund)
		assert.Equal(t, "pay_2", env.Refund.PaymentID)
		assert.True(t, decimal.NewFromInt(5).Equal(env.Refund.Amount))
		assert.Nil(t, env.Refund.RefundedAt)
	})

	t.Run("refund id is not a payment id", func(t *testing.T) {
		env, err := Parse([]byte(`{"type":"refund.created","data":{"id":"rf_3"}}`))
		require.NoError(t, err)
		assert.Empty(t, env.Refund.PaymentID)
	})
}

func TestParse_Malformed(t *testing.T) {
	for _, body := range []string{``, `not json`, `[1,2,3]`, `"string"`} {
		_, err := Parse([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedPayload, "body %q", body)
	}
}
