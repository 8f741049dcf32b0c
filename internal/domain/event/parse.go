package event

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultCurrency = "usd"

// Parse decodes a raw webhook body into an Envelope.
func Parse(body []byte) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, ErrMalformedPayload
	}
	root, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ErrMalformedPayload
	}

	payload := object(root)
	data := payload.obj("data")
	if data == nil {
		data = payload
	}

	env := &Envelope{
		Type:      payload.str("type", "action"),
		PayloadID: firstNonEmpty(payload.str("id"), data.str("id")),
	}
	if env.Type == "" {
		env.Type = string(KindUnknown)
	}
	env.Kind = normalizeKind(env.Type)

	switch {
	case env.Kind.IsPayment():
		env.Payment = parsePayment(data)
	case env.Kind.IsRefund():
		env.Refund = parseRefund(data)
	}

	return env, nil
}

func normalizeKind(eventType string) Kind {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(eventType)), "_", "."))
	if k.IsPayment() || k.IsRefund() {
		return k
	}
	return KindUnknown
}

func parsePayment(data object) *Payment {
	user := data.obj("user")
	if user == nil {
		user = data.obj("customer")
	}
	membership := data.obj("membership")
	product := data.obj("product")

	p := &Payment{
		ID:           data.str("id"),
		PlanID:       firstNonEmpty(data.obj("plan").str("id"), data.str("plan_id")),
		ProductID:    firstNonEmpty(product.str("id"), data.str("product_id")),
		ProductTitle: product.str("title", "name"),
		Customer: Party{
			ID:    user.str("id"),
			Name:  user.str("name", "username"),
			Email: user.str("email"),
		},
		Membership: Party{
			ID:    membership.str("id"),
			Name:  membership.str("name"),
			Email: membership.str("email"),
		},
		Amount:   paymentAmount(data),
		Currency: strings.ToLower(data.str("currency")),
		PaidAt:   data.time("paid_at"),
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	return p
}

// paymentAmount resolves the charged amount. A string "total" wins over the
// numeric fields; older payloads only carry subtotal or creator totals.
func paymentAmount(data object) decimal.Decimal {
	if s, ok := data["total"].(string); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d
		}
	}
	for _, key := range []string{"final_amount", "total", "subtotal", "creator_total", "amount"} {
		if d, ok := data.decimal(key); ok {
			return d
		}
	}
	return decimal.Zero
}

func parseRefund(data object) *Refund {
	r := &Refund{
		PaymentID:  firstNonEmpty(data.obj("payment").str("id"), data.str("payment_id")),
		RefundedAt: data.time("refunded_at"),
	}
	if r.RefundedAt == nil {
		r.RefundedAt = data.time("created_at")
	}
	for _, key := range []string{"refund_amount", "amount", "total"} {
		if d, ok := data.decimal(key); ok {
			r.Amount = d
			break
		}
	}
	return r
}

// object is a decoded JSON object. Accessors on a nil object return zero values.
type object map[string]interface{}

func (o object) obj(key string) object {
	if v, ok := o[key].(map[string]interface{}); ok {
		return object(v)
	}
	return nil
}

// str returns the first non-empty string value among keys.
func (o object) str(keys ...string) string {
	for _, key := range keys {
		switch v := o[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func (o object) decimal(key string) (decimal.Decimal, bool) {
	var s string
	switch v := o[key].(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// time reads Unix seconds, a numeric string, or an RFC 3339 timestamp.
func (o object) time(key string) *time.Time {
	var t time.Time
	switch v := o[key].(type) {
	case json.Number:
		secs, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return nil
			}
			secs = int64(f)
		}
		t = time.Unix(secs, 0).UTC()
	case string:
		v = strings.TrimSpace(v)
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			t = time.Unix(secs, 0).UTC()
		} else if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			t = parsed.UTC()
		} else {
			return nil
		}
	default:
		return nil
	}
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
