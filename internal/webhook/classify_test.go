package webhook

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
	"github.com/xenking/whatsapp-checkout/internal/graph"
)

// --- Mock implementations ---

type mockQuerier struct {
	calls      int
	lastSender string
	lastRef    string
	err        error
}

func (m *mockQuerier) QueryPaymentStatus(_ context.Context, senderPhone, referenceID string) (*graph.PaymentStatus, error) {
	m.calls++
	m.lastSender = senderPhone
	m.lastRef = referenceID
	if m.err != nil {
		return nil, m.err
	}
	return &graph.PaymentStatus{ReferenceID: referenceID}, nil
}

type mockPicker struct {
	sender string
	err    error
}

func (m *mockPicker) AnySender(_ context.Context) (string, error) {
	return m.sender, m.err
}

// --- Helpers ---

func newTestClassifier(q *mockQuerier) *Classifier {
	return NewClassifier(
		&credentials.Static{Token: "t", Secret: "s", WABA: "waba-1", PaymentConfig: "pc"},
		q,
		&mockPicker{sender: "111"},
	)
}

func confirmationBody() []byte {
	return []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "waba-1",
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"display_phone_number": "16315550000"},
					"messages": [{
						"interactive": {
							"type": "payment",
							"payment": {
								"transaction_id": "tx-1",
								"reference_id": "ref-1",
								"status": "captured"
							}
						}
					}]
				}
			}]
		}]
	}`)
}

func statusUpdateBody(status string) []byte {
	return fmt.Appendf(nil, `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "waba-1",
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"display_phone_number": "16315550000"},
					"statuses": [{
						"id": "wamid.9",
						"recipient_id": "919999999999",
						"type": "payment",
						"status": %q,
						"timestamp": "1700000000",
						"payment": {"reference_id": "ref-2"}
					}]
				}
			}]
		}]
	}`, status)
}

// --- Tests ---

func TestClassify_PaymentConfirmation(t *testing.T) {
	q := &mockQuerier{}
	c := newTestClassifier(q)

	ev, err := c.Classify(context.Background(), confirmationBody())
	require.NoError(t, err)

	conf, ok := ev.(PaymentConfirmation)
	require.True(t, ok, "expected PaymentConfirmation, got %T", ev)
	assert.Equal(t, "tx-1", conf.TransactionID)
	assert.Equal(t, "ref-1", conf.ReferenceID)
	assert.Equal(t, "captured", conf.Status)
	assert.Equal(t, "16315550000", conf.DisplayPhoneNumber)

	assert.Zero(t, q.calls, "confirmations must not trigger a status query")
}

func TestClassify_PaymentStatusUpdate(t *testing.T) {
	for _, status := range []string{"pending", "failed", "success", "canceled"} {
		t.Run(status, func(t *testing.T) {
			q := &mockQuerier{}
			c := newTestClassifier(q)

			ev, err := c.Classify(context.Background(), statusUpdateBody(status))
			require.NoError(t, err)

			upd, ok := ev.(PaymentStatusUpdate)
			require.True(t, ok, "expected PaymentStatusUpdate, got %T", ev)
			assert.Equal(t, "wamid.9", upd.MessageID)
			assert.Equal(t, "ref-2", upd.ReferenceID)
			assert.Equal(t, status, upd.Status)
			assert.Equal(t, "1700000000", upd.Timestamp)

			require.Equal(t, 1, q.calls, "status updates trigger exactly one query")
			assert.Equal(t, "111", q.lastSender)
			assert.Equal(t, "ref-2", q.lastRef)
		})
	}
}

func TestClassify_UnknownStatusValueIsUnrecognized(t *testing.T) {
	q := &mockQuerier{}
	c := newTestClassifier(q)

	ev, err := c.Classify(context.Background(), statusUpdateBody("refunded"))
	require.NoError(t, err)

	_, ok := ev.(Unrecognized)
	require.True(t, ok, "expected Unrecognized, got %T", ev)
	assert.Zero(t, q.calls)
}

func TestClassify_ConfirmationWinsOverStatus(t *testing.T) {
	// A callback carrying both shapes resolves to the confirmation: guard
	// order is first match wins.
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "waba-1",
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"display_phone_number": "1"},
					"messages": [{"interactive": {"type": "payment", "payment": {"transaction_id": "tx", "reference_id": "r", "status": "s"}}}],
					"statuses": [{"id": "m", "recipient_id": "9", "type": "payment", "status": "success", "timestamp": "1", "payment": {"reference_id": "r"}}]
				}
			}]
		}]
	}`)
	q := &mockQuerier{}
	c := newTestClassifier(q)

	ev, err := c.Classify(context.Background(), body)
	require.NoError(t, err)

	_, ok := ev.(PaymentConfirmation)
	require.True(t, ok, "expected PaymentConfirmation, got %T", ev)
	assert.Zero(t, q.calls)
}

func TestClassify_Dropped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "foreign object", body: `{"object":"page","entry":[{"id":"waba-1"}]}`},
		{name: "no entries", body: `{"object":"whatsapp_business_account","entry":[]}`},
		{name: "foreign account", body: `{"object":"whatsapp_business_account","entry":[{"id":"other-waba","changes":[{"field":"messages","value":{}}]}]}`},
		{name: "non-message change", body: `{"object":"whatsapp_business_account","entry":[{"id":"waba-1","changes":[{"field":"account_update","value":{}}]}]}`},
		{name: "no changes", body: `{"object":"whatsapp_business_account","entry":[{"id":"waba-1","changes":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &mockQuerier{}
			c := newTestClassifier(q)

			ev, err := c.Classify(context.Background(), []byte(tt.body))
			require.NoError(t, err)
			assert.Nil(t, ev, "callback should be dropped, not classified")
			assert.Zero(t, q.calls)
		})
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "waba-1",
			"changes": [{
				"field": "messages",
				"value": {"messages": [{"text": {"body": "hello"}}]}
			}]
		}]
	}`)
	q := &mockQuerier{}
	c := newTestClassifier(q)

	ev, err := c.Classify(context.Background(), body)
	require.NoError(t, err)

	un, ok := ev.(Unrecognized)
	require.True(t, ok, "expected Unrecognized, got %T", ev)
	assert.Equal(t, body, un.Raw, "raw body is attached for diagnostics")
}

func TestClassify_InvalidJSON(t *testing.T) {
	c := newTestClassifier(&mockQuerier{})

	ev, err := c.Classify(context.Background(), []byte("not json"))
	require.NoError(t, err)

	_, ok := ev.(Unrecognized)
	assert.True(t, ok)
}

func TestClassify_MissingAccountID(t *testing.T) {
	c := NewClassifier(&credentials.Static{}, &mockQuerier{}, &mockPicker{})

	_, err := c.Classify(context.Background(), confirmationBody())

	var cfgErr *credentials.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestClassify_QueryFailureStillEmitsUpdate(t *testing.T) {
	q := &mockQuerier{err: &graph.TransportError{StatusCode: 500, Body: []byte("down")}}
	c := newTestClassifier(q)

	ev, err := c.Classify(context.Background(), statusUpdateBody("success"))
	require.NoError(t, err)

	_, ok := ev.(PaymentStatusUpdate)
	assert.True(t, ok, "query failures must not suppress the update event")
	assert.Equal(t, 1, q.calls)
}
