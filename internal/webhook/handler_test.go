package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
)

const testSecret = "app-secret"

func newTestHandler(onEvent EventFunc) (*Handler, *mockQuerier) {
	creds := &credentials.Static{Token: "t", Secret: testSecret, WABA: "waba-1", PaymentConfig: "pc"}
	q := &mockQuerier{}
	return NewHandler(
		NewVerifier(creds),
		NewClassifier(creds, q, &mockPicker{sender: "111"}),
		"verify-token-1",
		onEvent,
	), q
}

func postCallback(t *testing.T, h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", signature)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Subscribe(t *testing.T) {
	h, _ := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-token-1&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestHandler_SubscribeWrongToken(t *testing.T) {
	h, _ := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "12345")
}

func TestHandler_RejectsBadSignature(t *testing.T) {
	var events []Event
	h, q := newTestHandler(func(_ context.Context, ev Event) { events = append(events, ev) })

	body := confirmationBody()
	rec := postCallback(t, h, body, sign("wrong-secret", body))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, events, "unverified callbacks must not be classified")
	assert.Zero(t, q.calls)
}

func TestHandler_DeliversConfirmation(t *testing.T) {
	var events []Event
	h, _ := newTestHandler(func(_ context.Context, ev Event) { events = append(events, ev) })

	body := confirmationBody()
	rec := postCallback(t, h, body, sign(testSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, events, 1)
	conf, ok := events[0].(PaymentConfirmation)
	require.True(t, ok)
	assert.Equal(t, "tx-1", conf.TransactionID)
}

func TestHandler_DeliversStatusUpdate(t *testing.T) {
	var events []Event
	h, q := newTestHandler(func(_ context.Context, ev Event) { events = append(events, ev) })

	body := statusUpdateBody("success")
	rec := postCallback(t, h, body, sign(testSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, events, 1)
	_, ok := events[0].(PaymentStatusUpdate)
	assert.True(t, ok)
	assert.Equal(t, 1, q.calls)
}

func TestHandler_DroppedCallbackReturnsOK(t *testing.T) {
	var events []Event
	h, _ := newTestHandler(func(_ context.Context, ev Event) { events = append(events, ev) })

	body := []byte(`{"object":"page","entry":[]}`)
	rec := postCallback(t, h, body, sign(testSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, events)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
