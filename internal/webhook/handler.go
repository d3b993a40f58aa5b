package webhook

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// maxBodyBytes caps callback bodies; real callbacks are a few KB.
const maxBodyBytes = 1 << 20

// EventFunc is invoked for every classified event, e.g. to update the order
// management system. It must be safe for concurrent calls.
type EventFunc func(ctx context.Context, ev Event)

// Handler is the HTTP endpoint the platform delivers callbacks to. GET
// handles the subscribe handshake; POST verifies and classifies callbacks.
type Handler struct {
	verifier    *Verifier
	classifier  *Classifier
	verifyToken string
	onEvent     EventFunc
}

// NewHandler wires a webhook Handler. onEvent may be nil, in which case
// events are only logged.
func NewHandler(verifier *Verifier, classifier *Classifier, verifyToken string, onEvent EventFunc) *Handler {
	return &Handler{
		verifier:    verifier,
		classifier:  classifier,
		verifyToken: verifyToken,
		onEvent:     onEvent,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleSubscribe(w, r)
	case http.MethodPost:
		h.handleCallback(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSubscribe answers the platform's one-time verification request by
// echoing hub.challenge when the verify token matches.
func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != h.verifyToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	_, _ = io.WriteString(w, q.Get("hub.challenge"))
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	// The signature covers the body bytes exactly as sent; read them raw.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !h.verifier.Verify(ctx, r.Header.Get("X-Hub-Signature-256"), body) {
		lg.Warn("Callback signature verification failed")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ev, err := h.classifier.Classify(ctx, body)
	if err != nil {
		lg.Error("Callback classification failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if ev != nil {
		h.logEvent(ctx, ev)
		if h.onEvent != nil {
			h.onEvent(ctx, ev)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) logEvent(ctx context.Context, ev Event) {
	lg := zctx.From(ctx)
	switch e := ev.(type) {
	case PaymentConfirmation:
		lg.Info("Payment confirmation",
			zap.String("transaction_id", e.TransactionID),
			zap.String("reference_id", e.ReferenceID),
			zap.String("status", e.Status),
			zap.String("display_phone_number", e.DisplayPhoneNumber),
		)
	case PaymentStatusUpdate:
		lg.Info("Payment status update",
			zap.String("message_id", e.MessageID),
			zap.String("reference_id", e.ReferenceID),
			zap.String("status", e.Status),
			zap.String("display_phone_number", e.DisplayPhoneNumber),
		)
	case Unrecognized:
		lg.Info("Unrecognized callback", zap.ByteString("raw", e.Raw))
	}
}
