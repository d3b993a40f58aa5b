package webhook

import (
	"context"
	"encoding/json"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
	"github.com/xenking/whatsapp-checkout/internal/graph"
)

// Event is a classified callback outcome.
type Event interface {
	event()
}

// PaymentConfirmation is the customer confirming a payment from the chat:
// the inbound message carries an interactive payment sub-object.
type PaymentConfirmation struct {
	TransactionID      string
	ReferenceID        string
	Status             string
	DisplayPhoneNumber string
}

// PaymentStatusUpdate is an asynchronous transaction status transition
// reported by the platform.
type PaymentStatusUpdate struct {
	MessageID          string
	ReferenceID        string
	Status             string
	Timestamp          string
	DisplayPhoneNumber string
}

// Unrecognized is a verified callback that matched none of the known shapes.
// Raw carries the body for diagnostics; this is a terminal outcome, not an
// error.
type Unrecognized struct {
	Raw []byte
}

func (PaymentConfirmation) event() {}
func (PaymentStatusUpdate) event() {}
func (Unrecognized) event()        {}

// paymentStatuses are the transaction states the platform reports.
var paymentStatuses = map[string]struct{}{
	"pending":  {},
	"failed":   {},
	"success":  {},
	"canceled": {},
}

// Callback payload shapes, per the Business API webhook schema.
type callbackPayload struct {
	Object string          `json:"object"`
	Entry  []callbackEntry `json:"entry"`
}

type callbackEntry struct {
	ID      string           `json:"id"`
	Changes []callbackChange `json:"changes"`
}

type callbackChange struct {
	Field string        `json:"field"`
	Value callbackValue `json:"value"`
}

type callbackValue struct {
	Metadata callbackMetadata  `json:"metadata"`
	Messages []callbackMessage `json:"messages"`
	Statuses []callbackStatus  `json:"statuses"`
}

type callbackMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type callbackMessage struct {
	Interactive *callbackInteractive `json:"interactive"`
}

type callbackInteractive struct {
	Type    string           `json:"type"`
	Payment *callbackPayment `json:"payment"`
}

type callbackPayment struct {
	TransactionID string `json:"transaction_id"`
	ReferenceID   string `json:"reference_id"`
	Status        string `json:"status"`
}

type callbackStatus struct {
	ID          string               `json:"id"`
	RecipientID string               `json:"recipient_id"`
	Type        string               `json:"type"`
	Status      string               `json:"status"`
	Timestamp   string               `json:"timestamp"`
	Payment     *callbackStatusInner `json:"payment"`
}

type callbackStatusInner struct {
	ReferenceID string `json:"reference_id"`
}

// StatusQuerier triggers a payment-status lookup. Implemented by
// *checkout.Dispatcher.
type StatusQuerier interface {
	QueryPaymentStatus(ctx context.Context, senderPhone, referenceID string) (*graph.PaymentStatus, error)
}

// SenderPicker yields some registered sender number. Implemented by
// *graph.Directory.
type SenderPicker interface {
	AnySender(ctx context.Context) (string, error)
}

// Classifier interprets verified callback bodies. The guards run in a fixed
// order and the first match wins; the confirmation-vs-status-update ordering
// is a load-bearing tie-break.
type Classifier struct {
	creds     credentials.Provider
	payments  StatusQuerier
	directory SenderPicker
}

// NewClassifier wires a Classifier.
func NewClassifier(creds credentials.Provider, payments StatusQuerier, directory SenderPicker) *Classifier {
	return &Classifier{
		creds:     creds,
		payments:  payments,
		directory: directory,
	}
}

// Classify interprets a verified callback body. A nil event with a nil error
// means the callback is for someone else (wrong object, account, or change
// field) and was dropped after logging. The only error case is an unavailable
// account id, which is a configuration failure.
func (c *Classifier) Classify(ctx context.Context, body []byte) (Event, error) {
	lg := zctx.From(ctx)

	var payload callbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		lg.Warn("Callback body is not valid JSON", zap.Error(err))
		return Unrecognized{Raw: body}, nil
	}

	if payload.Object != "whatsapp_business_account" {
		lg.Info("Dropping callback for foreign object", zap.String("object", payload.Object))
		return nil, nil
	}
	if len(payload.Entry) == 0 {
		lg.Info("Dropping callback without entries")
		return nil, nil
	}
	entry := payload.Entry[0]

	waba, err := c.creds.AccountID()
	if err != nil {
		return nil, err
	}
	if entry.ID != waba {
		lg.Info("Dropping callback for foreign account", zap.String("account_id", entry.ID))
		return nil, nil
	}
	if len(entry.Changes) == 0 || entry.Changes[0].Field != "messages" {
		lg.Info("Dropping callback for non-message change")
		return nil, nil
	}
	value := entry.Changes[0].Value

	if len(value.Messages) > 0 {
		if in := value.Messages[0].Interactive; in != nil && in.Type == "payment" && in.Payment != nil {
			return PaymentConfirmation{
				TransactionID:      in.Payment.TransactionID,
				ReferenceID:        in.Payment.ReferenceID,
				Status:             in.Payment.Status,
				DisplayPhoneNumber: value.Metadata.DisplayPhoneNumber,
			}, nil
		}
	}

	if len(value.Statuses) > 0 {
		st := value.Statuses[0]
		if _, known := paymentStatuses[st.Status]; known &&
			st.RecipientID != "" && st.Type == "payment" && st.Timestamp != "" &&
			st.Payment != nil && st.Payment.ReferenceID != "" {
			c.queryStatus(ctx, st.Payment.ReferenceID)
			return PaymentStatusUpdate{
				MessageID:          st.ID,
				ReferenceID:        st.Payment.ReferenceID,
				Status:             st.Status,
				Timestamp:          st.Timestamp,
				DisplayPhoneNumber: value.Metadata.DisplayPhoneNumber,
			}, nil
		}
	}

	return Unrecognized{Raw: body}, nil
}

// queryStatus triggers the payment-status lookup that accompanies a status
// update. Lookup failures are logged, not surfaced: the update event itself
// already happened.
//
// TODO: use metadata.display_phone_number to pick the sender that owns the
// transaction instead of whichever directory entry comes first.
func (c *Classifier) queryStatus(ctx context.Context, referenceID string) {
	lg := zctx.From(ctx)

	sender, err := c.directory.AnySender(ctx)
	if err != nil {
		lg.Error("No sender available for payment status query", zap.Error(err))
		return
	}
	if _, err := c.payments.QueryPaymentStatus(ctx, sender, referenceID); err != nil {
		lg.Error("Payment status query failed",
			zap.String("reference_id", referenceID),
			zap.Error(err),
		)
	}
}
