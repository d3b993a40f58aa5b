// Package checkout orchestrates outbound Checkout API messages: it resolves
// sender identities, assembles payloads, and hands them to the Graph API
// client. All operations are synchronous and all-or-nothing.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
	"github.com/xenking/whatsapp-checkout/internal/domain/order"
	"github.com/xenking/whatsapp-checkout/internal/graph"
)

// Messenger is the Graph API surface the dispatcher consumes. Implemented by
// *graph.Client.
type Messenger interface {
	SendInteractive(ctx context.Context, phoneNumberID, to string, interactive []byte) (*graph.SendResponse, error)
	PaymentStatus(ctx context.Context, phoneNumberID, paymentConfiguration, referenceID string) (*graph.PaymentStatus, error)
}

// SenderResolver maps a sender phone number to its channel identity.
// Implemented by *graph.Directory.
type SenderResolver interface {
	Resolve(ctx context.Context, number string) (string, error)
}

// Dispatcher sends order-details and order-status messages and queries
// payment status. It owns no retry logic; transport failures surface as
// *graph.TransportError.
type Dispatcher struct {
	graph     Messenger
	directory SenderResolver
	creds     credentials.Provider
}

// NewDispatcher wires a Dispatcher.
func NewDispatcher(g Messenger, directory SenderResolver, creds credentials.Provider) *Dispatcher {
	return &Dispatcher{
		graph:     g,
		directory: directory,
		creds:     creds,
	}
}

// SendOrderDetails builds the order-details payload from details and sends it
// from senderPhone to recipientPhone. Validation happens before any network
// interaction.
func (d *Dispatcher) SendOrderDetails(ctx context.Context, senderPhone, recipientPhone string, details *order.Details) (*graph.SendResponse, error) {
	paymentConfig, err := d.creds.PaymentConfiguration()
	if err != nil {
		return nil, err
	}

	envelope, err := details.Build(paymentConfig)
	if err != nil {
		return nil, err
	}

	phoneNumberID, err := d.directory.Resolve(ctx, senderPhone)
	if err != nil {
		return nil, err
	}

	resp, err := d.graph.SendInteractive(ctx, phoneNumberID, recipientPhone, envelope.Interactive)
	if err != nil {
		return nil, errors.Wrap(err, "send order details")
	}

	zctx.From(ctx).Info("Sent order details",
		zap.String("reference_id", envelope.ReferenceID),
		zap.String("total", envelope.Total.Decimal().String()),
		zap.Int("items", len(details.Items)),
	)
	return resp, nil
}

// SendOrderStatus sends an order_status update for referenceID.
func (d *Dispatcher) SendOrderStatus(ctx context.Context, senderPhone, recipientPhone string, msg *order.StatusMessage) (*graph.SendResponse, error) {
	phoneNumberID, err := d.directory.Resolve(ctx, senderPhone)
	if err != nil {
		return nil, err
	}

	resp, err := d.graph.SendInteractive(ctx, phoneNumberID, recipientPhone, msg.Build())
	if err != nil {
		return nil, errors.Wrap(err, "send order status")
	}

	zctx.From(ctx).Info("Sent order status",
		zap.String("reference_id", msg.ReferenceID),
		zap.String("status", string(msg.Status)),
	)
	return resp, nil
}

// QueryPaymentStatus fetches the payment status of referenceID through the
// given sender number.
func (d *Dispatcher) QueryPaymentStatus(ctx context.Context, senderPhone, referenceID string) (*graph.PaymentStatus, error) {
	paymentConfig, err := d.creds.PaymentConfiguration()
	if err != nil {
		return nil, err
	}

	phoneNumberID, err := d.directory.Resolve(ctx, senderPhone)
	if err != nil {
		return nil, err
	}

	status, err := d.graph.PaymentStatus(ctx, phoneNumberID, paymentConfig, referenceID)
	if err != nil {
		return nil, errors.Wrap(err, "query payment status")
	}

	zctx.From(ctx).Info("Queried payment status", zap.String("reference_id", referenceID))
	return status, nil
}
