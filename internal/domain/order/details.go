package order

import (
	"fmt"
)

// Details is the input for an order-details message. Optional blocks are nil
// pointers or empty strings and are omitted from the payload entirely.
type Details struct {
	GoodsType   string
	ReferenceID string
	BodyText    string
	Items       []Item
	Tax         *Charge
	Shipping    *Charge
	Discount    *Discount
	CatalogID   string
	Header      *Header
	FooterText  string
	Expiration  *Expiration
}

// Envelope is a fully assembled order-details message, ready for dispatch.
// Interactive holds the payload already encoded to JSON: the Cloud API
// requires the interactive field of the outer message to be a JSON string,
// not a nested object.
type Envelope struct {
	ReferenceID string
	Subtotal    Amount
	Total       Amount
	Interactive []byte
}

// Build validates the order, computes subtotal and total, and assembles the
// interactive payload. paymentConfiguration is the merchant's payment
// configuration name attached to the action parameters. Build performs no I/O.
//
// The first item's effective amount fixes the order's offset; every other
// effective amount, and any tax/shipping/discount amount, must carry the same
// offset. Tax and shipping are flat order-level amounts added once (never
// multiplied by quantity); discount is subtracted and may push the total
// negative — merchant intent is passed through unclamped.
func (d *Details) Build(paymentConfiguration string) (*Envelope, error) {
	if len(d.Items) == 0 {
		return nil, &ValidationError{Reason: "order must contain at least one item"}
	}
	if err := d.validateHeader(); err != nil {
		return nil, err
	}

	offset := d.Items[0].EffectiveAmount().Offset
	var subtotal int64
	for i, it := range d.Items {
		eff := it.EffectiveAmount()
		if eff.Offset != offset {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("item %d (%s): amount offset %d differs from order offset %d", i, it.Name, eff.Offset, offset),
			}
		}
		subtotal += eff.Value * int64(it.Quantity)
	}

	total := subtotal
	if d.Tax != nil {
		if d.Tax.Amount.Offset != offset {
			return nil, &ValidationError{Reason: fmt.Sprintf("tax offset %d differs from order offset %d", d.Tax.Amount.Offset, offset)}
		}
		total += d.Tax.Amount.Value
	}
	if d.Shipping != nil {
		if d.Shipping.Amount.Offset != offset {
			return nil, &ValidationError{Reason: fmt.Sprintf("shipping offset %d differs from order offset %d", d.Shipping.Amount.Offset, offset)}
		}
		total += d.Shipping.Amount.Value
	}
	if d.Discount != nil {
		if d.Discount.Amount.Offset != offset {
			return nil, &ValidationError{Reason: fmt.Sprintf("discount offset %d differs from order offset %d", d.Discount.Amount.Offset, offset)}
		}
		total -= d.Discount.Amount.Value
	}

	sub := Amount{Value: subtotal, Offset: offset}
	tot := Amount{Value: total, Offset: offset}

	return &Envelope{
		ReferenceID: d.ReferenceID,
		Subtotal:    sub,
		Total:       tot,
		Interactive: d.encodeInteractive(paymentConfiguration, sub, tot),
	}, nil
}

func (d *Details) validateHeader() error {
	h := d.Header
	if h == nil {
		return nil
	}
	switch h.Type {
	case HeaderText:
		if h.Text == "" {
			return &ValidationError{Reason: "text header requires body text"}
		}
	case HeaderImage:
		if h.ImageLink == "" {
			return &ValidationError{Reason: "image header requires an image link"}
		}
	default:
		return &ValidationError{Reason: fmt.Sprintf("invalid header type %q", h.Type)}
	}
	return nil
}
