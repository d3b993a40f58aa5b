package order

import (
	"github.com/go-faster/jx"
)

// Wire constants fixed by the Checkout API.
const (
	interactiveOrderDetails = "order_details"
	interactiveOrderStatus  = "order_status"
	actionReviewAndPay      = "review_and_pay"
	actionReviewOrder       = "review_order"
	paymentTypeUPI          = "upi"
	currencyINR             = "INR"
	statusPendingLiteral    = "pending"
)

// encodeInteractive writes the order_details interactive payload. Absent
// optional fields are omitted, never encoded as null.
//
// The API string-encodes amounts several levels deep: item amounts, the tax,
// shipping and discount blocks, and total_amount are all JSON strings inside
// the (itself string-encoded) interactive object. This double encoding is the
// documented wire contract, reproduced exactly.
func (d *Details) encodeInteractive(paymentConfiguration string, subtotal, total Amount) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str(interactiveOrderDetails) })
		if d.Header != nil {
			e.Field("header", func(e *jx.Encoder) { d.Header.encode(e) })
		}
		e.Field("body", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("text", func(e *jx.Encoder) { e.Str(d.BodyText) })
			})
		})
		if d.FooterText != "" {
			e.Field("footer", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("text", func(e *jx.Encoder) { e.Str(d.FooterText) })
				})
			})
		}
		e.Field("action", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(actionReviewAndPay) })
				e.Field("parameters", func(e *jx.Encoder) { d.encodeParameters(e, paymentConfiguration, subtotal, total) })
			})
		})
	})
	return e.Bytes()
}

func (d *Details) encodeParameters(e *jx.Encoder, paymentConfiguration string, subtotal, total Amount) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("reference_id", func(e *jx.Encoder) { e.Str(d.ReferenceID) })
		e.Field("type", func(e *jx.Encoder) { e.Str(d.GoodsType) })
		e.Field("payment_type", func(e *jx.Encoder) { e.Str(paymentTypeUPI) })
		e.Field("payment_configuration", func(e *jx.Encoder) { e.Str(paymentConfiguration) })
		e.Field("currency", func(e *jx.Encoder) { e.Str(currencyINR) })
		e.Field("order", func(e *jx.Encoder) { d.encodeOrder(e, subtotal) })
		e.Field("total_amount", func(e *jx.Encoder) { e.Str(total.encodeJSON()) })
	})
}

func (d *Details) encodeOrder(e *jx.Encoder, subtotal Amount) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(statusPendingLiteral) })
		if d.CatalogID != "" {
			e.Field("catalog_id", func(e *jx.Encoder) { e.Str(d.CatalogID) })
		}
		if d.Expiration != nil {
			e.Field("expiration", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("timestamp", func(e *jx.Encoder) { e.Str(d.Expiration.Timestamp) })
					if d.Expiration.Description != "" {
						e.Field("description", func(e *jx.Encoder) { e.Str(d.Expiration.Description) })
					}
				})
			})
		}
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Items {
					d.Items[i].encode(e)
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("value", func(e *jx.Encoder) { e.Int64(subtotal.Value) })
				e.Field("offset", func(e *jx.Encoder) { e.Int64(subtotal.Offset) })
			})
		})
		if d.Tax != nil {
			e.Field("tax", func(e *jx.Encoder) { e.Str(encodeChargeJSON(d.Tax.Amount, d.Tax.Description, "")) })
		}
		if d.Shipping != nil {
			e.Field("shipping", func(e *jx.Encoder) { e.Str(encodeChargeJSON(d.Shipping.Amount, d.Shipping.Description, "")) })
		}
		if d.Discount != nil {
			e.Field("discount", func(e *jx.Encoder) { e.Str(encodeChargeJSON(d.Discount.Amount, d.Discount.Description, d.Discount.ProgramName)) })
		}
	})
}

func (h *Header) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str(string(h.Type)) })
		switch h.Type {
		case HeaderText:
			e.Field("text", func(e *jx.Encoder) { e.Str(h.Text) })
		case HeaderImage:
			e.Field("image", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("link", func(e *jx.Encoder) { e.Str(h.ImageLink) })
				})
			})
		}
	})
}

func (it *Item) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("amount", func(e *jx.Encoder) { e.Str(it.Amount.encodeJSON()) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		if it.RetailerID != "" {
			e.Field("retailer_id", func(e *jx.Encoder) { e.Str(it.RetailerID) })
		}
		if it.ImageLink != "" {
			e.Field("image", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("link", func(e *jx.Encoder) { e.Str(it.ImageLink) })
				})
			})
		}
		if it.SaleAmount != nil {
			e.Field("sale_amount", func(e *jx.Encoder) { e.Str(it.SaleAmount.encodeJSON()) })
		}
		if it.CountryOfOrigin != "" {
			e.Field("country_of_origin", func(e *jx.Encoder) { e.Str(it.CountryOfOrigin) })
		}
		if it.ImporterName != "" {
			e.Field("importer_name", func(e *jx.Encoder) { e.Str(it.ImporterName) })
		}
		if it.ImporterAddress != nil {
			e.Field("importer_address", func(e *jx.Encoder) { it.ImporterAddress.encode(e) })
		}
	})
}

func (a *Address) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("address_line1", func(e *jx.Encoder) { e.Str(a.AddressLine1) })
		if a.AddressLine2 != "" {
			e.Field("address_line2", func(e *jx.Encoder) { e.Str(a.AddressLine2) })
		}
		e.Field("city", func(e *jx.Encoder) { e.Str(a.City) })
		e.Field("zone_code", func(e *jx.Encoder) { e.Str(a.ZoneCode) })
		e.Field("postal_code", func(e *jx.Encoder) { e.Str(a.PostalCode) })
		e.Field("country_code", func(e *jx.Encoder) { e.Str(a.CountryCode) })
	})
}

// encodeJSON renders the amount as a standalone JSON document. The API embeds
// these as string values.
func (a Amount) encodeJSON() string {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("value", func(e *jx.Encoder) { e.Int64(a.Value) })
		e.Field("offset", func(e *jx.Encoder) { e.Int64(a.Offset) })
	})
	return string(e.Bytes())
}

// encodeChargeJSON renders a tax/shipping/discount block as a standalone JSON
// document, omitting empty description and program name.
func encodeChargeJSON(a Amount, description, programName string) string {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("value", func(e *jx.Encoder) { e.Int64(a.Value) })
		e.Field("offset", func(e *jx.Encoder) { e.Int64(a.Offset) })
		if description != "" {
			e.Field("description", func(e *jx.Encoder) { e.Str(description) })
		}
		if programName != "" {
			e.Field("discount_program_name", func(e *jx.Encoder) { e.Str(programName) })
		}
	})
	return string(e.Bytes())
}
