package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValueOffset is the fixed offset for every monetary amount on the Checkout
// API. Amounts are integers in minor units: ₹12.00 is value 1200, offset 100.
// The API only accepts whole-major-unit amounts, so value must also be a
// multiple of the offset.
const ValueOffset = 100

// Amount is a fixed-point monetary value. Construct it with NewAmount; the
// zero value is not a valid amount.
type Amount struct {
	Value  int64
	Offset int64
}

// NewAmount validates value and offset and returns the Amount.
func NewAmount(value, offset int64) (Amount, error) {
	if offset != ValueOffset {
		return Amount{}, &ValidationError{Reason: fmt.Sprintf("amount offset must be %d, got %d", ValueOffset, offset)}
	}
	if value%ValueOffset != 0 {
		return Amount{}, &ValidationError{Reason: fmt.Sprintf("amount value must be a multiple of %d, got %d", ValueOffset, value)}
	}
	return Amount{Value: value, Offset: offset}, nil
}

// MustAmount is NewAmount that panics on invalid input. For constants and tests.
func MustAmount(value int64) Amount {
	a, err := NewAmount(value, ValueOffset)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the amount in major units, e.g. Value 1200 → 12.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromInt(a.Value).Div(decimal.NewFromInt(a.Offset))
}

// IsZero reports whether the amount is the (invalid) zero value.
func (a Amount) IsZero() bool {
	return a == Amount{}
}

// Address is a physical address attached to an item importer.
type Address struct {
	AddressLine1 string
	AddressLine2 string
	City         string
	ZoneCode     string
	PostalCode   string
	CountryCode  string
}

// HeaderType discriminates the message header variants.
type HeaderType string

const (
	HeaderText  HeaderType = "text"
	HeaderImage HeaderType = "image"
)

// Header is the optional message header: either a text line or an image link,
// never both.
type Header struct {
	Type      HeaderType
	Text      string
	ImageLink string
}

// TextHeader builds a text header.
func TextHeader(text string) *Header {
	return &Header{Type: HeaderText, Text: text}
}

// ImageHeader builds an image header.
func ImageHeader(link string) *Header {
	return &Header{Type: HeaderImage, ImageLink: link}
}

// Item is a single order line. Amount is the list price; SaleAmount, when
// set, replaces it in all totals. Optional fields are omitted from the wire
// payload when empty.
type Item struct {
	Name            string
	Amount          Amount
	Quantity        int
	SaleAmount      *Amount
	RetailerID      string
	ImageLink       string
	CountryOfOrigin string
	ImporterName    string
	ImporterAddress *Address
}

// EffectiveAmount is the amount the customer actually pays per unit:
// the sale amount when present, the list amount otherwise.
func (it Item) EffectiveAmount() Amount {
	if it.SaleAmount != nil {
		return *it.SaleAmount
	}
	return it.Amount
}

// Charge is a flat order-level amount with an optional description, used for
// tax and shipping blocks.
type Charge struct {
	Amount      Amount
	Description string
}

// Discount is a flat order-level deduction.
type Discount struct {
	Amount      Amount
	Description string
	ProgramName string
}

// Expiration marks when the order stops being payable.
type Expiration struct {
	// Timestamp is a unix timestamp in seconds, carried as a string on the wire.
	Timestamp   string
	Description string
}
