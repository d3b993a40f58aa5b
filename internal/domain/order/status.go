package order

import "github.com/go-faster/jx"

// Status is an order lifecycle status carried in order_status messages.
// The API passes the value through, so any string is accepted; these are the
// documented ones.
type Status string

const (
	StatusPending          Status = "pending"
	StatusProcessing       Status = "processing"
	StatusPartiallyShipped Status = "partially_shipped"
	StatusShipped          Status = "shipped"
	StatusCompleted        Status = "completed"
	StatusCanceled         Status = "canceled"
)

// StatusMessage is the input for an order_status message: a reference to a
// previously sent order plus its new status. It carries no item or amount
// fields.
type StatusMessage struct {
	ReferenceID string
	BodyText    string
	Status      Status
	Description string
}

// Build assembles the string-encoded order_status interactive payload.
func (m *StatusMessage) Build() []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str(interactiveOrderStatus) })
		e.Field("body", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("text", func(e *jx.Encoder) { e.Str(m.BodyText) })
			})
		})
		e.Field("action", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(actionReviewOrder) })
				e.Field("parameters", func(e *jx.Encoder) {
					e.Obj(func(e *jx.Encoder) {
						e.Field("reference_id", func(e *jx.Encoder) { e.Str(m.ReferenceID) })
						e.Field("order", func(e *jx.Encoder) {
							e.Obj(func(e *jx.Encoder) {
								e.Field("status", func(e *jx.Encoder) { e.Str(string(m.Status)) })
								if m.Description != "" {
									e.Field("description", func(e *jx.Encoder) { e.Str(m.Description) })
								}
							})
						})
					})
				})
			})
		})
	})
	return e.Bytes()
}
