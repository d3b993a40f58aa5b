package order

// ValidationError indicates inconsistent or malformed order input: an empty
// item list, an amount offset out of step with the rest of the order, or an
// unknown header variant. Never retried; the input itself is wrong.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
