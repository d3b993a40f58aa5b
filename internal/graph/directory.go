package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DirectoryError indicates a sender phone number could not be resolved:
// either the business account has no registered numbers or the requested
// number is not among them. Callers may retry after the account's numbers
// change.
type DirectoryError struct {
	Reason string
}

func (e *DirectoryError) Error() string {
	return e.Reason
}

// PhoneNumberLister fetches the phone numbers registered to the business
// account. Implemented by *Client.
type PhoneNumberLister interface {
	PhoneNumbers(ctx context.Context) ([]PhoneNumber, error)
}

// Directory caches the mapping from a normalized phone number (digits only)
// to its channel-assigned phone-number id. It is populated lazily on the
// first lookup and never refreshed within the process lifetime; restart the
// process to pick up directory changes.
//
// Safe for concurrent use. The single-flight group collapses concurrent
// first lookups into one fetch.
type Directory struct {
	lister PhoneNumberLister

	mu       sync.RWMutex
	byNumber map[string]string

	group singleflight.Group
}

// NewDirectory creates an empty Directory backed by lister.
func NewDirectory(lister PhoneNumberLister) *Directory {
	return &Directory{
		lister:   lister,
		byNumber: make(map[string]string),
	}
}

// NormalizeNumber strips everything but digits, so "+1 631-555-5555" and
// "16315555555" index the same entry.
func NormalizeNumber(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve returns the phone-number id of the given sender number, loading the
// directory on first use.
func (d *Directory) Resolve(ctx context.Context, number string) (string, error) {
	normalized := NormalizeNumber(number)

	if id, ok := d.lookup(normalized); ok {
		return id, nil
	}
	if err := d.ensureLoaded(ctx); err != nil {
		return "", err
	}
	if id, ok := d.lookup(normalized); ok {
		return id, nil
	}
	return "", &DirectoryError{Reason: fmt.Sprintf("phone number %s is not registered to the business account", normalized)}
}

// AnySender returns some registered sender number, loading the directory on
// first use. Callers that need a specific sender must use Resolve; this picks
// the lexically first number.
func (d *Directory) AnySender(ctx context.Context) (string, error) {
	if err := d.ensureLoaded(ctx); err != nil {
		return "", err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	numbers := make([]string, 0, len(d.byNumber))
	for n := range d.byNumber {
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return "", &DirectoryError{Reason: "business account has no phone numbers"}
	}
	sort.Strings(numbers)
	return numbers[0], nil
}

func (d *Directory) lookup(normalized string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byNumber[normalized]
	return id, ok
}

// ensureLoaded populates the cache if it is still empty. Entries are
// value-identical regardless of fetch order, so a concurrent overwrite is
// harmless; the single-flight group only exists to avoid redundant fetches.
func (d *Directory) ensureLoaded(ctx context.Context) error {
	d.mu.RLock()
	loaded := len(d.byNumber) > 0
	d.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := d.group.Do("load", func() (interface{}, error) {
		numbers, err := d.lister.PhoneNumbers(ctx)
		if err != nil {
			return nil, err
		}
		if len(numbers) == 0 {
			return nil, &DirectoryError{Reason: "business account has no phone numbers"}
		}

		d.mu.Lock()
		defer d.mu.Unlock()
		for _, n := range numbers {
			d.byNumber[NormalizeNumber(n.DisplayPhoneNumber)] = n.ID
		}
		return nil, nil
	})
	return err
}
