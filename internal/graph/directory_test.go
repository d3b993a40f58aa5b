package graph

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	numbers []PhoneNumber
	err     error
	calls   atomic.Int32
}

func (m *mockLister) PhoneNumbers(_ context.Context) ([]PhoneNumber, error) {
	m.calls.Add(1)
	return m.numbers, m.err
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "16315555555", NormalizeNumber("+1 631-555-5555"))
	assert.Equal(t, "16315555555", NormalizeNumber("16315555555"))
	assert.Equal(t, "", NormalizeNumber("abc"))
}

func TestDirectory_Resolve(t *testing.T) {
	lister := &mockLister{numbers: []PhoneNumber{
		{DisplayPhoneNumber: "+1 631-555-5555", ID: "pn-1"},
		{DisplayPhoneNumber: "+91 22 5555 0000", ID: "pn-2"},
	}}
	d := NewDirectory(lister)

	id, err := d.Resolve(context.Background(), "16315555555")
	require.NoError(t, err)
	assert.Equal(t, "pn-1", id)

	// Formatted input resolves through normalization, without refetching.
	id, err = d.Resolve(context.Background(), "+91 22 5555 0000")
	require.NoError(t, err)
	assert.Equal(t, "pn-2", id)
	assert.Equal(t, int32(1), lister.calls.Load(), "directory loads once per process")
}

func TestDirectory_UnknownNumber(t *testing.T) {
	lister := &mockLister{numbers: []PhoneNumber{{DisplayPhoneNumber: "123", ID: "pn-1"}}}
	d := NewDirectory(lister)

	_, err := d.Resolve(context.Background(), "999")

	var dirErr *DirectoryError
	require.ErrorAs(t, err, &dirErr)
}

func TestDirectory_Empty(t *testing.T) {
	d := NewDirectory(&mockLister{})

	_, err := d.Resolve(context.Background(), "123")
	var dirErr *DirectoryError
	require.ErrorAs(t, err, &dirErr)

	_, err = d.AnySender(context.Background())
	require.ErrorAs(t, err, &dirErr)
}

func TestDirectory_AnySender(t *testing.T) {
	lister := &mockLister{numbers: []PhoneNumber{
		{DisplayPhoneNumber: "555", ID: "pn-b"},
		{DisplayPhoneNumber: "111", ID: "pn-a"},
	}}
	d := NewDirectory(lister)

	sender, err := d.AnySender(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "111", sender, "lowest number wins for determinism")
}

func TestDirectory_ConcurrentLoadFetchesOnce(t *testing.T) {
	lister := &mockLister{numbers: []PhoneNumber{{DisplayPhoneNumber: "123", ID: "pn-1"}}}
	d := NewDirectory(lister)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Resolve(context.Background(), "123")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), lister.calls.Load(), "concurrent first lookups must collapse into one fetch")
}
