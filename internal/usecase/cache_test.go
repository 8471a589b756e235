package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discount-audit/internal/domain"
	"discount-audit/internal/usecase"
)

type countingRunner struct {
	calls int
	next  usecase.Runner
}

func (c *countingRunner) Run(table *domain.Table, opts domain.FilterOptions) (*domain.AuditResult, error) {
	c.calls++
	return c.next.Run(table, opts)
}

func TestCachedEngine_Run(t *testing.T) {
	inner := &countingRunner{next: newEngine()}
	cached := usecase.NewCachedEngine(inner)

	table := newTable(row("1001", "NORTE", "100001", "9999999", "OTHER", "9", "100"))
	sameContents := newTable(row("1001", "NORTE", "100001", "9999999", "OTHER", "9", "100"))
	sameContents.Source = "copy-of-report.csv"

	first, err := cached.Run(table, domain.DefaultFilterOptions())
	require.NoError(t, err)
	second, err := cached.Run(sameContents, domain.DefaultFilterOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cached.Hits())
	assert.Equal(t, first, second)

	// Callers mutating a result must not corrupt the cache.
	second.Alerts[0].Alert = domain.AlertOK
	third, err := cached.Run(table, domain.DefaultFilterOptions())
	require.NoError(t, err)
	assert.Equal(t, domain.AlertGeneralExceeded, third.Alerts[0].Alert)

	_, err = cached.Run(table, domain.FilterOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different filter flags must miss the cache")
}

func TestCachedEngine_DoesNotCacheErrors(t *testing.T) {
	inner := &countingRunner{next: newEngine()}
	cached := usecase.NewCachedEngine(inner)

	_, err := cached.Run(newTable(), domain.FilterOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyResultAfterFilter)
	_, err = cached.Run(newTable(), domain.FilterOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyResultAfterFilter)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.Hits())
}

func TestFingerprint(t *testing.T) {
	a := &domain.Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", "23"}}, HeaderLine: 2}
	b := &domain.Table{Header: []string{"a", "b"}, Rows: [][]string{{"12", "3"}}, HeaderLine: 2}

	assert.NotEqual(t, usecase.Fingerprint(a, domain.FilterOptions{}), usecase.Fingerprint(b, domain.FilterOptions{}))
	assert.NotEqual(t, usecase.Fingerprint(a, domain.FilterOptions{}), usecase.Fingerprint(a, domain.DefaultFilterOptions()))
	assert.Equal(t, usecase.Fingerprint(a, domain.FilterOptions{}), usecase.Fingerprint(a, domain.FilterOptions{}))

	shifted := &domain.Table{Header: a.Header, Rows: a.Rows, HeaderLine: 2, Lines: []int{4}}
	assert.NotEqual(t, usecase.Fingerprint(a, domain.FilterOptions{}), usecase.Fingerprint(shifted, domain.FilterOptions{}))
}
