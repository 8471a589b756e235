package usecase

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"slices"
	"strconv"
	"sync"

	"discount-audit/internal/domain"
)

// CachedEngine memoizes runs keyed on the table contents and the filter flags.
// Only successful results are cached.
type CachedEngine struct {
	next Runner

	mu      sync.Mutex
	results map[string]*domain.AuditResult
	hits    int
}

// NewCachedEngine wraps next with an in-memory result cache.
func NewCachedEngine(next Runner) *CachedEngine {
	return &CachedEngine{next: next, results: make(map[string]*domain.AuditResult)}
}

// Run returns a cached result when an identical table was audited with the same options.
func (c *CachedEngine) Run(table *domain.Table, opts domain.FilterOptions) (*domain.AuditResult, error) {
	key := Fingerprint(table, opts)

	c.mu.Lock()
	cached, ok := c.results[key]
	if ok {
		c.hits++
	}
	c.mu.Unlock()
	if ok {
		return cloneResult(cached), nil
	}

	result, err := c.next.Run(table, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.results[key] = cloneResult(result)
	c.mu.Unlock()
	return result, nil
}

// Hits returns how many runs were served from the cache.
func (c *CachedEngine) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Fingerprint identifies a table and filter combination. The source path is
// not part of the key: the same contents uploaded twice hit the cache.
func Fingerprint(table *domain.Table, opts domain.FilterOptions) string {
	h := sha256.New()
	writeRow(h, table.Header)
	for _, row := range table.Rows {
		writeRow(h, row)
	}
	var flags [2]byte
	if opts.ExcludeEmployeeZones {
		flags[0] = 1
	}
	if opts.ExcludeOffersWarehouse {
		flags[1] = 1
	}
	h.Write(flags[:])
	lines := make([]string, 0, len(table.Rows)+1)
	lines = append(lines, strconv.Itoa(table.HeaderLine))
	for i := range table.Rows {
		lines = append(lines, strconv.Itoa(table.Line(i)))
	}
	writeRow(h, lines)
	return hex.EncodeToString(h.Sum(nil))
}

// writeRow length-prefixes every cell so different splits never collide.
func writeRow(h hash.Hash, row []string) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutUvarint(buf[:], uint64(len(row)))])
	for _, cell := range row {
		h.Write(buf[:binary.PutUvarint(buf[:], uint64(len(cell)))])
		h.Write([]byte(cell))
	}
}

func cloneResult(r *domain.AuditResult) *domain.AuditResult {
	return &domain.AuditResult{
		Records: slices.Clone(r.Records),
		Alerts:  slices.Clone(r.Alerts),
		Filter:  r.Filter,
	}
}
