package layout

import (
	"sync"

	"github.com/joseph-ayodele/bankfiles/constants"
)

// Counter ranks signatures by how often they matched for each bank.
// It is safe for concurrent use.
type Counter struct {
	mu   sync.Mutex
	hits map[string]map[constants.RecordType]int
}

func NewCounter() *Counter {
	return &Counter{hits: make(map[string]map[constants.RecordType]int)}
}

// Record notes one successful classification for bankID.
func (c *Counter) Record(bankID string, t constants.RecordType) {
	if t == constants.Unknown {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.hits[bankID]
	if !ok {
		m = make(map[constants.RecordType]int)
		c.hits[bankID] = m
	}
	m[t]++
}

// Hits returns the success count of t for bankID.
func (c *Counter) Hits(bankID string, t constants.RecordType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[bankID][t]
}

// Rank reorders table by descending hit count with a stable insertion pass.
// A signature never moves ahead of a more specific one it would shadow, so a
// generic detail cannot hide its segments.
func (c *Counter) Rank(bankID string, _ constants.Kind, table []Signature) []Signature {
	c.mu.Lock()
	counts := make(map[constants.RecordType]int, len(c.hits[bankID]))
	for t, n := range c.hits[bankID] {
		counts[t] = n
	}
	c.mu.Unlock()

	out := append([]Signature(nil), table...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j], out[j-1]
			if counts[a.Type] <= counts[b.Type] || shadows(a, b) {
				break
			}
			out[j], out[j-1] = b, a
		}
	}
	return out
}

// shadows reports whether a matches every line b matches.
func shadows(a, b Signature) bool {
	for _, ca := range a.Checks {
		found := false
		for _, cb := range b.Checks {
			if ca == cb {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
