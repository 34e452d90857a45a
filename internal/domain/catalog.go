package domain

// Catalog is an immutable snapshot of all assessment records, loaded once
// at startup. Safe for concurrent use: nothing mutates it after construction.
type Catalog struct {
	records []Assessment
	byID    map[string]*Assessment
}

// NewCatalog builds a snapshot. Records are kept in the given order and
// assigned their insertion sequence.
func NewCatalog(records []Assessment) *Catalog {
	c := &Catalog{
		records: make([]Assessment, len(records)),
		byID:    make(map[string]*Assessment, len(records)),
	}
	copy(c.records, records)
	for i := range c.records {
		c.records[i].Seq = i
		c.byID[c.records[i].ID] = &c.records[i]
	}
	return c
}

// Get returns the record with the given ID.
func (c *Catalog) Get(id string) (*Assessment, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Len returns the number of records in the snapshot.
func (c *Catalog) Len() int { return len(c.records) }

// All returns the records in insertion order. Callers must not modify them.
func (c *Catalog) All() []Assessment { return c.records }

// CountByCategory returns per-category record counts.
func (c *Catalog) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for i := range c.records {
		counts[c.records[i].Category]++
	}
	return counts
}
