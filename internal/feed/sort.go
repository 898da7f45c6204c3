package feed

import (
	"sort"
	"time"
)

// SortByRecency orders records in place, newest Published Time first.
// Records whose time is missing or unparseable go after all dated records;
// ties keep their input order.
func (n *Normalizer) SortByRecency(records []Record) {
	type dated struct {
		rec Record
		t   time.Time
		ok  bool
	}

	items := make([]dated, len(records))
	for i, r := range records {
		t, ok := n.Parse(r[PublishedTime])
		items[i] = dated{rec: r, t: t, ok: ok}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.t.After(b.t)
	})

	for i := range items {
		records[i] = items[i].rec
	}
}
