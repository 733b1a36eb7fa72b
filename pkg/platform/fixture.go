package platform

import (
	"context"
	"sort"
)

// Fixture is an in-memory Source backed by a fixed record set, for tests and
// the CLI demo. Granted defaults to true; set it false to exercise the
// pipeline's permission-denied path.
type Fixture struct {
	Granted bool
	Records []Record
}

// NewFixture returns a granted Fixture seeded with records.
func NewFixture(records ...Record) *Fixture {
	return &Fixture{Granted: true, Records: records}
}

func (f *Fixture) CheckPermission(ctx context.Context) (bool, error) {
	return f.Granted, nil
}

func (f *Fixture) RequestPermission(ctx context.Context) (bool, error) {
	f.Granted = true
	return f.Granted, nil
}

// FetchSince returns records with LastModified > since, sorted ascending by
// LastModified, truncated to limit if limit > 0. Returns no records, no
// error when permission has not been granted.
func (f *Fixture) FetchSince(ctx context.Context, since int64, limit int) ([]Record, error) {
	if !f.Granted {
		return nil, nil
	}
	var out []Record
	for _, r := range f.Records {
		if r.LastModified > since {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastModified < out[j].LastModified })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
