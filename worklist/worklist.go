// Package worklist turns raw sitemap URLs into the ordered list of URLs a
// run will submit, leaving out duplicates and URLs that were already
// indexed.
package worklist

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitepush"
)

// Options controls how a worklist is built.
type Options struct {
	// Source identifies the sitemap the URLs came from. Records are
	// matched against it.
	Source string

	Filter sitepush.FilterMode
	Order  sitepush.OrderPolicy

	// Seed fixes the shuffle order. Zero derives a seed from Source so
	// the same sitemap always shuffles the same way.
	Seed uint64
}

// Builder builds worklists against historical submission records.
type Builder struct {
	Records sitepush.RecordService

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Freshness is how long a successful submission keeps a URL out of
	// the worklist under sitepush.FilterFresh. Defaults to
	// sitepush.QuotaWindow.
	Freshness time.Duration
}

// NewBuilder creates a Builder reading records from the given service.
func NewBuilder(records sitepush.RecordService) *Builder {
	return &Builder{
		Records:   records,
		Now:       time.Now,
		Freshness: sitepush.QuotaWindow,
	}
}

// Build deduplicates urls, drops the ones excluded by opts.Filter and
// orders the rest according to opts.Order.
func (b *Builder) Build(ctx context.Context, urls []string, opts Options) ([]string, error) {
	if opts.Source == "" {
		return nil, sitepush.Errorf(sitepush.EINVALID, "worklist source required")
	}
	if opts.Filter == "" {
		opts.Filter = sitepush.FilterNone
	}
	if opts.Order == "" {
		opts.Order = sitepush.OrderPreserve
	}
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Order.Validate(); err != nil {
		return nil, err
	}

	excluded, err := b.excluded(ctx, opts)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		if _, ok := excluded[u]; ok {
			continue
		}
		out = append(out, u)
	}

	switch opts.Order {
	case sitepush.OrderSort:
		slices.Sort(out)
	case sitepush.OrderShuffle:
		seed := opts.Seed
		if seed == 0 {
			seed = Seed(opts.Source)
		}
		Shuffle(out, seed)
	}

	return out, nil
}

// excluded returns the set of URLs the filter mode leaves out.
func (b *Builder) excluded(ctx context.Context, opts Options) (map[string]struct{}, error) {
	if opts.Filter == sitepush.FilterNone {
		return nil, nil
	}

	success := true
	filter := sitepush.RecordFilter{Source: &opts.Source, Success: &success}
	if opts.Filter == sitepush.FilterFresh {
		since := b.now().Add(-b.freshness())
		filter.AttemptedAfter = &since
	}

	records, err := b.Records.FindRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load submission records: %w", err)
	}

	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		set[rec.URL] = struct{}{}
	}
	return set, nil
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *Builder) freshness() time.Duration {
	if b.Freshness <= 0 {
		return sitepush.QuotaWindow
	}
	return b.Freshness
}

// Seed derives a shuffle seed from a source identifier.
func Seed(source string) uint64 {
	return xxhash.Sum64String(source)
}

// Shuffle permutes urls in place. The permutation depends only on seed.
func Shuffle(urls []string, seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(urls), func(i, j int) {
		urls[i], urls[j] = urls[j], urls[i]
	})
}
