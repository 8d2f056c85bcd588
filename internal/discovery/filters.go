// internal/discovery/filters.go
// Filter store: edits go to a draft, only Apply/Reset reach the active set

package discovery

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/imadgeboyega/gravelmatch/internal/common/apperr"
	"github.com/imadgeboyega/gravelmatch/internal/common/utils"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

// Edit changes one attribute of a draft filter
type Edit func(*FilterSet)

// WithMinAge sets the lower age bound; nil clears it
func WithMinAge(v *int) Edit { return func(f *FilterSet) { f.MinAge = copyInt(v) } }

// WithMaxAge sets the upper age bound; nil clears it
func WithMaxAge(v *int) Edit { return func(f *FilterSet) { f.MaxAge = copyInt(v) } }

// WithMinDistance sets the lower preferred distance in km; nil clears it
func WithMinDistance(v *int) Edit { return func(f *FilterSet) { f.MinDistance = copyInt(v) } }

// WithMaxDistance sets the upper preferred distance in km; nil clears it
func WithMaxDistance(v *int) Edit { return func(f *FilterSet) { f.MaxDistance = copyInt(v) } }

// WithExperienceLevel sets the level; LevelNone clears it
func WithExperienceLevel(l profile.ExperienceLevel) Edit {
	return func(f *FilterSet) { f.ExperienceLevel = l }
}

// WithZone sets the zone; blank clears it
func WithZone(z string) Edit {
	return func(f *FilterSet) { f.Zone = strings.TrimSpace(z) }
}

// ChangeFunc reacts to a new active filter. The store itself never
// touches the network; listeners such as the candidate queue do.
type ChangeFunc func(ctx context.Context, active FilterSet) error

type FilterStore struct {
	mu        sync.Mutex
	draft     FilterSet
	active    FilterSet
	listeners []ChangeFunc
}

func NewFilterStore() *FilterStore {
	return &FilterStore{}
}

// OnChange registers fn to run once per Apply or Reset
func (s *FilterStore) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Stage merges edits into the draft. An invalid result leaves the draft as it was.
func (s *FilterStore) Stage(edits ...Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.draft.clone()
	for _, edit := range edits {
		edit(&next)
	}
	if err := utils.ValidateStruct(next); err != nil {
		return apperr.Validation("discovery.filters", err)
	}
	s.draft = next
	return nil
}

// Apply commits the draft and signals listeners exactly once
func (s *FilterStore) Apply(ctx context.Context) error {
	s.mu.Lock()
	s.active = s.draft.clone()
	active := s.active.clone()
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	return notify(ctx, listeners, active)
}

// Reset empties draft and active filter and signals listeners exactly once
func (s *FilterStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.draft = FilterSet{}
	s.active = FilterSet{}
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	return notify(ctx, listeners, FilterSet{})
}

// DiscardDraft drops staged edits, going back to the active filter
func (s *FilterStore) DiscardDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.active.clone()
}

func (s *FilterStore) Draft() FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

func (s *FilterStore) Active() FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.clone()
}

func notify(ctx context.Context, listeners []ChangeFunc, active FilterSet) error {
	var errs []error
	for _, fn := range listeners {
		if err := fn(ctx, active.clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsActive reports whether any attribute is set
func (f FilterSet) IsActive() bool {
	return f.MinAge != nil || f.MaxAge != nil ||
		f.MinDistance != nil || f.MaxDistance != nil ||
		f.ExperienceLevel != profile.LevelNone || f.Zone != ""
}

// Query encodes the filter for GET /api/discover. Parameter order is fixed
// and unset attributes are omitted.
func (f FilterSet) Query() string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	addInt := func(key string, v *int) {
		if v != nil {
			add(key, strconv.Itoa(*v))
		}
	}

	addInt("min_age", f.MinAge)
	addInt("max_age", f.MaxAge)
	addInt("min_distance", f.MinDistance)
	addInt("max_distance", f.MaxDistance)
	if f.ExperienceLevel != profile.LevelNone {
		add("experience_level", string(f.ExperienceLevel))
	}
	if f.Zone != "" {
		add("zone", f.Zone)
	}
	return b.String()
}

func (f FilterSet) clone() FilterSet {
	out := f
	out.MinAge = copyInt(f.MinAge)
	out.MaxAge = copyInt(f.MaxAge)
	out.MinDistance = copyInt(f.MinDistance)
	out.MaxDistance = copyInt(f.MaxDistance)
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
