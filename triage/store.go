package triage

import (
	"errors"
	"fmt"

	"offer_manager/models"
)

var (
	ErrUnknownListing = errors.New("offer not in the expected set")
	ErrInvalidReason  = errors.New("invalid rejection reason")
	ErrNoOpener       = errors.New("no opener configured")
)

// Opener shows an offer page to the user, usually in a web browser.
type Opener func(url string) error

// Store owns the triage state for one session. It is not safe for concurrent
// use; the presentation layer drives it from a single goroutine.
//
// Callers should only request actions available in an offer's current set.
// A request for an offer outside that set changes nothing and returns
// ErrUnknownListing.
type Store struct {
	newSet   *ordered[models.NewListing]
	rejected *ordered[models.RejectedListing]
	opener   Opener
}

func NewStore(s Snapshot, opener Opener) *Store {
	st := &Store{
		newSet:   newOrdered[models.NewListing](),
		rejected: newOrdered[models.RejectedListing](),
		opener:   opener,
	}
	for _, l := range s.Rejected {
		st.rejected.put(l.URL, l)
	}
	for _, l := range s.New {
		if _, ok := st.rejected.get(l.URL); ok {
			continue
		}
		st.newSet.put(l.URL, l)
	}
	return st
}

// ToggleInteresting flips the interesting flag of a New offer and returns the new value.
func (s *Store) ToggleInteresting(url string) (bool, error) {
	l, ok := s.newSet.get(url)
	if !ok {
		return false, fmt.Errorf("toggle %s: %w", url, ErrUnknownListing)
	}
	l.Interesting = !l.Interesting
	s.newSet.put(url, l)
	return l.Interesting, nil
}

// Reject moves a New offer to Rejected. Its interesting flag is dropped.
func (s *Store) Reject(url string, reason models.Reason) error {
	if !reason.Valid() {
		return fmt.Errorf("reject %s: %w: %q", url, ErrInvalidReason, reason)
	}
	l, ok := s.newSet.get(url)
	if !ok {
		return fmt.Errorf("reject %s: %w", url, ErrUnknownListing)
	}
	s.newSet.remove(url)
	s.rejected.put(url, l.Reject(reason))
	return nil
}

// Reinstate moves a Rejected offer back to New, not interesting. Its reason is dropped.
func (s *Store) Reinstate(url string) error {
	l, ok := s.rejected.get(url)
	if !ok {
		return fmt.Errorf("reinstate %s: %w", url, ErrUnknownListing)
	}
	s.rejected.remove(url)
	s.newSet.put(url, l.Reinstate())
	return nil
}

// OpenSource opens the offer page. It never changes state.
func (s *Store) OpenSource(url string) error {
	_, isNew := s.newSet.get(url)
	_, isRejected := s.rejected.get(url)
	if !isNew && !isRejected {
		return fmt.Errorf("open %s: %w", url, ErrUnknownListing)
	}
	if s.opener == nil {
		return ErrNoOpener
	}
	return s.opener(url)
}

func (s *Store) NewListings() []models.NewListing {
	return s.newSet.values()
}

func (s *Store) RejectedListings() []models.RejectedListing {
	return s.rejected.values()
}

func (s *Store) Counts() (newCount, rejectedCount int) {
	return s.newSet.len(), s.rejected.len()
}

// Snapshot returns a copy of the state for saving.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		New:      s.newSet.values(),
		Rejected: s.rejected.values(),
	}
}
