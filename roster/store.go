package roster

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charmas3r/recovery-token-project-sub000/docstore"
)

// DefaultKey is the document key holding an account's roster.
const DefaultKey = "roster"

// Recorder observes completed store operations, for metrics.
type Recorder interface {
	Observe(op string, elapsed time.Duration, err error)
}

// Store orchestrates roster mutations against a revisioned document store.
// Each mutation performs exactly one fetch/write pair; a write that loses a
// race surfaces docstore.ErrConflict and is never retried here, since a
// blind retry on a stale read could apply a mutation twice. Re-fetching and
// re-applying is the caller's decision.
type Store struct {
	docs   docstore.Store
	key    string
	logger *slog.Logger
	rec    Recorder
	now    func() time.Time
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the document key (default "roster").
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithRecorder attaches an operation recorder.
func WithRecorder(rec Recorder) Option {
	return func(s *Store) { s.rec = rec }
}

// WithClock overrides the server clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides member ID generation, for tests.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates a roster store over docs.
func NewStore(docs docstore.Store, opts ...Option) *Store {
	s := &Store{
		docs:   docs,
		key:    DefaultKey,
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the current roster in insertion order. A missing document is
// an empty roster, not an error.
func (s *Store) List(ctx context.Context) ([]CircleMember, error) {
	start := time.Now()
	members, _, err := s.load(ctx)
	s.observe("list", start, err)
	return members, err
}

// AddMember validates input, assigns a fresh ID and timestamps, and appends
// the member to the roster.
func (s *Store) AddMember(ctx context.Context, input MemberInput) (*CircleMember, error) {
	start := time.Now()
	m, err := s.addMember(ctx, input)
	s.observe("add", start, err)
	return m, err
}

func (s *Store) addMember(ctx context.Context, input MemberInput) (*CircleMember, error) {
	now := s.now()
	if err := input.Validate(now); err != nil {
		return nil, err
	}

	members, revision, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	member := CircleMember{
		ID:           s.newID(),
		Name:         strings.TrimSpace(input.Name),
		CleanDate:    input.CleanDate,
		Relationship: input.Relationship,
		Program:      input.Program,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.save(ctx, append(members, member), revision); err != nil {
		return nil, err
	}

	s.logger.Info("circle member added",
		slog.String("member_id", member.ID),
		slog.String("clean_date", member.CleanDate.String()))
	return &member, nil
}

// EditMember validates input and replaces the fields of the member with the
// given id, preserving its ID and CreatedAt. Editing a member that no
// longer exists is a no-op (the caller may hold stale data after a
// concurrent delete) and returns a nil member without writing.
func (s *Store) EditMember(ctx context.Context, id string, input MemberInput) (*CircleMember, error) {
	start := time.Now()
	m, err := s.editMember(ctx, id, input)
	s.observe("edit", start, err)
	return m, err
}

func (s *Store) editMember(ctx context.Context, id string, input MemberInput) (*CircleMember, error) {
	now := s.now()
	if err := input.Validate(now); err != nil {
		return nil, err
	}

	members, revision, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range members {
		if members[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Warn("edit of unknown circle member skipped", slog.String("member_id", id))
		return nil, nil
	}

	members[idx].Name = strings.TrimSpace(input.Name)
	members[idx].CleanDate = input.CleanDate
	members[idx].Relationship = input.Relationship
	members[idx].Program = input.Program
	members[idx].UpdatedAt = now

	if err := s.save(ctx, members, revision); err != nil {
		return nil, err
	}

	updated := members[idx]
	return &updated, nil
}

// RemoveMember deletes the member with the given id. Removing an unknown id
// is a no-op and skips the write.
func (s *Store) RemoveMember(ctx context.Context, id string) error {
	start := time.Now()
	err := s.removeMember(ctx, id)
	s.observe("remove", start, err)
	return err
}

func (s *Store) removeMember(ctx context.Context, id string) error {
	members, revision, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := members[:0:0]
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return nil
	}

	if err := s.save(ctx, kept, revision); err != nil {
		return err
	}

	s.logger.Info("circle member removed", slog.String("member_id", id))
	return nil
}

// load fetches and decodes the roster document. A missing document is the
// empty roster at revision 0, so the first write creates it.
func (s *Store) load(ctx context.Context) ([]CircleMember, uint64, error) {
	doc, err := s.docs.Get(ctx, s.key)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	members, skipped := ParseDocument(doc.Value)
	for _, sk := range skipped {
		s.logger.Warn("dropping unreadable roster entry",
			slog.Int("index", sk.Index),
			slog.String("reason", sk.Reason))
	}
	return members, doc.Revision, nil
}

// save encodes and writes the roster guarded by the revision it was read at.
func (s *Store) save(ctx context.Context, members []CircleMember, revision uint64) error {
	data, err := EncodeDocument(members)
	if err != nil {
		return err
	}
	if _, err := s.docs.Put(ctx, s.key, data, revision); err != nil {
		return err
	}
	return nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.rec != nil {
		s.rec.Observe(op, time.Since(start), err)
	}
}
