package store

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jacentio/vitrine/internal/index"
	"github.com/jacentio/vitrine/internal/table"
)

// Store is the in-memory entity store. It is safe for concurrent use: every
// operation runs under one lock, so look-up-then-insert sequences and
// counter updates are atomic.
type Store struct {
	mu       sync.RWMutex
	config   Config
	logger   *zap.Logger
	registry *Registry
	clock    *clock

	state
}

// state is everything Restore replaces in one assignment.
type state struct {
	users         *table.Table[User]
	posts         *table.Table[Post]
	likes         *table.Table[Like]
	comments      *table.Table[Comment]
	follows       *table.Table[Follow]
	notifications *table.Table[Notification]
	products      *table.Table[Product]
	orders        *table.Table[Order]
	reviews       *table.Table[Review]

	usernames   index.Unique[string]
	likePairs   index.Unique[index.Pair]
	followPairs index.Unique[index.Pair]
	reviewPairs index.Unique[index.Pair]
	paymentRefs index.Unique[string]

	postsByUser         index.Children
	likesByPost         index.Children
	commentsByPost      index.Children
	followsByFollowing  index.Children
	followsByFollower   index.Children
	notificationsByUser index.Children
	productsBySeller    index.Children
	ordersByUser        index.Children
	ordersByProduct     index.Children
	reviewsByProduct    index.Children
}

func newState() state {
	return state{
		users:         table.New[User](),
		posts:         table.New[Post](),
		likes:         table.New[Like](),
		comments:      table.New[Comment](),
		follows:       table.New[Follow](),
		notifications: table.New[Notification](),
		products:      table.New[Product](),
		orders:        table.New[Order](),
		reviews:       table.New[Review](),

		usernames:   index.Unique[string]{},
		likePairs:   index.Unique[index.Pair]{},
		followPairs: index.Unique[index.Pair]{},
		reviewPairs: index.Unique[index.Pair]{},
		paymentRefs: index.Unique[string]{},

		postsByUser:         index.Children{},
		likesByPost:         index.Children{},
		commentsByPost:      index.Children{},
		followsByFollowing:  index.Children{},
		followsByFollower:   index.Children{},
		notificationsByUser: index.Children{},
		productsBySeller:    index.Children{},
		ordersByUser:        index.Children{},
		ordersByProduct:     index.Children{},
		reviewsByProduct:    index.Children{},
	}
}

// New creates a new Store instance.
func New(config Config) *Store {
	config.validate()
	s := &Store{
		config:   config,
		logger:   config.Logger,
		registry: config.Registry,
		clock:    newClock(config.Now),
		state:    newState(),
	}
	if config.SeedDemoData {
		if err := s.seed(); err != nil {
			s.logger.Error("failed to seed demo data", zap.Error(err))
		}
	}
	return s
}

// Registry returns the cascade registry in use.
func (s *Store) Registry() *Registry {
	return s.registry
}

// cascade deletes every registered child of the given parent, depth first.
// It returns the number of rows removed per child kind. Callers hold s.mu.
func (s *Store) cascade(parent Kind, parentID int64) map[Kind]int {
	removed := make(map[Kind]int)
	for _, rel := range s.registry.ChildrenOf(parent) {
		for _, childID := range s.detach(rel.ChildKind, parentID) {
			removed[rel.ChildKind]++
			for kind, n := range s.cascade(rel.ChildKind, childID) {
				removed[kind] += n
			}
		}
	}
	return removed
}

// detach removes the children of one kind hanging off parentID and returns their ids.
func (s *Store) detach(child Kind, parentID int64) []int64 {
	switch child {
	case KindLike:
		ids := s.likesByPost.Detach(parentID)
		for _, id := range ids {
			if like, ok := s.likes.Get(id); ok {
				delete(s.likePairs, index.Pair{A: like.UserID, B: like.PostID})
			}
			s.likes.Delete(id)
		}
		return ids
	case KindComment:
		ids := s.commentsByPost.Detach(parentID)
		for _, id := range ids {
			s.comments.Delete(id)
		}
		return ids
	case KindReview:
		ids := s.reviewsByProduct.Detach(parentID)
		for _, id := range ids {
			if review, ok := s.reviews.Get(id); ok {
				delete(s.reviewPairs, index.Pair{A: review.UserID, B: review.ProductID})
			}
			s.reviews.Delete(id)
		}
		return ids
	default:
		s.logger.Warn("no cascade rule for relationship child",
			zap.String("child", string(child)),
			zap.Int64("parentID", parentID),
		)
		return nil
	}
}

// collect copies the rows named by ids, skipping ids with no live row.
func collect[T any](t *table.Table[T], ids []int64) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if r, ok := t.Get(id); ok {
			out = append(out, *r)
		}
	}
	return out
}

// newestFirst orders by created time descending, then id descending.
func newestFirst[T any](rows []T, key func(T) (time.Time, int64)) {
	slices.SortStableFunc(rows, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := bt.Compare(at); c != 0 {
			return c
		}
		return cmp.Compare(bid, aid)
	})
}

// oldestFirst orders by created time ascending, then id ascending.
func oldestFirst[T any](rows []T, key func(T) (time.Time, int64)) {
	slices.SortStableFunc(rows, func(a, b T) int {
		at, aid := key(a)
		bt, bid := key(b)
		if c := at.Compare(bt); c != 0 {
			return c
		}
		return cmp.Compare(aid, bid)
	})
}

func clampDec(n int) int {
	return max(0, n-1)
}
