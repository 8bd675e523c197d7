package store

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/jacentio/vitrine/internal/index"
	"github.com/jacentio/vitrine/internal/table"
)

// Sequences records the last id issued per collection, so that ids are never
// reused across a Restore even when the newest rows were deleted.
type Sequences struct {
	Users         int64 `json:"users"`
	Posts         int64 `json:"posts"`
	Likes         int64 `json:"likes"`
	Comments      int64 `json:"comments"`
	Follows       int64 `json:"follows"`
	Notifications int64 `json:"notifications"`
	Products      int64 `json:"products"`
	Orders        int64 `json:"orders"`
	Reviews       int64 `json:"reviews"`
}

// Snapshot is a point-in-time copy of every collection, rows in id order.
type Snapshot struct {
	TakenAt       time.Time      `json:"takenAt"`
	Sequences     Sequences      `json:"sequences"`
	Users         []User         `json:"users"`
	Posts         []Post         `json:"posts"`
	Likes         []Like         `json:"likes"`
	Comments      []Comment      `json:"comments"`
	Follows       []Follow       `json:"follows"`
	Notifications []Notification `json:"notifications"`
	Products      []Product      `json:"products"`
	Orders        []Order        `json:"orders"`
	Reviews       []Review       `json:"reviews"`
}

// Len returns the total number of rows in the snapshot.
func (snap Snapshot) Len() int {
	return len(snap.Users) + len(snap.Posts) + len(snap.Likes) + len(snap.Comments) +
		len(snap.Follows) + len(snap.Notifications) + len(snap.Products) +
		len(snap.Orders) + len(snap.Reviews)
}

// Snapshot returns a deep copy of the store contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		TakenAt: s.config.Now().UTC(),
		Sequences: Sequences{
			Users:         s.users.Seq(),
			Posts:         s.posts.Seq(),
			Likes:         s.likes.Seq(),
			Comments:      s.comments.Seq(),
			Follows:       s.follows.Seq(),
			Notifications: s.notifications.Seq(),
			Products:      s.products.Seq(),
			Orders:        s.orders.Seq(),
			Reviews:       s.reviews.Seq(),
		},
		Users:         rows(s.users),
		Posts:         rows(s.posts),
		Likes:         rows(s.likes),
		Comments:      rows(s.comments),
		Follows:       rows(s.follows),
		Notifications: rows(s.notifications),
		Products:      rows(s.products),
		Orders:        rows(s.orders),
		Reviews:       rows(s.reviews),
	}
}

func rows[T any](t *table.Table[T]) []T {
	out := make([]T, 0, t.Len())
	for _, r := range t.All() {
		out = append(out, *r)
	}
	return out
}

// Restore replaces the store contents with snap. Secondary indices are
// rebuilt and every derived counter is recomputed from the relationship rows,
// so stale counters in the snapshot are corrected. Sequences resume from the
// larger of the recorded value and the highest id present.
//
// It returns ErrInvalidSnapshot, leaving the store unchanged, when ids or
// unique keys collide.
func (s *Store) Restore(snap Snapshot) error {
	next, latest, err := build(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = next
	s.clock.observe(latest)

	s.logger.Info("store restored",
		zap.Int("rows", snap.Len()),
		zap.Time("takenAt", snap.TakenAt),
	)
	return nil
}

// build assembles a state from snap and returns the latest timestamp seen.
func build(snap Snapshot) (state, time.Time, error) {
	st := newState()
	var latest time.Time
	seen := func(ts ...time.Time) {
		for _, t := range ts {
			if t.After(latest) {
				latest = t
			}
		}
	}

	if err := load(KindUser, st.users, snap.Users, snap.Sequences.Users, func(u User) int64 { return u.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindPost, st.posts, snap.Posts, snap.Sequences.Posts, func(p Post) int64 { return p.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindLike, st.likes, snap.Likes, snap.Sequences.Likes, func(l Like) int64 { return l.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindComment, st.comments, snap.Comments, snap.Sequences.Comments, func(c Comment) int64 { return c.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindFollow, st.follows, snap.Follows, snap.Sequences.Follows, func(f Follow) int64 { return f.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindNotification, st.notifications, snap.Notifications, snap.Sequences.Notifications, func(n Notification) int64 { return n.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindProduct, st.products, snap.Products, snap.Sequences.Products, func(p Product) int64 { return p.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindOrder, st.orders, snap.Orders, snap.Sequences.Orders, func(o Order) int64 { return o.ID }); err != nil {
		return state{}, latest, err
	}
	if err := load(KindReview, st.reviews, snap.Reviews, snap.Sequences.Reviews, func(r Review) int64 { return r.ID }); err != nil {
		return state{}, latest, err
	}

	for id, u := range st.users.All() {
		if _, dup := st.usernames[u.Username]; dup {
			return state{}, latest, fmt.Errorf("%w: username %q held by more than one user", ErrInvalidSnapshot, u.Username)
		}
		st.usernames[u.Username] = id
	}
	for id, p := range st.posts.All() {
		st.postsByUser.Add(p.UserID, id)
		seen(p.CreatedAt)
	}
	for id, l := range st.likes.All() {
		pair := index.Pair{A: l.UserID, B: l.PostID}
		if _, dup := st.likePairs[pair]; dup {
			return state{}, latest, fmt.Errorf("%w: user %d liked post %d twice", ErrInvalidSnapshot, l.UserID, l.PostID)
		}
		st.likePairs[pair] = id
		st.likesByPost.Add(l.PostID, id)
		seen(l.CreatedAt)
	}
	for id, c := range st.comments.All() {
		st.commentsByPost.Add(c.PostID, id)
		seen(c.CreatedAt)
	}
	for id, f := range st.follows.All() {
		pair := index.Pair{A: f.FollowerID, B: f.FollowingID}
		if _, dup := st.followPairs[pair]; dup {
			return state{}, latest, fmt.Errorf("%w: user %d follows user %d twice", ErrInvalidSnapshot, f.FollowerID, f.FollowingID)
		}
		st.followPairs[pair] = id
		st.followsByFollower.Add(f.FollowerID, id)
		st.followsByFollowing.Add(f.FollowingID, id)
		seen(f.CreatedAt)
	}
	for id, n := range st.notifications.All() {
		st.notificationsByUser.Add(n.UserID, id)
		seen(n.CreatedAt)
	}
	for id, p := range st.products.All() {
		st.productsBySeller.Add(p.SellerID, id)
		seen(p.CreatedAt, p.UpdatedAt)
	}
	for id, o := range st.orders.All() {
		st.ordersByUser.Add(o.UserID, id)
		st.ordersByProduct.Add(o.ProductID, id)
		if o.PaymentReference != "" {
			if _, exists := st.paymentRefs[o.PaymentReference]; !exists {
				st.paymentRefs[o.PaymentReference] = id
			}
		}
		seen(o.CreatedAt, o.UpdatedAt)
	}
	for id, r := range st.reviews.All() {
		pair := index.Pair{A: r.UserID, B: r.ProductID}
		if _, dup := st.reviewPairs[pair]; dup {
			return state{}, latest, fmt.Errorf("%w: user %d reviewed product %d twice", ErrInvalidSnapshot, r.UserID, r.ProductID)
		}
		st.reviewPairs[pair] = id
		st.reviewsByProduct.Add(r.ProductID, id)
		seen(r.CreatedAt, r.UpdatedAt)
	}

	t := tallyRows(&st)
	for id, u := range st.users.All() {
		u.FollowersCount = t.followers[id]
		u.FollowingCount = t.following[id]
		u.PostsCount = t.posts[id]
	}
	for id, p := range st.posts.All() {
		p.LikesCount = t.likes[id]
		p.CommentsCount = t.comments[id]
	}
	for id, p := range st.products.All() {
		p.SalesCount = t.sales[id]
	}

	return st, latest, nil
}

// load puts rows into t in id order and advances its sequence.
func load[T any](kind Kind, t *table.Table[T], in []T, seq int64, id func(T) int64) error {
	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b T) int { return cmp.Compare(id(a), id(b)) })

	for _, r := range sorted {
		rid := id(r)
		if rid <= 0 {
			return fmt.Errorf("%w: %s id %d is not positive", ErrInvalidSnapshot, kind, rid)
		}
		if _, dup := t.Get(rid); dup {
			return fmt.Errorf("%w: duplicate %s", ErrInvalidSnapshot, index.Ref(string(kind), rid))
		}
		t.Put(rid, r)
	}
	t.Advance(seq)
	return nil
}
