package store_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/vitrine/store"
)

var snapshotOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.IgnoreFields(store.Snapshot{}, "TakenAt"),
	cmpopts.EquateEmpty(),
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.Now = func() time.Time { return epoch }
	cfg.SeedDemoData = true
	return store.New(cfg)
}

func TestSeedDemoData(t *testing.T) {
	s := seededStore(t)
	snap := s.Snapshot()

	assert.Len(t, snap.Users, 6)
	assert.Len(t, snap.Posts, 5)
	assert.Len(t, snap.Follows, 5)
	assert.Len(t, snap.Likes, 5)
	assert.Len(t, snap.Comments, 2)
	require.NoError(t, s.CheckConsistency())

	rafael, ok := s.GetUserByUsername("rafael.costa")
	require.True(t, ok)
	assert.Equal(t, 3, rafael.FollowingCount)
	assert.Equal(t, 2, rafael.FollowersCount)
	assert.Equal(t, "password123", rafael.Password)

	julia, _ := s.GetUserByUsername("julia.lima")
	posts := s.GetUserPosts(julia.ID)
	require.Len(t, posts, 1)
	assert.Equal(t, 3, posts[0].LikesCount)

	// Follow fan-out plus the three direct notifications.
	assert.Equal(t, 5, s.UnreadNotificationCount(rafael.ID))
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	src := seededStore(t)
	seller, _ := src.GetUserByUsername("ana.silva")
	buyer, _ := src.GetUserByUsername("carlos.mendes")
	p := src.CreateProduct(store.NewProduct{SellerID: seller.ID, Title: "Prints", Type: store.ProductTypeProduct, Price: decimal.RequireFromString("19.99")})
	src.CreateOrder(store.NewOrder{UserID: buyer.ID, ProductID: p.ID, PaymentReference: "pi_1", Amount: p.Price})
	src.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: p.ID, Rating: 5})
	src.DeletePost(3)

	want := src.Snapshot()

	dst := newTestStore(t)
	require.NoError(t, dst.Restore(want))

	if diff := cmp.Diff(want, dst.Snapshot(), snapshotOpts); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, dst.CheckConsistency())

	// Indices are rebuilt.
	_, ok := dst.GetUserByUsername("sofia.almeida")
	assert.True(t, ok)
	o, ok := dst.GetOrderByPaymentReference("pi_1")
	require.True(t, ok)
	assert.Equal(t, buyer.ID, o.UserID)
	assert.Equal(t, src.CreateLike(buyer.ID, 1).ID, dst.CreateLike(buyer.ID, 1).ID)

	// Sequences resume, so the deleted post's id is not handed out again.
	next := dst.CreatePost(store.NewPost{UserID: seller.ID})
	assert.Equal(t, int64(6), next.ID)
}

func TestRestore_RecomputesCounters(t *testing.T) {
	s := seededStore(t)
	snap := s.Snapshot()
	for i := range snap.Users {
		snap.Users[i].FollowersCount = 100
		snap.Users[i].PostsCount = -3
	}
	for i := range snap.Posts {
		snap.Posts[i].LikesCount = 0
	}

	dst := newTestStore(t)
	require.NoError(t, dst.Restore(snap))
	require.NoError(t, dst.CheckConsistency())

	if diff := cmp.Diff(s.Snapshot(), dst.Snapshot(), snapshotOpts); diff != "" {
		t.Errorf("restored counters differ (-want +got):\n%s", diff)
	}
}

func TestRestore_Invalid(t *testing.T) {
	base := func() store.Snapshot { return seededStore(t).Snapshot() }

	tests := []struct {
		name   string
		mutate func(*store.Snapshot)
	}{
		{"duplicate user id", func(s *store.Snapshot) { s.Users = append(s.Users, s.Users[0]) }},
		{"non-positive id", func(s *store.Snapshot) { s.Posts[0].ID = 0 }},
		{"duplicate username", func(s *store.Snapshot) {
			u := s.Users[0]
			u.ID = 100
			s.Users = append(s.Users, u)
		}},
		{"duplicate like pair", func(s *store.Snapshot) {
			l := s.Likes[0]
			l.ID = 100
			s.Likes = append(s.Likes, l)
		}},
		{"duplicate follow pair", func(s *store.Snapshot) {
			f := s.Follows[0]
			f.ID = 100
			s.Follows = append(s.Follows, f)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := seededStore(t)
			before := dst.Snapshot()

			snap := base()
			tt.mutate(&snap)
			err := dst.Restore(snap)
			require.ErrorIs(t, err, store.ErrInvalidSnapshot)

			if diff := cmp.Diff(before, dst.Snapshot(), snapshotOpts); diff != "" {
				t.Errorf("store changed after a rejected restore (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRestore_NewRowsSortAfterRestored(t *testing.T) {
	future := epoch.Add(24 * time.Hour)
	snap := store.Snapshot{
		Sequences: store.Sequences{Users: 1, Posts: 1},
		Users:     []store.User{{ID: 1, Username: "ana"}},
		Posts:     []store.Post{{ID: 1, UserID: 1, CreatedAt: future}},
	}

	s := newTestStore(t)
	require.NoError(t, s.Restore(snap))

	p := s.CreatePost(store.NewPost{UserID: 1})
	assert.True(t, p.CreatedAt.After(future))

	feed := s.GetFeedPosts()
	require.Len(t, feed, 2)
	assert.Equal(t, p.ID, feed[0].ID)
	assert.Equal(t, 2, feed[0].User.PostsCount)
}

func TestCheckConsistency_Empty(t *testing.T) {
	assert.NoError(t, newTestStore(t).CheckConsistency())
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Seed())
	assert.Len(t, s.Snapshot().Users, 6)
	require.NoError(t, s.CheckConsistency())

	require.ErrorIs(t, s.Seed(), store.ErrNotEmpty)
	assert.Len(t, s.Snapshot().Users, 6, "a refused seed adds nothing")
}

func TestSeed_RefusesUsedStore(t *testing.T) {
	s := newTestStore(t)
	mustUser(t, s, "someone")
	require.ErrorIs(t, s.Seed(), store.ErrNotEmpty)
}
