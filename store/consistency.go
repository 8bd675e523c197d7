package store

import (
	"errors"
	"fmt"
)

// tally holds derived counters recomputed from relationship rows.
type tally struct {
	followers map[int64]int // by user
	following map[int64]int // by user
	posts     map[int64]int // by user
	likes     map[int64]int // by post
	comments  map[int64]int // by post
	sales     map[int64]int // by product
}

func tallyRows(st *state) tally {
	t := tally{
		followers: make(map[int64]int),
		following: make(map[int64]int),
		posts:     make(map[int64]int),
		likes:     make(map[int64]int),
		comments:  make(map[int64]int),
		sales:     make(map[int64]int),
	}
	for _, f := range st.follows.All() {
		t.followers[f.FollowingID]++
		t.following[f.FollowerID]++
	}
	for _, p := range st.posts.All() {
		t.posts[p.UserID]++
	}
	for _, l := range st.likes.All() {
		t.likes[l.PostID]++
	}
	for _, c := range st.comments.All() {
		t.comments[c.PostID]++
	}
	for _, o := range st.orders.All() {
		t.sales[o.ProductID]++
	}
	return t
}

// CheckConsistency recomputes every derived counter from the relationship
// rows and compares it with the stored value. It returns nil when all agree,
// otherwise an error joining one ErrInconsistent per mismatch.
func (s *Store) CheckConsistency() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := tallyRows(&s.state)
	var errs []error
	mismatch := func(ref string, field string, stored, want int) {
		if stored != want {
			errs = append(errs, fmt.Errorf("%w: %s %s is %d, rows say %d", ErrInconsistent, ref, field, stored, want))
		}
	}

	for id, u := range s.users.All() {
		ref := fmt.Sprintf("user#%d", id)
		mismatch(ref, "followersCount", u.FollowersCount, t.followers[id])
		mismatch(ref, "followingCount", u.FollowingCount, t.following[id])
		mismatch(ref, "postsCount", u.PostsCount, t.posts[id])
	}
	for id, p := range s.posts.All() {
		ref := fmt.Sprintf("post#%d", id)
		mismatch(ref, "likesCount", p.LikesCount, t.likes[id])
		mismatch(ref, "commentsCount", p.CommentsCount, t.comments[id])
	}
	for id, p := range s.products.All() {
		mismatch(fmt.Sprintf("product#%d", id), "salesCount", p.SalesCount, t.sales[id])
	}
	return errors.Join(errs...)
}
