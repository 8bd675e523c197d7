package store

import (
	"time"

	"go.uber.org/zap"
)

func postKey(p Post) (time.Time, int64) { return p.CreatedAt, p.ID }

// GetPost returns the post with the given id.
func (s *Store) GetPost(id int64) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts.Get(id)
	if !ok {
		return Post{}, false
	}
	return *p, true
}

// GetPostWithUser returns the post joined with its owner. A post whose owner
// cannot be resolved is reported as absent.
func (s *Store) GetPostWithUser(id int64) (PostWithUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts.Get(id)
	if !ok {
		return PostWithUser{}, false
	}
	u, ok := s.users.Get(p.UserID)
	if !ok {
		return PostWithUser{}, false
	}
	return PostWithUser{Post: *p, User: *u}, true
}

// GetUserPosts returns the user's posts, newest first.
func (s *Store) GetUserPosts(userID int64) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := collect(s.posts, s.postsByUser.IDs(userID))
	newestFirst(posts, postKey)
	return posts
}

// CreatePost adds a post and bumps the owner's postsCount. The owner is
// assumed to exist; if it doesn't, the counter update is skipped.
func (s *Store) CreatePost(in NewPost) Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Post{
		ID:        s.posts.Next(),
		UserID:    in.UserID,
		Caption:   in.Caption,
		ImageURL:  in.ImageURL,
		CreatedAt: s.clock.next(),
	}
	// Likes and comments can reference a post id before it is issued.
	p.LikesCount = s.likesByPost.Count(p.ID)
	p.CommentsCount = s.commentsByPost.Count(p.ID)
	s.posts.Put(p.ID, p)
	s.postsByUser.Add(p.UserID, p.ID)

	if owner, ok := s.users.Get(p.UserID); ok {
		owner.PostsCount++
	} else {
		s.logger.Warn("post owner not found, skipping postsCount",
			zap.Int64("postID", p.ID),
			zap.Int64("userID", p.UserID),
		)
	}
	return p
}

// DeletePost removes a post with its likes and comments and decrements the
// owner's postsCount (never below zero). It reports false if the post doesn't exist.
func (s *Store) DeletePost(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts.Get(id)
	if !ok {
		return false
	}
	ownerID := p.UserID

	s.posts.Delete(id)
	s.postsByUser.Remove(ownerID, id)

	if owner, ok := s.users.Get(ownerID); ok {
		owner.PostsCount = clampDec(owner.PostsCount)
	}

	removed := s.cascade(KindPost, id)
	s.logger.Debug("post deleted",
		zap.Int64("postID", id),
		zap.Int("likes", removed[KindLike]),
		zap.Int("comments", removed[KindComment]),
	)
	return true
}

// GetFeedPosts returns every post joined with its owner, newest first.
// Posts whose owner cannot be resolved are left out.
func (s *Store) GetFeedPosts() []PostWithUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := make([]PostWithUser, 0, s.posts.Len())
	for _, p := range s.posts.All() {
		u, ok := s.users.Get(p.UserID)
		if !ok {
			continue
		}
		feed = append(feed, PostWithUser{Post: *p, User: *u})
	}
	newestFirst(feed, func(p PostWithUser) (time.Time, int64) { return postKey(p.Post) })
	return feed
}
