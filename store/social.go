package store

import (
	"go.uber.org/zap"

	"github.com/jacentio/vitrine/internal/index"
)

// --- Likes ---

// GetLikeByUserAndPost returns the like userID left on postID.
func (s *Store) GetLikeByUserAndPost(userID, postID int64) (Like, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.likePairs.Lookup(index.Pair{A: userID, B: postID})
	if !ok {
		return Like{}, false
	}
	l, ok := s.likes.Get(id)
	if !ok {
		return Like{}, false
	}
	return *l, true
}

// CreateLike records that userID likes postID. It is idempotent: if the pair
// already exists the existing like is returned and nothing else changes.
// Otherwise the post's likesCount is bumped and its owner notified.
func (s *Store) CreateLike(userID, postID int64) Like {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := index.Pair{A: userID, B: postID}
	if id, ok := s.likePairs.Lookup(pair); ok {
		if l, ok := s.likes.Get(id); ok {
			s.logger.Debug("like already exists", zap.Int64("likeID", id))
			return *l
		}
	}

	l := Like{
		ID:        s.likes.Next(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: s.clock.next(),
	}
	s.likes.Put(l.ID, l)
	s.likePairs[pair] = l.ID
	s.likesByPost.Add(postID, l.ID)

	p, ok := s.posts.Get(postID)
	if !ok {
		s.logger.Warn("liked post not found, skipping likesCount", zap.Int64("postID", postID))
		return l
	}
	p.LikesCount++
	s.notify(NewNotification{
		UserID:            p.UserID,
		TriggeredByUserID: userID,
		Type:              NotificationLike,
		ResourceID:        postID,
	})
	return l
}

// DeleteLike removes the like userID left on postID and decrements the post's
// likesCount, never below zero. It reports false if there was no such like.
func (s *Store) DeleteLike(userID, postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := index.Pair{A: userID, B: postID}
	id, ok := s.likePairs.Lookup(pair)
	if !ok {
		return false
	}
	delete(s.likePairs, pair)
	s.likesByPost.Remove(postID, id)
	s.likes.Delete(id)

	if p, ok := s.posts.Get(postID); ok {
		p.LikesCount = clampDec(p.LikesCount)
	}
	return true
}

// --- Follows ---

// GetFollowByUserIDs returns the follow of followingID by followerID.
func (s *Store) GetFollowByUserIDs(followerID, followingID int64) (Follow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.followPairs.Lookup(index.Pair{A: followerID, B: followingID})
	if !ok {
		return Follow{}, false
	}
	f, ok := s.follows.Get(id)
	if !ok {
		return Follow{}, false
	}
	return *f, true
}

// CreateFollow records that followerID follows followingID. It is idempotent
// by pair. A new follow bumps the follower's followingCount and the
// followee's followersCount, and notifies the followee unless it is a
// self-follow.
func (s *Store) CreateFollow(followerID, followingID int64) Follow {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := index.Pair{A: followerID, B: followingID}
	if id, ok := s.followPairs.Lookup(pair); ok {
		if f, ok := s.follows.Get(id); ok {
			s.logger.Debug("follow already exists", zap.Int64("followID", id))
			return *f
		}
	}

	f := Follow{
		ID:          s.follows.Next(),
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   s.clock.next(),
	}
	s.follows.Put(f.ID, f)
	s.followPairs[pair] = f.ID
	s.followsByFollower.Add(followerID, f.ID)
	s.followsByFollowing.Add(followingID, f.ID)

	if follower, ok := s.users.Get(followerID); ok {
		follower.FollowingCount++
	}
	if following, ok := s.users.Get(followingID); ok {
		following.FollowersCount++
	}
	s.notify(NewNotification{
		UserID:            followingID,
		TriggeredByUserID: followerID,
		Type:              NotificationFollow,
	})
	return f
}

// DeleteFollow removes the follow and decrements both counters, never below
// zero. It reports false if the pair wasn't following.
func (s *Store) DeleteFollow(followerID, followingID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := index.Pair{A: followerID, B: followingID}
	id, ok := s.followPairs.Lookup(pair)
	if !ok {
		return false
	}
	delete(s.followPairs, pair)
	s.followsByFollower.Remove(followerID, id)
	s.followsByFollowing.Remove(followingID, id)
	s.follows.Delete(id)

	if follower, ok := s.users.Get(followerID); ok {
		follower.FollowingCount = clampDec(follower.FollowingCount)
	}
	if following, ok := s.users.Get(followingID); ok {
		following.FollowersCount = clampDec(following.FollowersCount)
	}
	return true
}

// GetFollowersByUserID returns the users following userID, in the order they followed.
func (s *Store) GetFollowersByUserID(userID int64) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []User
	for _, f := range collect(s.follows, s.followsByFollowing.IDs(userID)) {
		if u, ok := s.users.Get(f.FollowerID); ok {
			out = append(out, *u)
		}
	}
	return out
}

// GetFollowingByUserID returns the users userID follows, in the order they were followed.
func (s *Store) GetFollowingByUserID(userID int64) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []User
	for _, f := range collect(s.follows, s.followsByFollower.IDs(userID)) {
		if u, ok := s.users.Get(f.FollowingID); ok {
			out = append(out, *u)
		}
	}
	return out
}
