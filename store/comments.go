package store

import (
	"time"

	"go.uber.org/zap"
)

func commentKey(c Comment) (time.Time, int64) { return c.CreatedAt, c.ID }

// GetPostComments returns the post's comments oldest first, so they read
// top to bottom as a conversation.
func (s *Store) GetPostComments(postID int64) []Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := collect(s.comments, s.commentsByPost.IDs(postID))
	oldestFirst(comments, commentKey)
	return comments
}

// CreateComment appends a comment, bumps the post's commentsCount and
// notifies the post owner.
func (s *Store) CreateComment(in NewComment) Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Comment{
		ID:        s.comments.Next(),
		UserID:    in.UserID,
		PostID:    in.PostID,
		Content:   in.Content,
		CreatedAt: s.clock.next(),
	}
	s.comments.Put(c.ID, c)
	s.commentsByPost.Add(c.PostID, c.ID)

	p, ok := s.posts.Get(c.PostID)
	if !ok {
		s.logger.Warn("commented post not found, skipping commentsCount", zap.Int64("postID", c.PostID))
		return c
	}
	p.CommentsCount++
	s.notify(NewNotification{
		UserID:            p.UserID,
		TriggeredByUserID: c.UserID,
		Type:              NotificationComment,
		ResourceID:        p.ID,
	})
	return c
}
