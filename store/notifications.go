package store

import (
	"time"

	"go.uber.org/zap"
)

func notificationKey(n Notification) (time.Time, int64) { return n.CreatedAt, n.ID }

// notify is the only place notifications are created. A notification whose
// actor is its recipient is never stored. Callers hold s.mu.
func (s *Store) notify(in NewNotification) (Notification, bool) {
	if in.TriggeredByUserID != 0 && in.TriggeredByUserID == in.UserID {
		s.logger.Debug("self notification suppressed",
			zap.Int64("userID", in.UserID),
			zap.String("type", string(in.Type)),
		)
		return Notification{}, false
	}

	n := Notification{
		ID:                s.notifications.Next(),
		UserID:            in.UserID,
		TriggeredByUserID: in.TriggeredByUserID,
		Type:              in.Type,
		ResourceID:        in.ResourceID,
		CreatedAt:         s.clock.next(),
	}
	s.notifications.Put(n.ID, n)
	s.notificationsByUser.Add(n.UserID, n.ID)
	return n, true
}

// CreateNotification stores a notification directly. It reports false, and
// stores nothing, when the actor is the recipient.
func (s *Store) CreateNotification(in NewNotification) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.notify(in)
}

// GetUserNotifications returns the notifications addressed to userID, newest
// first, with the actor resolved and, for likes and comments, the post.
// Notifications whose actor cannot be resolved are left out.
func (s *Store) GetUserNotifications(userID int64) []NotificationWithUsers {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := collect(s.notifications, s.notificationsByUser.IDs(userID))
	newestFirst(notifications, notificationKey)

	out := make([]NotificationWithUsers, 0, len(notifications))
	for _, n := range notifications {
		actor, ok := s.users.Get(n.TriggeredByUserID)
		if !ok {
			continue
		}
		view := NotificationWithUsers{Notification: n, TriggeredByUser: *actor}
		if n.ResourceID != 0 && (n.Type == NotificationLike || n.Type == NotificationComment) {
			if p, ok := s.posts.Get(n.ResourceID); ok {
				post := *p
				view.Post = &post
			}
		}
		out = append(out, view)
	}
	return out
}

// MarkNotificationsAsRead marks every notification addressed to userID as read.
// It always succeeds.
func (s *Store) MarkNotificationsAsRead(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.notificationsByUser.IDs(userID) {
		if n, ok := s.notifications.Get(id); ok {
			n.Read = true
		}
	}
	return true
}

// UnreadNotificationCount returns how many of userID's notifications are unread.
func (s *Store) UnreadNotificationCount(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unread := 0
	for _, id := range s.notificationsByUser.IDs(userID) {
		if n, ok := s.notifications.Get(id); ok && !n.Read {
			unread++
		}
	}
	return unread
}
