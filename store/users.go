package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// GetUser returns the user with the given id.
func (s *Store) GetUser(id int64) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users.Get(id)
	if !ok {
		return User{}, false
	}
	return *u, true
}

// GetUserByUsername returns the user holding username.
func (s *Store) GetUserByUsername(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames.Lookup(username)
	if !ok {
		return User{}, false
	}
	u, ok := s.users.Get(id)
	if !ok {
		return User{}, false
	}
	return *u, true
}

// CreateUser adds a user. Its counters start from any follow or post rows
// already recorded against the new id, so they agree with the rows.
// It returns ErrDuplicateUsername if the username is taken.
func (s *Store) CreateUser(in NewUser) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[in.Username]; taken {
		return User{}, fmt.Errorf("%w: %q", ErrDuplicateUsername, in.Username)
	}

	u := User{
		ID:               s.users.Next(),
		Username:         in.Username,
		Password:         in.Password,
		Name:             in.Name,
		Bio:              in.Bio,
		Location:         in.Location,
		Website:          in.Website,
		Avatar:           in.Avatar,
		IsSeller:         in.IsSeller,
		StripeCustomerID: in.StripeCustomerID,
		StripeAccountID:  in.StripeAccountID,
	}
	u.FollowersCount = s.followsByFollowing.Count(u.ID)
	u.FollowingCount = s.followsByFollower.Count(u.ID)
	u.PostsCount = s.postsByUser.Count(u.ID)
	s.users.Put(u.ID, u)
	s.usernames[u.Username] = u.ID

	s.logger.Debug("user created", zap.Int64("userID", u.ID), zap.String("username", u.Username))
	return u, nil
}

// UpdateUser applies the non-nil fields of upd. Counters and seller state
// are not reachable through it.
// It returns ErrNotFound for an unknown id and ErrDuplicateUsername when the
// new username belongs to someone else.
func (s *Store) UpdateUser(id int64, upd UserUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(id)
	if !ok {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	if upd.Username != nil && *upd.Username != u.Username {
		if owner, taken := s.usernames[*upd.Username]; taken && owner != id {
			return User{}, fmt.Errorf("%w: %q", ErrDuplicateUsername, *upd.Username)
		}
		delete(s.usernames, u.Username)
		u.Username = *upd.Username
		s.usernames[u.Username] = id
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Location != nil {
		u.Location = *upd.Location
	}
	if upd.Website != nil {
		u.Website = *upd.Website
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	return *u, nil
}

// UpdateUserSellerStatus sets the seller flag.
func (s *Store) UpdateUserSellerStatus(id int64, isSeller bool) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(id)
	if !ok {
		return User{}, false
	}
	u.IsSeller = isSeller
	return *u, true
}

// UpdateUserStripeInfo links the user to payment-processor records.
// An empty accountID leaves the stored account id untouched.
func (s *Store) UpdateUserStripeInfo(id int64, customerID, accountID string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users.Get(id)
	if !ok {
		return User{}, false
	}
	u.StripeCustomerID = customerID
	if accountID != "" {
		u.StripeAccountID = accountID
	}
	return *u, true
}

// SearchUsers returns users whose username or name contains query,
// case-insensitively, in id order. An empty query matches nobody.
func (s *Store) SearchUsers(query string) []User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []User
	for _, u := range s.users.All() {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, *u)
		}
	}
	return out
}
