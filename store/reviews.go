package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/jacentio/vitrine/internal/index"
)

func reviewKey(r Review) (time.Time, int64) { return r.CreatedAt, r.ID }

// GetReviewByUserAndProduct returns the review userID left on productID.
func (s *Store) GetReviewByUserAndProduct(userID, productID int64) (Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.reviewPairs.Lookup(index.Pair{A: userID, B: productID})
	if !ok {
		return Review{}, false
	}
	r, ok := s.reviews.Get(id)
	if !ok {
		return Review{}, false
	}
	return *r, true
}

// GetProductReviews returns the product's reviews, newest first.
func (s *Store) GetProductReviews(productID int64) []Review {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reviews := collect(s.reviews, s.reviewsByProduct.IDs(productID))
	newestFirst(reviews, reviewKey)
	return reviews
}

// CreateReview upserts the review of productID by userID. An existing review
// has its rating and comment replaced in place, keeping its id, with no new
// notification. A new review notifies the product's seller.
func (s *Store) CreateReview(in NewReview) Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := index.Pair{A: in.UserID, B: in.ProductID}
	if id, ok := s.reviewPairs.Lookup(pair); ok {
		if r, ok := s.reviews.Get(id); ok {
			r.Rating = in.Rating
			r.Comment = in.Comment
			r.UpdatedAt = s.clock.next()
			s.logger.Debug("review updated", zap.Int64("reviewID", id))
			return *r
		}
	}

	now := s.clock.next()
	r := Review{
		ID:        s.reviews.Next(),
		UserID:    in.UserID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reviews.Put(r.ID, r)
	s.reviewPairs[pair] = r.ID
	s.reviewsByProduct.Add(r.ProductID, r.ID)

	if p, ok := s.products.Get(r.ProductID); ok {
		s.notify(NewNotification{
			UserID:            p.SellerID,
			TriggeredByUserID: r.UserID,
			Type:              NotificationReview,
			ResourceID:        p.ID,
		})
	}
	return r
}

// DeleteReview removes a review. It reports false if the review doesn't exist.
func (s *Store) DeleteReview(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews.Get(id)
	if !ok {
		return false
	}
	delete(s.reviewPairs, index.Pair{A: r.UserID, B: r.ProductID})
	s.reviewsByProduct.Remove(r.ProductID, id)
	s.reviews.Delete(id)
	s.cascade(KindReview, id)
	return true
}
