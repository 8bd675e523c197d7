package store

import (
	"time"

	"go.uber.org/zap"
)

func productKey(p Product) (time.Time, int64) { return p.CreatedAt, p.ID }

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products.Get(id)
	if !ok {
		return Product{}, false
	}
	return *p, true
}

// GetProductWithReviews returns the product joined with its seller and its
// reviews (newest first, each with its author). A product whose seller cannot
// be resolved is reported as absent; reviews whose author cannot be resolved
// are left out of the list but still count toward AverageRating.
func (s *Store) GetProductWithReviews(id int64) (ProductWithReviews, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products.Get(id)
	if !ok {
		return ProductWithReviews{}, false
	}
	seller, ok := s.users.Get(p.SellerID)
	if !ok {
		return ProductWithReviews{}, false
	}

	reviews := collect(s.reviews, s.reviewsByProduct.IDs(id))
	newestFirst(reviews, reviewKey)

	view := ProductWithReviews{
		Product: *p,
		Seller:  *seller,
		Reviews: make([]ReviewWithUser, 0, len(reviews)),
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
		if u, ok := s.users.Get(r.UserID); ok {
			view.Reviews = append(view.Reviews, ReviewWithUser{Review: r, User: *u})
		}
	}
	if len(reviews) > 0 {
		view.AverageRating = float64(total) / float64(len(reviews))
	}
	return view, true
}

// GetAllProducts returns the products matching filter joined with their
// seller, newest first. Products whose seller cannot be resolved are left out.
func (s *Store) GetAllProducts(filter ProductFilter) []ProductWithSeller {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listProducts(func(p *Product) bool {
		if filter.Category != "" && p.Category != filter.Category {
			return false
		}
		if filter.Type != "" && p.Type != filter.Type {
			return false
		}
		return true
	})
}

// GetFeaturedProducts returns featured products joined with their seller, newest first.
func (s *Store) GetFeaturedProducts() []ProductWithSeller {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listProducts(func(p *Product) bool { return p.Featured })
}

// listProducts joins matching products with their seller. Callers hold s.mu.
func (s *Store) listProducts(match func(*Product) bool) []ProductWithSeller {
	var out []ProductWithSeller
	for _, p := range s.products.All() {
		if !match(p) {
			continue
		}
		seller, ok := s.users.Get(p.SellerID)
		if !ok {
			continue
		}
		out = append(out, ProductWithSeller{Product: *p, Seller: *seller})
	}
	newestFirst(out, func(p ProductWithSeller) (time.Time, int64) { return productKey(p.Product) })
	return out
}

// GetSellerProducts returns the seller's products, newest first.
func (s *Store) GetSellerProducts(sellerID int64) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := collect(s.products, s.productsBySeller.IDs(sellerID))
	newestFirst(products, productKey)
	return products
}

// CreateProduct adds a listing. salesCount starts from any orders already
// recorded against the new id. The seller becomes a seller
// if they weren't one already.
func (s *Store) CreateProduct(in NewProduct) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.next()
	p := Product{
		ID:          s.products.Next(),
		SellerID:    in.SellerID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Type:        in.Type,
		Category:    in.Category,
		Featured:    in.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.SalesCount = s.ordersByProduct.Count(p.ID)
	s.products.Put(p.ID, p)
	s.productsBySeller.Add(p.SellerID, p.ID)

	if seller, ok := s.users.Get(p.SellerID); ok {
		if !seller.IsSeller {
			seller.IsSeller = true
			s.logger.Debug("user became a seller", zap.Int64("userID", seller.ID))
		}
	} else {
		s.logger.Warn("product seller not found", zap.Int64("productID", p.ID), zap.Int64("sellerID", p.SellerID))
	}
	return p
}

// UpdateProduct applies the non-nil fields of upd and re-stamps UpdatedAt.
// salesCount is not reachable through it.
func (s *Store) UpdateProduct(id int64, upd ProductUpdate) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products.Get(id)
	if !ok {
		return Product{}, false
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Type != nil {
		p.Type = *upd.Type
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Featured != nil {
		p.Featured = *upd.Featured
	}
	p.UpdatedAt = s.clock.next()
	return *p, true
}

// DeleteProduct removes a product and its reviews. Orders keep their
// productId. It reports false if the product doesn't exist.
func (s *Store) DeleteProduct(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products.Get(id)
	if !ok {
		return false
	}
	s.productsBySeller.Remove(p.SellerID, id)
	s.products.Delete(id)

	removed := s.cascade(KindProduct, id)
	s.logger.Debug("product deleted",
		zap.Int64("productID", id),
		zap.Int("reviews", removed[KindReview]),
	)
	return true
}
