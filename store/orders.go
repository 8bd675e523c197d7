package store

import (
	"time"

	"go.uber.org/zap"
)

func orderKey(o Order) (time.Time, int64) { return o.CreatedAt, o.ID }

// GetOrder returns the order with the given id.
func (s *Store) GetOrder(id int64) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders.Get(id)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// GetOrderByPaymentReference returns the first order created with ref.
func (s *Store) GetOrderByPaymentReference(ref string) (Order, bool) {
	if ref == "" {
		return Order{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.paymentRefs.Lookup(ref)
	if !ok {
		return Order{}, false
	}
	o, ok := s.orders.Get(id)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// GetUserOrders returns the orders placed by userID, newest first.
func (s *Store) GetUserOrders(userID int64) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := collect(s.orders, s.ordersByUser.IDs(userID))
	newestFirst(orders, orderKey)
	return orders
}

// GetSellerOrders returns the orders for the seller's current products,
// newest first.
func (s *Store) GetSellerOrders(sellerID int64) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []Order
	for _, productID := range s.productsBySeller.IDs(sellerID) {
		orders = append(orders, collect(s.orders, s.ordersByProduct.IDs(productID))...)
	}
	newestFirst(orders, orderKey)
	return orders
}

// CreateOrder records a pending order. The product's salesCount is bumped at
// creation, not at completion. The seller gets a purchase notification and
// the buyer a sale notification.
func (s *Store) CreateOrder(in NewOrder) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.next()
	o := Order{
		ID:               s.orders.Next(),
		UserID:           in.UserID,
		ProductID:        in.ProductID,
		PaymentReference: in.PaymentReference,
		Amount:           in.Amount,
		Status:           OrderStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.orders.Put(o.ID, o)
	s.ordersByUser.Add(o.UserID, o.ID)
	s.ordersByProduct.Add(o.ProductID, o.ID)
	if o.PaymentReference != "" {
		if _, exists := s.paymentRefs[o.PaymentReference]; !exists {
			s.paymentRefs[o.PaymentReference] = o.ID
		}
	}

	p, ok := s.products.Get(o.ProductID)
	if !ok {
		s.logger.Warn("ordered product not found, skipping salesCount", zap.Int64("productID", o.ProductID))
		return o
	}
	p.SalesCount++

	s.notify(NewNotification{
		UserID:            p.SellerID,
		TriggeredByUserID: o.UserID,
		Type:              NotificationPurchase,
		ResourceID:        o.ID,
	})
	s.notify(NewNotification{
		UserID:            o.UserID,
		TriggeredByUserID: p.SellerID,
		Type:              NotificationSale,
		ResourceID:        o.ID,
	})
	return o
}

// UpdateOrderStatus replaces the order status. The value is stored as given.
func (s *Store) UpdateOrderStatus(id int64, status OrderStatus) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders.Get(id)
	if !ok {
		return Order{}, false
	}
	o.Status = status
	o.UpdatedAt = s.clock.next()
	return *o, true
}
