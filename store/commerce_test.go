package store_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/vitrine/store"
)

func mustProduct(t *testing.T, s *store.Store, in store.NewProduct) store.Product {
	t.Helper()
	if in.Title == "" {
		in.Title = "listing"
	}
	if in.Type == "" {
		in.Type = store.ProductTypeProduct
	}
	return s.CreateProduct(in)
}

// End to end: an order bumps salesCount while pending and notifies both sides.
func TestScenario_OrderNotifiesBothParties(t *testing.T) {
	s := newTestStore(t)

	p := mustProduct(t, s, store.NewProduct{SellerID: 10, Featured: false, Price: decimal.RequireFromString("49.90")})
	require.Equal(t, int64(1), p.ID)

	o := s.CreateOrder(store.NewOrder{UserID: 20, ProductID: 1, Amount: p.Price})
	assert.Equal(t, store.OrderStatusPending, o.Status)

	got, _ := s.GetProduct(1)
	assert.Equal(t, 1, got.SalesCount)
	assert.Equal(t, 1, s.UnreadNotificationCount(10))
	assert.Equal(t, 1, s.UnreadNotificationCount(20))

	snap := s.Snapshot()
	require.Len(t, snap.Notifications, 2)
	purchase, sale := snap.Notifications[0], snap.Notifications[1]
	assert.Equal(t, store.Notification{
		ID: purchase.ID, UserID: 10, TriggeredByUserID: 20, Type: store.NotificationPurchase,
		ResourceID: o.ID, CreatedAt: purchase.CreatedAt,
	}, purchase)
	assert.Equal(t, store.Notification{
		ID: sale.ID, UserID: 20, TriggeredByUserID: 10, Type: store.NotificationSale,
		ResourceID: o.ID, CreatedAt: sale.CreatedAt,
	}, sale)
}

func TestCreateProduct_FlipsSeller(t *testing.T) {
	s := newTestStore(t)
	a := mustUser(t, s, "ana")

	p := mustProduct(t, s, store.NewProduct{SellerID: a.ID, Price: decimal.NewFromInt(10)})
	assert.Zero(t, p.SalesCount)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	u, _ := s.GetUser(a.ID)
	assert.True(t, u.IsSeller)
}

func TestGetAllProducts(t *testing.T) {
	s := newTestStore(t)
	a := mustUser(t, s, "ana")
	b := mustUser(t, s, "bruno")

	course := mustProduct(t, s, store.NewProduct{SellerID: a.ID, Type: store.ProductTypeCourse, Category: "photo"})
	poster := mustProduct(t, s, store.NewProduct{SellerID: b.ID, Type: store.ProductTypeProduct, Category: "photo", Featured: true})
	tour := mustProduct(t, s, store.NewProduct{SellerID: a.ID, Type: store.ProductTypeEvent, Category: "travel", Featured: true})
	mustProduct(t, s, store.NewProduct{SellerID: 404, Category: "photo", Featured: true})

	ids := func(ps []store.ProductWithSeller) []int64 {
		var out []int64
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter store.ProductFilter
		want   []int64
	}{
		{"no filter", store.ProductFilter{}, []int64{tour.ID, poster.ID, course.ID}},
		{"category", store.ProductFilter{Category: "photo"}, []int64{poster.ID, course.ID}},
		{"type", store.ProductFilter{Type: store.ProductTypeEvent}, []int64{tour.ID}},
		{"category and type", store.ProductFilter{Category: "photo", Type: store.ProductTypeCourse}, []int64{course.ID}},
		{"no match", store.ProductFilter{Category: "food"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.GetAllProducts(tt.filter)))
		})
	}

	featured := s.GetFeaturedProducts()
	assert.Equal(t, []int64{tour.ID, poster.ID}, ids(featured))
	assert.Equal(t, "bruno", featured[1].Seller.Username)

	seller := s.GetSellerProducts(a.ID)
	require.Len(t, seller, 2)
	assert.Equal(t, tour.ID, seller[0].ID)
}

func TestUpdateProduct(t *testing.T) {
	s := newTestStore(t)
	a := mustUser(t, s, "ana")
	p := mustProduct(t, s, store.NewProduct{SellerID: a.ID, Title: "old", Price: decimal.NewFromInt(10)})
	s.CreateOrder(store.NewOrder{UserID: 99, ProductID: p.ID})

	title := "new"
	price := decimal.RequireFromString("12.50")
	featured := true
	got, ok := s.UpdateProduct(p.ID, store.ProductUpdate{Title: &title, Price: &price, Featured: &featured})
	require.True(t, ok)

	assert.Equal(t, "new", got.Title)
	assert.True(t, got.Price.Equal(price))
	assert.True(t, got.Featured)
	assert.Equal(t, 1, got.SalesCount, "sales survive updates")
	assert.True(t, got.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, p.CreatedAt, got.CreatedAt)

	_, ok = s.UpdateProduct(404, store.ProductUpdate{Title: &title})
	assert.False(t, ok)
}

func TestDeleteProduct_CascadesReviews(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	buyer := mustUser(t, s, "buyer")
	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})
	keep := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})

	o := s.CreateOrder(store.NewOrder{UserID: buyer.ID, ProductID: p.ID})
	s.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: p.ID, Rating: 4})
	s.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: keep.ID, Rating: 2})

	require.True(t, s.DeleteProduct(p.ID))
	assert.False(t, s.DeleteProduct(p.ID))

	assert.Empty(t, s.GetProductReviews(p.ID))
	_, ok := s.GetReviewByUserAndProduct(buyer.ID, p.ID)
	assert.False(t, ok)
	assert.Len(t, s.GetProductReviews(keep.ID), 1)

	kept, ok := s.GetOrder(o.ID)
	require.True(t, ok, "orders outlive their product")
	assert.Equal(t, p.ID, kept.ProductID)
	assert.Empty(t, s.GetSellerOrders(seller.ID))
	assert.Len(t, s.GetUserOrders(buyer.ID), 1)
}

func TestOrders(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	buyer := mustUser(t, s, "buyer")
	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID, Price: decimal.NewFromInt(30)})

	o1 := s.CreateOrder(store.NewOrder{UserID: buyer.ID, ProductID: p.ID, PaymentReference: "pi_1", Amount: p.Price})
	o2 := s.CreateOrder(store.NewOrder{UserID: buyer.ID, ProductID: p.ID, PaymentReference: "pi_2", Amount: p.Price})
	assert.NotEqual(t, o1.ID, o2.ID, "orders are never deduplicated")

	got, ok := s.GetOrderByPaymentReference("pi_1")
	require.True(t, ok)
	assert.Equal(t, o1.ID, got.ID)
	_, ok = s.GetOrderByPaymentReference("")
	assert.False(t, ok)
	_, ok = s.GetOrderByPaymentReference("pi_404")
	assert.False(t, ok)

	mine := s.GetUserOrders(buyer.ID)
	require.Len(t, mine, 2)
	assert.Equal(t, o2.ID, mine[0].ID)
	assert.Len(t, s.GetSellerOrders(seller.ID), 2)

	updated, ok := s.UpdateOrderStatus(o1.ID, store.OrderStatusCompleted)
	require.True(t, ok)
	assert.Equal(t, store.OrderStatusCompleted, updated.Status)
	assert.True(t, updated.UpdatedAt.After(o1.UpdatedAt))

	updated, ok = s.UpdateOrderStatus(o2.ID, "on-hold")
	require.True(t, ok)
	assert.Equal(t, store.OrderStatus("on-hold"), updated.Status)

	_, ok = s.UpdateOrderStatus(404, store.OrderStatusFailed)
	assert.False(t, ok)

	prod, _ := s.GetProduct(p.ID)
	assert.Equal(t, 2, prod.SalesCount)
}

func TestCreateOrder_OwnProduct(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})

	s.CreateOrder(store.NewOrder{UserID: seller.ID, ProductID: p.ID})
	assert.Empty(t, s.Snapshot().Notifications)
}

func TestCreateReview_Upsert(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	buyer := mustUser(t, s, "buyer")
	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})

	first := s.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: p.ID, Rating: 3, Comment: "ok"})
	second := s.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: p.ID, Rating: 5, Comment: "great"})

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)
	assert.Equal(t, "great", second.Comment)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	reviews := s.GetProductReviews(p.ID)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)

	notes := s.GetUserNotifications(seller.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, store.NotificationReview, notes[0].Type)
	assert.Equal(t, p.ID, notes[0].ResourceID)
	assert.Nil(t, notes[0].Post)
}

func TestGetProductWithReviews(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	a := mustUser(t, s, "a")
	b := mustUser(t, s, "b")
	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})

	s.CreateReview(store.NewReview{UserID: a.ID, ProductID: p.ID, Rating: 4})
	s.CreateReview(store.NewReview{UserID: b.ID, ProductID: p.ID, Rating: 2})
	s.CreateReview(store.NewReview{UserID: 404, ProductID: p.ID, Rating: 3})

	view, ok := s.GetProductWithReviews(p.ID)
	require.True(t, ok)
	assert.Equal(t, "seller", view.Seller.Username)
	require.Len(t, view.Reviews, 2)
	assert.Equal(t, "b", view.Reviews[0].User.Username)
	assert.Equal(t, "a", view.Reviews[1].User.Username)
	assert.InDelta(t, 3.0, view.AverageRating, 1e-9)

	orphan := mustProduct(t, s, store.NewProduct{SellerID: 404})
	_, ok = s.GetProductWithReviews(orphan.ID)
	assert.False(t, ok)

	bare := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})
	view, ok = s.GetProductWithReviews(bare.ID)
	require.True(t, ok)
	assert.Empty(t, view.Reviews)
	assert.Zero(t, view.AverageRating)
}

func TestDeleteReview(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	buyer := mustUser(t, s, "buyer")
	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID})

	r := s.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: p.ID, Rating: 1})
	require.True(t, s.DeleteReview(r.ID))
	assert.False(t, s.DeleteReview(r.ID))

	again := s.CreateReview(store.NewReview{UserID: buyer.ID, ProductID: p.ID, Rating: 5})
	assert.Greater(t, again.ID, r.ID)
	assert.Len(t, s.GetUserNotifications(seller.ID), 2)
}

func TestCreateProduct_CountsOrdersRecordedBeforeIt(t *testing.T) {
	s := newTestStore(t)
	seller := mustUser(t, s, "seller")
	buyer := mustUser(t, s, "buyer")

	// Product 1 has not been issued yet.
	s.CreateOrder(store.NewOrder{UserID: buyer.ID, ProductID: 1, PaymentReference: "pi_early", Amount: decimal.NewFromInt(5)})

	p := mustProduct(t, s, store.NewProduct{SellerID: seller.ID, Price: decimal.NewFromInt(5)})
	require.Equal(t, int64(1), p.ID)
	assert.Equal(t, 1, p.SalesCount)
	require.NoError(t, s.CheckConsistency())
}
