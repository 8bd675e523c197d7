package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind names an entity collection. It is the prefix of entity references
// (e.g., "post#12") and the key of cascade relationships.
type Kind string

const (
	KindUser         Kind = "user"
	KindPost         Kind = "post"
	KindLike         Kind = "like"
	KindComment      Kind = "comment"
	KindFollow       Kind = "follow"
	KindNotification Kind = "notification"
	KindProduct      Kind = "product"
	KindOrder        Kind = "order"
	KindReview       Kind = "review"
)

// Kinds lists every collection in dependency order (parents before children).
var Kinds = []Kind{
	KindUser, KindPost, KindLike, KindComment, KindFollow,
	KindNotification, KindProduct, KindOrder, KindReview,
}

// NotificationType is the event that produced a Notification.
type NotificationType string

const (
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationFollow   NotificationType = "follow"
	NotificationPurchase NotificationType = "purchase"
	NotificationSale     NotificationType = "sale"
	NotificationReview   NotificationType = "review"
)

// ProductType classifies a listing.
type ProductType string

const (
	ProductTypeCourse  ProductType = "course"
	ProductTypeProduct ProductType = "product"
	ProductTypeService ProductType = "service"
	ProductTypeEvent   ProductType = "event"
	ProductTypeOther   ProductType = "other"
)

// OrderStatus is the payment state of an Order. The store does not validate
// values passed to UpdateOrderStatus.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// User is a member of the community. The counters are derived and only the
// store changes them.
type User struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Password         string `json:"-"`
	Name             string `json:"name"`
	Bio              string `json:"bio,omitempty"`
	Location         string `json:"location,omitempty"`
	Website          string `json:"website,omitempty"`
	Avatar           string `json:"avatar,omitempty"`
	FollowersCount   int    `json:"followersCount"`
	FollowingCount   int    `json:"followingCount"`
	PostsCount       int    `json:"postsCount"`
	IsSeller         bool   `json:"isSeller"`
	StripeCustomerID string `json:"stripeCustomerId,omitempty"`
	StripeAccountID  string `json:"stripeAccountId,omitempty"`
}

// Post is an image shared by a user.
type Post struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Caption       string    `json:"caption,omitempty"`
	ImageURL      string    `json:"imageUrl"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Like records that a user liked a post. At most one exists per pair.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a text reply on a post.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow records that FollowerID follows FollowingID. At most one exists per pair.
type Follow struct {
	ID          int64     `json:"id"`
	FollowerID  int64     `json:"followerId"`
	FollowingID int64     `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notification tells UserID that TriggeredByUserID did something.
// A zero TriggeredByUserID or ResourceID means the field is absent.
type Notification struct {
	ID                int64            `json:"id"`
	UserID            int64            `json:"userId"`
	TriggeredByUserID int64            `json:"triggeredByUserId,omitempty"`
	Type              NotificationType `json:"type"`
	ResourceID        int64            `json:"resourceId,omitempty"`
	Read              bool             `json:"read"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// Product is a listing offered by a seller. SalesCount is derived from orders.
type Product struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"sellerId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Type        ProductType     `json:"type"`
	Category    string          `json:"category,omitempty"`
	Featured    bool            `json:"featured"`
	SalesCount  int             `json:"salesCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Order is a purchase of a product, keyed externally by PaymentReference.
type Order struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"userId"`
	ProductID        int64           `json:"productId"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Status           OrderStatus     `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Review is a rating left by a user on a product. At most one exists per pair.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- Inputs ---

// NewUser holds the fields supplied when creating a User.
type NewUser struct {
	Username         string
	Password         string
	Name             string
	Bio              string
	Location         string
	Website          string
	Avatar           string
	IsSeller         bool
	StripeCustomerID string
	StripeAccountID  string
}

// NewPost holds the fields supplied when creating a Post.
type NewPost struct {
	UserID   int64
	Caption  string
	ImageURL string
}

// NewComment holds the fields supplied when creating a Comment.
type NewComment struct {
	UserID  int64
	PostID  int64
	Content string
}

// NewNotification holds the fields supplied when creating a Notification.
type NewNotification struct {
	UserID            int64
	TriggeredByUserID int64
	Type              NotificationType
	ResourceID        int64
}

// NewProduct holds the fields supplied when creating a Product.
type NewProduct struct {
	SellerID    int64
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Type        ProductType
	Category    string
	Featured    bool
}

// NewOrder holds the fields supplied when creating an Order.
type NewOrder struct {
	UserID           int64
	ProductID        int64
	PaymentReference string
	Amount           decimal.Decimal
}

// NewReview holds the fields supplied when creating or updating a Review.
type NewReview struct {
	UserID    int64
	ProductID int64
	Rating    int
	Comment   string
}

// UserUpdate lists the user fields a caller may change. Nil fields are left as is.
type UserUpdate struct {
	Username *string
	Password *string
	Name     *string
	Bio      *string
	Location *string
	Website  *string
	Avatar   *string
}

// ProductUpdate lists the product fields a caller may change. Nil fields are left as is.
type ProductUpdate struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Type        *ProductType
	Category    *string
	Featured    *bool
}

// ProductFilter narrows GetAllProducts. Empty fields match everything.
type ProductFilter struct {
	Category string
	Type     ProductType
}

// --- Enriched views ---

// PostWithUser is a post with its author.
type PostWithUser struct {
	Post
	User User `json:"user"`
}

// NotificationWithUsers is a notification with its actor and, when set, its post.
type NotificationWithUsers struct {
	Notification
	TriggeredByUser User  `json:"triggeredByUser"`
	Post            *Post `json:"post,omitempty"`
}

// ProductWithSeller is a listing with its seller.
type ProductWithSeller struct {
	Product
	Seller User `json:"seller"`
}

// ReviewWithUser is a review with its author.
type ReviewWithUser struct {
	Review
	User User `json:"user"`
}

// ProductWithReviews is a listing with its seller, reviews and average rating.
type ProductWithReviews struct {
	Product
	Seller        User             `json:"seller"`
	Reviews       []ReviewWithUser `json:"reviews"`
	AverageRating float64          `json:"averageRating"`
}
