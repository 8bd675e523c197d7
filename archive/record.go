package archive

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jacentio/vitrine/store"
)

// header is shared by every item in a snapshot partition.
type header struct {
	SnapshotID string `dynamodbav:"snapshot_id"`
	EntityRef  string `dynamodbav:"entity_ref"`
	Kind       string `dynamodbav:"kind"`
	TTL        int64  `dynamodbav:"ttl,omitempty"`
}

type sequencesRecord struct {
	header
	TakenAt       time.Time `dynamodbav:"taken_at"`
	Users         int64     `dynamodbav:"users"`
	Posts         int64     `dynamodbav:"posts"`
	Likes         int64     `dynamodbav:"likes"`
	Comments      int64     `dynamodbav:"comments"`
	Follows       int64     `dynamodbav:"follows"`
	Notifications int64     `dynamodbav:"notifications"`
	Products      int64     `dynamodbav:"products"`
	Orders        int64     `dynamodbav:"orders"`
	Reviews       int64     `dynamodbav:"reviews"`
}

// pointerRecord names the most recently exported snapshot.
type pointerRecord struct {
	SnapshotID   string    `dynamodbav:"snapshot_id"`
	EntityRef    string    `dynamodbav:"entity_ref"`
	LatestID     string    `dynamodbav:"latest_id"`
	TakenAt      time.Time `dynamodbav:"taken_at"`
	TakenAtNanos int64     `dynamodbav:"taken_at_nanos"`
	Rows         int       `dynamodbav:"rows"`
	TTL          int64     `dynamodbav:"ttl,omitempty"`
}

type userRecord struct {
	header
	ID               int64  `dynamodbav:"id"`
	Username         string `dynamodbav:"username"`
	Password         string `dynamodbav:"password,omitempty"`
	Name             string `dynamodbav:"name,omitempty"`
	Bio              string `dynamodbav:"bio,omitempty"`
	Location         string `dynamodbav:"location,omitempty"`
	Website          string `dynamodbav:"website,omitempty"`
	Avatar           string `dynamodbav:"avatar,omitempty"`
	FollowersCount   int    `dynamodbav:"followers_count"`
	FollowingCount   int    `dynamodbav:"following_count"`
	PostsCount       int    `dynamodbav:"posts_count"`
	IsSeller         bool   `dynamodbav:"is_seller"`
	StripeCustomerID string `dynamodbav:"stripe_customer_id,omitempty"`
	StripeAccountID  string `dynamodbav:"stripe_account_id,omitempty"`
}

type postRecord struct {
	header
	ID            int64     `dynamodbav:"id"`
	UserID        int64     `dynamodbav:"user_id"`
	Caption       string    `dynamodbav:"caption,omitempty"`
	ImageURL      string    `dynamodbav:"image_url,omitempty"`
	LikesCount    int       `dynamodbav:"likes_count"`
	CommentsCount int       `dynamodbav:"comments_count"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
}

type likeRecord struct {
	header
	ID        int64     `dynamodbav:"id"`
	UserID    int64     `dynamodbav:"user_id"`
	PostID    int64     `dynamodbav:"post_id"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

type commentRecord struct {
	header
	ID        int64     `dynamodbav:"id"`
	UserID    int64     `dynamodbav:"user_id"`
	PostID    int64     `dynamodbav:"post_id"`
	Content   string    `dynamodbav:"content,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

type followRecord struct {
	header
	ID          int64     `dynamodbav:"id"`
	FollowerID  int64     `dynamodbav:"follower_id"`
	FollowingID int64     `dynamodbav:"following_id"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
}

type notificationRecord struct {
	header
	ID                int64     `dynamodbav:"id"`
	UserID            int64     `dynamodbav:"user_id"`
	TriggeredByUserID int64     `dynamodbav:"triggered_by_user_id,omitempty"`
	Type              string    `dynamodbav:"type"`
	ResourceID        int64     `dynamodbav:"resource_id,omitempty"`
	Read              bool      `dynamodbav:"read"`
	CreatedAt         time.Time `dynamodbav:"created_at"`
}

// Money is kept as a decimal string so no precision is lost to float64.
type productRecord struct {
	header
	ID          int64     `dynamodbav:"id"`
	SellerID    int64     `dynamodbav:"seller_id"`
	Title       string    `dynamodbav:"title"`
	Description string    `dynamodbav:"description,omitempty"`
	Price       string    `dynamodbav:"price"`
	ImageURL    string    `dynamodbav:"image_url,omitempty"`
	Type        string    `dynamodbav:"type"`
	Category    string    `dynamodbav:"category,omitempty"`
	Featured    bool      `dynamodbav:"featured"`
	SalesCount  int       `dynamodbav:"sales_count"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

type orderRecord struct {
	header
	ID               int64     `dynamodbav:"id"`
	UserID           int64     `dynamodbav:"user_id"`
	ProductID        int64     `dynamodbav:"product_id"`
	PaymentReference string    `dynamodbav:"payment_reference,omitempty"`
	Amount           string    `dynamodbav:"amount"`
	Status           string    `dynamodbav:"status"`
	CreatedAt        time.Time `dynamodbav:"created_at"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
}

type reviewRecord struct {
	header
	ID        int64     `dynamodbav:"id"`
	UserID    int64     `dynamodbav:"user_id"`
	ProductID int64     `dynamodbav:"product_id"`
	Rating    int       `dynamodbav:"rating"`
	Comment   string    `dynamodbav:"comment,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func newUserRecord(h header, u store.User) userRecord {
	return userRecord{
		header: h, ID: u.ID, Username: u.Username, Password: u.Password, Name: u.Name,
		Bio: u.Bio, Location: u.Location, Website: u.Website, Avatar: u.Avatar,
		FollowersCount: u.FollowersCount, FollowingCount: u.FollowingCount, PostsCount: u.PostsCount,
		IsSeller: u.IsSeller, StripeCustomerID: u.StripeCustomerID, StripeAccountID: u.StripeAccountID,
	}
}

func (r userRecord) entity() store.User {
	return store.User{
		ID: r.ID, Username: r.Username, Password: r.Password, Name: r.Name,
		Bio: r.Bio, Location: r.Location, Website: r.Website, Avatar: r.Avatar,
		FollowersCount: r.FollowersCount, FollowingCount: r.FollowingCount, PostsCount: r.PostsCount,
		IsSeller: r.IsSeller, StripeCustomerID: r.StripeCustomerID, StripeAccountID: r.StripeAccountID,
	}
}

func newPostRecord(h header, p store.Post) postRecord {
	return postRecord{
		header: h, ID: p.ID, UserID: p.UserID, Caption: p.Caption, ImageURL: p.ImageURL,
		LikesCount: p.LikesCount, CommentsCount: p.CommentsCount, CreatedAt: p.CreatedAt,
	}
}

func (r postRecord) entity() store.Post {
	return store.Post{
		ID: r.ID, UserID: r.UserID, Caption: r.Caption, ImageURL: r.ImageURL,
		LikesCount: r.LikesCount, CommentsCount: r.CommentsCount, CreatedAt: r.CreatedAt,
	}
}

func newLikeRecord(h header, l store.Like) likeRecord {
	return likeRecord{header: h, ID: l.ID, UserID: l.UserID, PostID: l.PostID, CreatedAt: l.CreatedAt}
}

func (r likeRecord) entity() store.Like {
	return store.Like{ID: r.ID, UserID: r.UserID, PostID: r.PostID, CreatedAt: r.CreatedAt}
}

func newCommentRecord(h header, c store.Comment) commentRecord {
	return commentRecord{header: h, ID: c.ID, UserID: c.UserID, PostID: c.PostID, Content: c.Content, CreatedAt: c.CreatedAt}
}

func (r commentRecord) entity() store.Comment {
	return store.Comment{ID: r.ID, UserID: r.UserID, PostID: r.PostID, Content: r.Content, CreatedAt: r.CreatedAt}
}

func newFollowRecord(h header, f store.Follow) followRecord {
	return followRecord{header: h, ID: f.ID, FollowerID: f.FollowerID, FollowingID: f.FollowingID, CreatedAt: f.CreatedAt}
}

func (r followRecord) entity() store.Follow {
	return store.Follow{ID: r.ID, FollowerID: r.FollowerID, FollowingID: r.FollowingID, CreatedAt: r.CreatedAt}
}

func newNotificationRecord(h header, n store.Notification) notificationRecord {
	return notificationRecord{
		header: h, ID: n.ID, UserID: n.UserID, TriggeredByUserID: n.TriggeredByUserID,
		Type: string(n.Type), ResourceID: n.ResourceID, Read: n.Read, CreatedAt: n.CreatedAt,
	}
}

func (r notificationRecord) entity() store.Notification {
	return store.Notification{
		ID: r.ID, UserID: r.UserID, TriggeredByUserID: r.TriggeredByUserID,
		Type: store.NotificationType(r.Type), ResourceID: r.ResourceID, Read: r.Read, CreatedAt: r.CreatedAt,
	}
}

func newProductRecord(h header, p store.Product) productRecord {
	return productRecord{
		header: h, ID: p.ID, SellerID: p.SellerID, Title: p.Title, Description: p.Description,
		Price: p.Price.String(), ImageURL: p.ImageURL, Type: string(p.Type), Category: p.Category,
		Featured: p.Featured, SalesCount: p.SalesCount, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (r productRecord) entity() (store.Product, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return store.Product{}, fmt.Errorf("%w: %s price %q: %v", ErrCorruptRecord, r.EntityRef, r.Price, err)
	}
	return store.Product{
		ID: r.ID, SellerID: r.SellerID, Title: r.Title, Description: r.Description,
		Price: price, ImageURL: r.ImageURL, Type: store.ProductType(r.Type), Category: r.Category,
		Featured: r.Featured, SalesCount: r.SalesCount, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

func newOrderRecord(h header, o store.Order) orderRecord {
	return orderRecord{
		header: h, ID: o.ID, UserID: o.UserID, ProductID: o.ProductID, PaymentReference: o.PaymentReference,
		Amount: o.Amount.String(), Status: string(o.Status), CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}
}

func (r orderRecord) entity() (store.Order, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return store.Order{}, fmt.Errorf("%w: %s amount %q: %v", ErrCorruptRecord, r.EntityRef, r.Amount, err)
	}
	return store.Order{
		ID: r.ID, UserID: r.UserID, ProductID: r.ProductID, PaymentReference: r.PaymentReference,
		Amount: amount, Status: store.OrderStatus(r.Status), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

func newReviewRecord(h header, r store.Review) reviewRecord {
	return reviewRecord{
		header: h, ID: r.ID, UserID: r.UserID, ProductID: r.ProductID, Rating: r.Rating,
		Comment: r.Comment, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (r reviewRecord) entity() store.Review {
	return store.Review{
		ID: r.ID, UserID: r.UserID, ProductID: r.ProductID, Rating: r.Rating,
		Comment: r.Comment, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}
