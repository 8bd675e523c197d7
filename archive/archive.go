// Package archive persists store snapshots to a single DynamoDB table.
//
// Every snapshot is one partition keyed by a random snapshot id. Each row of
// the snapshot is one item whose sort key is its entity ref ("user#1",
// "post#7"); one extra "sequences" item carries the id sequences and the
// capture time. A pointer item in the "latest" partition names the most
// recent export. All items share a TTL so DynamoDB expires old snapshots.
package archive

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jacentio/vitrine/internal/index"
	"github.com/jacentio/vitrine/store"
)

const (
	pointerPartition = "latest"
	pointerRef       = "pointer"
	sequencesRef     = "sequences"

	// batchSize is the BatchWriteItem request limit.
	batchSize = 25
)

var (
	// ErrNoSnapshot is returned when the requested snapshot, or the latest
	// pointer, does not exist or has expired.
	ErrNoSnapshot = errors.New("vitrine: no snapshot in archive")

	// ErrCorruptRecord is returned when an archived item cannot be decoded.
	ErrCorruptRecord = errors.New("vitrine: corrupt archive record")

	// ErrUnprocessedItems is returned when DynamoDB keeps rejecting part of a
	// batch after every retry.
	ErrUnprocessedItems = errors.New("vitrine: unprocessed batch items")
)

// API is the subset of the DynamoDB client used by the archive.
type API interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Pointer describes the latest exported snapshot.
type Pointer struct {
	SnapshotID string
	TakenAt    time.Time
	Rows       int
}

// Archive reads and writes snapshots.
type Archive struct {
	client API
	config Config
	logger *zap.Logger
}

// New creates a new Archive instance.
func New(client API, config Config) *Archive {
	config.validate()
	return &Archive{
		client: client,
		config: config,
		logger: config.Logger,
	}
}

// Table returns the table name in use.
func (a *Archive) Table() string {
	return a.config.Table
}

// Export writes snap under a new snapshot id and moves the latest pointer to
// it, unless the pointer already names a newer snapshot.
func (a *Archive) Export(ctx context.Context, snap store.Snapshot) (string, error) {
	id := uuid.NewString()
	ttl := expiresAt(a.config.Now(), a.config.Retention)

	items, err := encode(id, snap, ttl)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))
		if err := a.writeBatch(ctx, items[start:end]); err != nil {
			return "", fmt.Errorf("export snapshot %s: %w", id, err)
		}
	}

	if err := a.movePointer(ctx, id, snap, ttl); err != nil {
		return "", err
	}

	a.logger.Info("snapshot exported",
		zap.String("snapshotID", id),
		zap.Int("rows", snap.Len()),
		zap.Int("items", len(items)),
	)
	return id, nil
}

func (a *Archive) movePointer(ctx context.Context, id string, snap store.Snapshot, ttl int64) error {
	rec := pointerRecord{
		SnapshotID:   pointerPartition,
		EntityRef:    pointerRef,
		LatestID:     id,
		TakenAt:      snap.TakenAt,
		TakenAtNanos: snap.TakenAt.UnixNano(),
		Rows:         snap.Len(),
		TTL:          ttl,
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("encode pointer: %w", err)
	}

	_, err = a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(a.config.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#taken) OR #taken <= :taken"),
		ExpressionAttributeNames: map[string]string{
			"#taken": "taken_at_nanos",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":taken": &types.AttributeValueMemberN{Value: strconv.FormatInt(rec.TakenAtNanos, 10)},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			a.logger.Info("latest pointer names a newer snapshot, leaving it",
				zap.String("snapshotID", id),
			)
			return nil
		}
		return fmt.Errorf("move latest pointer: %w", err)
	}
	return nil
}

// Latest returns the pointer to the most recent export.
// It returns ErrNoSnapshot when there is none or it has expired.
func (a *Archive) Latest(ctx context.Context) (Pointer, error) {
	out, err := a.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(a.config.Table),
		Key: map[string]types.AttributeValue{
			"snapshot_id": &types.AttributeValueMemberS{Value: pointerPartition},
			"entity_ref":  &types.AttributeValueMemberS{Value: pointerRef},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Pointer{}, fmt.Errorf("get latest pointer: %w", err)
	}
	if out.Item == nil || expired(out.Item, a.config.Now()) {
		return Pointer{}, ErrNoSnapshot
	}

	var rec pointerRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Pointer{}, fmt.Errorf("%w: latest pointer: %v", ErrCorruptRecord, err)
	}
	return Pointer{SnapshotID: rec.LatestID, TakenAt: rec.TakenAt, Rows: rec.Rows}, nil
}

// ClearLatest removes the latest pointer if it still names id. It reports
// whether the pointer was removed.
func (a *Archive) ClearLatest(ctx context.Context, id string) (bool, error) {
	_, err := a.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(a.config.Table),
		Key: map[string]types.AttributeValue{
			"snapshot_id": &types.AttributeValueMemberS{Value: pointerPartition},
			"entity_ref":  &types.AttributeValueMemberS{Value: pointerRef},
		},
		ConditionExpression: aws.String("#latest = :id"),
		ExpressionAttributeNames: map[string]string{
			"#latest": "latest_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("clear latest pointer: %w", err)
	}
	a.logger.Info("latest pointer cleared", zap.String("snapshotID", id))
	return true, nil
}

// Import reads the snapshot stored under id.
// It returns ErrNoSnapshot when the snapshot does not exist or has expired.
func (a *Archive) Import(ctx context.Context, id string) (store.Snapshot, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(a.config.Table),
		KeyConditionExpression: aws.String("#sid = :sid"),
		FilterExpression:       aws.String(ttlFilterExpr()),
		ExpressionAttributeNames: mergeExprNames(
			map[string]string{"#sid": "snapshot_id"},
			ttlFilterNames(),
		),
		ExpressionAttributeValues: mergeExprValues(
			map[string]types.AttributeValue{":sid": &types.AttributeValueMemberS{Value: id}},
			ttlFilterValues(a.config.Now()),
		),
		ConsistentRead: aws.Bool(true),
	}

	var (
		snap  store.Snapshot
		found bool
		items int
	)
	paginator := dynamodb.NewQueryPaginator(a.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("query snapshot %s: %w", id, err)
		}
		for _, item := range page.Items {
			isSequences, err := decodeItem(item, &snap)
			if err != nil {
				return store.Snapshot{}, err
			}
			found = found || isSequences
			items++
		}
	}
	if !found {
		return store.Snapshot{}, fmt.Errorf("%w: %s", ErrNoSnapshot, id)
	}
	sortRows(&snap)

	a.logger.Info("snapshot imported",
		zap.String("snapshotID", id),
		zap.Int("rows", snap.Len()),
		zap.Int("items", items),
	)
	return snap, nil
}

// ImportLatest reads the snapshot named by the latest pointer and returns it
// with its id.
func (a *Archive) ImportLatest(ctx context.Context) (store.Snapshot, string, error) {
	p, err := a.Latest(ctx)
	if err != nil {
		return store.Snapshot{}, "", err
	}
	snap, err := a.Import(ctx, p.SnapshotID)
	if err != nil {
		return store.Snapshot{}, "", err
	}
	return snap, p.SnapshotID, nil
}

// encode turns snap into one item per row plus the sequences item.
func encode(id string, snap store.Snapshot, ttl int64) ([]map[string]types.AttributeValue, error) {
	hdr := func(kind store.Kind, rowID int64) header {
		return header{SnapshotID: id, EntityRef: index.Ref(string(kind), rowID), Kind: string(kind), TTL: ttl}
	}

	records := make([]any, 0, snap.Len()+1)
	for _, u := range snap.Users {
		records = append(records, newUserRecord(hdr(store.KindUser, u.ID), u))
	}
	for _, p := range snap.Posts {
		records = append(records, newPostRecord(hdr(store.KindPost, p.ID), p))
	}
	for _, l := range snap.Likes {
		records = append(records, newLikeRecord(hdr(store.KindLike, l.ID), l))
	}
	for _, c := range snap.Comments {
		records = append(records, newCommentRecord(hdr(store.KindComment, c.ID), c))
	}
	for _, f := range snap.Follows {
		records = append(records, newFollowRecord(hdr(store.KindFollow, f.ID), f))
	}
	for _, n := range snap.Notifications {
		records = append(records, newNotificationRecord(hdr(store.KindNotification, n.ID), n))
	}
	for _, p := range snap.Products {
		records = append(records, newProductRecord(hdr(store.KindProduct, p.ID), p))
	}
	for _, o := range snap.Orders {
		records = append(records, newOrderRecord(hdr(store.KindOrder, o.ID), o))
	}
	for _, r := range snap.Reviews {
		records = append(records, newReviewRecord(hdr(store.KindReview, r.ID), r))
	}
	seq := snap.Sequences
	records = append(records, sequencesRecord{
		header:        header{SnapshotID: id, EntityRef: sequencesRef, Kind: sequencesRef, TTL: ttl},
		TakenAt:       snap.TakenAt,
		Users:         seq.Users,
		Posts:         seq.Posts,
		Likes:         seq.Likes,
		Comments:      seq.Comments,
		Follows:       seq.Follows,
		Notifications: seq.Notifications,
		Products:      seq.Products,
		Orders:        seq.Orders,
		Reviews:       seq.Reviews,
	})

	items := make([]map[string]types.AttributeValue, 0, len(records))
	for _, rec := range records {
		item, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeItem appends the row held by item to snap. It reports whether the
// item was the sequences item.
func decodeItem(item map[string]types.AttributeValue, snap *store.Snapshot) (bool, error) {
	var h header
	if err := unmarshal(item, &h); err != nil {
		return false, err
	}

	if h.EntityRef == sequencesRef {
		var r sequencesRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.TakenAt = r.TakenAt
		snap.Sequences = store.Sequences{
			Users:         r.Users,
			Posts:         r.Posts,
			Likes:         r.Likes,
			Comments:      r.Comments,
			Follows:       r.Follows,
			Notifications: r.Notifications,
			Products:      r.Products,
			Orders:        r.Orders,
			Reviews:       r.Reviews,
		}
		return true, nil
	}

	kind, _, err := index.ParseRef(h.EntityRef)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	switch store.Kind(kind) {
	case store.KindUser:
		var r userRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Users = append(snap.Users, r.entity())
	case store.KindPost:
		var r postRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Posts = append(snap.Posts, r.entity())
	case store.KindLike:
		var r likeRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Likes = append(snap.Likes, r.entity())
	case store.KindComment:
		var r commentRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Comments = append(snap.Comments, r.entity())
	case store.KindFollow:
		var r followRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Follows = append(snap.Follows, r.entity())
	case store.KindNotification:
		var r notificationRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Notifications = append(snap.Notifications, r.entity())
	case store.KindProduct:
		var r productRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		p, err := r.entity()
		if err != nil {
			return false, err
		}
		snap.Products = append(snap.Products, p)
	case store.KindOrder:
		var r orderRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		o, err := r.entity()
		if err != nil {
			return false, err
		}
		snap.Orders = append(snap.Orders, o)
	case store.KindReview:
		var r reviewRecord
		if err := unmarshal(item, &r); err != nil {
			return false, err
		}
		snap.Reviews = append(snap.Reviews, r.entity())
	default:
		return false, fmt.Errorf("%w: unknown kind in %q", ErrCorruptRecord, h.EntityRef)
	}
	return false, nil
}

func unmarshal(item map[string]types.AttributeValue, out any) error {
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}

// sortRows restores id order. Query returns rows in sort key order, where
// "post#10" comes before "post#2".
func sortRows(snap *store.Snapshot) {
	byID(snap.Users, func(u store.User) int64 { return u.ID })
	byID(snap.Posts, func(p store.Post) int64 { return p.ID })
	byID(snap.Likes, func(l store.Like) int64 { return l.ID })
	byID(snap.Comments, func(c store.Comment) int64 { return c.ID })
	byID(snap.Follows, func(f store.Follow) int64 { return f.ID })
	byID(snap.Notifications, func(n store.Notification) int64 { return n.ID })
	byID(snap.Products, func(p store.Product) int64 { return p.ID })
	byID(snap.Orders, func(o store.Order) int64 { return o.ID })
	byID(snap.Reviews, func(r store.Review) int64 { return r.ID })
}

func byID[T any](rows []T, id func(T) int64) {
	slices.SortFunc(rows, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
}
