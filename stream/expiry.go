package stream

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// PointerClearer drops the archive's latest pointer if it names snapshotID.
type PointerClearer interface {
	ClearLatest(ctx context.Context, snapshotID string) (bool, error)
}

// ExpiryHandler processes the archive table's DynamoDB stream.
type ExpiryHandler struct {
	archive PointerClearer
	logger  *zap.Logger
}

// NewExpiryHandler creates a new expiry handler.
func NewExpiryHandler(archive PointerClearer, logger *zap.Logger) *ExpiryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiryHandler{
		archive: archive,
		logger:  logger,
	}
}

// HandleSnapshotExpiry clears the latest pointer when the sequences item of
// the snapshot it names is removed, whether by TTL or by hand. Without its
// sequences item a snapshot can no longer be imported.
// This function is designed to be used as an AWS Lambda handler.
func (h *ExpiryHandler) HandleSnapshotExpiry(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				zap.String("eventID", record.EventID),
				zap.Error(err),
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

func (h *ExpiryHandler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}
	if getStringAttr(record.Change.OldImage, "entity_ref") != "sequences" {
		return nil
	}

	snapshotID := getStringAttr(record.Change.OldImage, "snapshot_id")
	if snapshotID == "" {
		return nil
	}

	cleared, err := h.archive.ClearLatest(ctx, snapshotID)
	if err != nil {
		return fmt.Errorf("clear latest pointer: %w", err)
	}
	h.logger.Info("snapshot expired",
		zap.String("snapshotID", snapshotID),
		zap.Int64("ttl", getNumberAttr(record.Change.OldImage, "ttl")),
		zap.Bool("pointerCleared", cleared),
	)
	return nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}
