package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// writeBatch puts up to batchSize items, resubmitting whatever DynamoDB
// reports as unprocessed with a linear backoff.
func (a *Archive) writeBatch(ctx context.Context, items []map[string]types.AttributeValue) error {
	reqs := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	pending := map[string][]types.WriteRequest{a.config.Table: reqs}

	for attempt := 0; ; attempt++ {
		out, err := a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("batch write: %w", err)
		}

		left := 0
		for _, reqs := range out.UnprocessedItems {
			left += len(reqs)
		}
		if left == 0 {
			return nil
		}
		if attempt >= a.config.MaxRetries {
			return fmt.Errorf("%w: %d left after %d retries", ErrUnprocessedItems, left, attempt)
		}

		a.logger.Debug("retrying unprocessed items",
			zap.Int("items", left),
			zap.Int("attempt", attempt+1),
		)
		pending = out.UnprocessedItems
		if err := sleep(ctx, a.config.RetryDelay*time.Duration(attempt+1)); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
