package archive_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type item = map[string]types.AttributeValue

// fakeDynamo is an in-memory single-table stand-in for the DynamoDB client.
// It understands exactly the expressions the archive issues.
type fakeDynamo struct {
	mu sync.Mutex

	// partitions maps snapshot_id -> entity_ref -> item.
	partitions map[string]map[string]item

	// pageSize limits Query pages; 0 returns everything at once.
	pageSize int

	// unprocessedRounds makes that many BatchWriteItem calls hand back
	// their last request as unprocessed.
	unprocessedRounds int

	batchErr   error
	batchCalls int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{partitions: make(map[string]map[string]item)}
}

func str(it item, key string) string {
	if v, ok := it[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func num(it item, key string) (int64, bool) {
	v, ok := it[key].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v.Value, 10, 64)
	return n, err == nil
}

func (f *fakeDynamo) put(it item) {
	pk, sk := str(it, "snapshot_id"), str(it, "entity_ref")
	if f.partitions[pk] == nil {
		f.partitions[pk] = make(map[string]item)
	}
	f.partitions[pk][sk] = maps.Clone(it)
}

func (f *fakeDynamo) get(key item) (item, bool) {
	it, ok := f.partitions[str(key, "snapshot_id")][str(key, "entity_ref")]
	return it, ok
}

// itemCount returns the number of stored items in partition pk.
func (f *fakeDynamo) itemCount(pk string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.partitions[pk])
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}

	unprocessed := make(map[string][]types.WriteRequest)
	for table, reqs := range in.RequestItems {
		if len(reqs) > 25 {
			return nil, errors.New("too many items in batch")
		}
		if f.unprocessedRounds > 0 && len(reqs) > 0 {
			f.unprocessedRounds--
			unprocessed[table] = reqs[len(reqs)-1:]
			reqs = reqs[:len(reqs)-1]
		}
		for _, r := range reqs {
			f.put(r.PutRequest.Item)
		}
	}
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: unprocessed}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	it, ok := f.get(in.Key)
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: maps.Clone(it)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cond := aws.ToString(in.ConditionExpression); strings.Contains(cond, "#taken <= :taken") {
		if existing, ok := f.get(in.Item); ok {
			have, _ := num(existing, "taken_at_nanos")
			want, _ := num(in.ExpressionAttributeValues, ":taken")
			if have > want {
				return nil, &types.ConditionalCheckFailedException{Message: aws.String("newer pointer")}
			}
		}
	}
	f.put(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.get(in.Key)
	if aws.ToString(in.ConditionExpression) == "#latest = :id" {
		if !ok || str(existing, "latest_id") != str(in.ExpressionAttributeValues, ":id") {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("pointer moved")}
		}
	}
	delete(f.partitions[str(in.Key, "snapshot_id")], str(in.Key, "entity_ref"))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	partition := f.partitions[str(in.ExpressionAttributeValues, ":sid")]
	keys := slices.Sorted(maps.Keys(partition))

	start := 0
	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey, "entity_ref")
		start, _ = slices.BinarySearch(keys, after)
		start++
	}
	end := len(keys)
	if f.pageSize > 0 {
		end = min(start+f.pageSize, len(keys))
	}

	now, filtered := num(in.ExpressionAttributeValues, ":now")
	out := &dynamodb.QueryOutput{}
	for _, k := range keys[start:end] {
		it := partition[k]
		if ttl, ok := num(it, "ttl"); filtered && ok && ttl <= now {
			continue
		}
		out.Items = append(out.Items, maps.Clone(it))
	}
	if end < len(keys) {
		out.LastEvaluatedKey = item{
			"snapshot_id": in.ExpressionAttributeValues[":sid"],
			"entity_ref":  &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	out.Count = int32(len(out.Items))
	return out, nil
}
