// Package stream provides AWS Lambda handlers that feed external events into
// the entity store and keep the snapshot archive tidy.
//
// [Handler] turns payment processor events delivered through EventBridge into
// orders and order status changes. [ExpiryHandler] consumes the archive
// table's DynamoDB stream and drops the latest pointer once the snapshot it
// names has expired.
package stream
