package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

// --- getStringAttr Tests ---

func TestGetStringAttr_ExistingString(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"snapshot_id": events.NewStringAttribute("0b6f3a4e"),
	}

	result := getStringAttr(image, "snapshot_id")
	if result != "0b6f3a4e" {
		t.Errorf("expected '0b6f3a4e', got %q", result)
	}
}

func TestGetStringAttr_MissingKey(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"other": events.NewStringAttribute("value"),
	}

	result := getStringAttr(image, "snapshot_id")
	if result != "" {
		t.Errorf("expected empty string for missing key, got %q", result)
	}
}

func TestGetStringAttr_NilImage(t *testing.T) {
	var image map[string]events.DynamoDBAttributeValue

	result := getStringAttr(image, "snapshot_id")
	if result != "" {
		t.Errorf("expected empty string for nil image, got %q", result)
	}
}

func TestGetStringAttr_NumberAttribute(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"snapshot_id": events.NewNumberAttribute("12"),
	}

	result := getStringAttr(image, "snapshot_id")
	if result != "" {
		t.Errorf("expected empty string for number attribute, got %q", result)
	}
}

func TestGetStringAttr_EntityRef(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"entity_ref": events.NewStringAttribute("notification#17"),
	}

	result := getStringAttr(image, "entity_ref")
	if result != "notification#17" {
		t.Errorf("expected 'notification#17', got %q", result)
	}
}

// --- getNumberAttr Tests ---

func TestGetNumberAttr(t *testing.T) {
	tests := []struct {
		name     string
		image    map[string]events.DynamoDBAttributeValue
		expected int64
	}{
		{"valid number", map[string]events.DynamoDBAttributeValue{"ttl": events.NewNumberAttribute("1767225600")}, 1767225600},
		{"zero", map[string]events.DynamoDBAttributeValue{"ttl": events.NewNumberAttribute("0")}, 0},
		{"negative", map[string]events.DynamoDBAttributeValue{"ttl": events.NewNumberAttribute("-5")}, -5},
		{"missing key", map[string]events.DynamoDBAttributeValue{}, 0},
		{"nil image", nil, 0},
		{"string attribute", map[string]events.DynamoDBAttributeValue{"ttl": events.NewStringAttribute("12345")}, 0},
		{"not an integer", map[string]events.DynamoDBAttributeValue{"ttl": events.NewNumberAttribute("1.5")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := getNumberAttr(tt.image, "ttl"); result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

// --- metadataID Tests ---

func TestMetadataID(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]string
		wantID int64
		wantOK bool
	}{
		{"present", map[string]string{"productId": "12"}, 12, true},
		{"missing", map[string]string{}, 0, false},
		{"nil metadata", nil, 0, false},
		{"not a number", map[string]string{"productId": "twelve"}, 0, false},
		{"zero", map[string]string{"productId": "0"}, 0, false},
		{"negative", map[string]string{"productId": "-3"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := metadataID(tt.raw, "productId")
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.wantID, tt.wantOK, id, ok)
			}
		})
	}
}
