package ipc

import (
	"testing"
)

func TestDecodeUnknownResultTag(t *testing.T) {
	_, err := decodeResponse([]byte(`{"version":1,"result":"maybe"}`))
	if err == nil {
		t.Fatal("unknown result tag must not decode")
	}
}

func TestDecodeSelectionMissingSourceID(t *testing.T) {
	_, err := decodeResponse([]byte(`{"version":1,"result":"selection","source_type":"monitor"}`))
	if err == nil {
		t.Fatal("selection without source_id must not decode")
	}
}

func TestDecodeWindowSelection(t *testing.T) {
	resp, err := decodeResponse([]byte(`{"version":1,"result":"selection","source_type":"window","source_id":"win-7"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Kind != KindSelection || resp.Selection.SourceType != "window" || resp.Selection.SourceID != "win-7" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	resp, err := decodeResponse([]byte(`{"version":1,"result":"none","future_field":true}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Kind != KindNoSelection {
		t.Fatalf("kind = %d, want %d", resp.Kind, KindNoSelection)
	}
}
