package codec

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestMarshal_Nil(t *testing.T) {
	if _, err := Marshal(nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestUnmarshal_RejectsMissingInput(t *testing.T) {
	if err := Unmarshal([]byte{1, 2, 3}, nil); err == nil {
		t.Fatalf("expected error for nil message")
	}
	var m structpb.Struct
	if err := Unmarshal(nil, &m); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestDecodeFields_Garbage(t *testing.T) {
	if _, err := DecodeFields(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := DecodeFields([]byte{0xff, 0xfe, 0xfd}); err == nil {
		t.Fatalf("expected error for bad data")
	}
}

func TestEncodeFields_UnsupportedValue(t *testing.T) {
	if _, err := EncodeFields(map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatalf("expected error for channel value")
	}
	if _, err := EncodeFields(map[string]any{"bad": "\xff"}); err == nil {
		t.Fatalf("expected error for invalid utf-8")
	}
}
