package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func Marshal(m proto.Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil message")
	}
	b, err := proto.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("proto marshal: %w", err)
	}
	return b, nil
}

func Unmarshal(b []byte, m proto.Message) error {
	if m == nil {
		return fmt.Errorf("nil message")
	}
	if len(b) == 0 {
		return fmt.Errorf("empty payload")
	}
	if err := proto.Unmarshal(b, m); err != nil {
		return fmt.Errorf("proto unmarshal: %w", err)
	}
	return nil
}

// EncodeFields encodes a flat field map as a protobuf Struct. Values must be
// representable by structpb (strings, bools, numbers, nil, nested maps and
// slices of those).
func EncodeFields(fields map[string]any) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("struct fields: %w", err)
	}
	return Marshal(st)
}

// DecodeFields is the inverse of EncodeFields. Numbers come back as float64.
func DecodeFields(b []byte) (map[string]any, error) {
	var st structpb.Struct
	if err := Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return st.AsMap(), nil
}
