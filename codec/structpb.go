package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// StructPB stores dynamically typed values as a protobuf google.protobuf.Value.
// Accepted inputs are those structpb.NewValue accepts (nil, bool, numbers, string,
// []byte, map[string]any, []any). Numbers decode as float64; []byte decodes as its base64 string.
type StructPB struct{}

var _ Codec[any] = StructPB{}

func (StructPB) Encode(v any) ([]byte, error) {
	pv, err := structpb.NewValue(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pv)
}

func (StructPB) Decode(b []byte) (any, error) {
	var pv structpb.Value
	if err := proto.Unmarshal(b, &pv); err != nil {
		return nil, err
	}
	return pv.AsInterface(), nil
}
