package codec

import (
	"bytes"
	"encoding/json"
)

// JSON is the encoding/json codec. HTML characters are written as is, so cached
// markup fragments stay byte-identical to what the caller stored.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
