package adapter

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/rony4d/go-bridge-relay/utils/cser"
)

const (
	// MaxPayloadSize bounds one round payload, raw or decompressed.
	MaxPayloadSize = 4 << 20
	maxRoundLen    = 256
)

// ErrMalformedPayload is returned for stored data that is not a frame for
// the requested session kind and round.
var ErrMalformedPayload = errors.New("malformed round payload")

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic(err)
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayloadSize))
	if err != nil {
		panic(err)
	}
}

// Encode frames a round payload for SharedDB. The frame binds the session
// kind and the round name, and carries the body zstd-compressed whenever
// that is shorter.
func Encode(isKeygen bool, round string, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload of %d bytes exceeds %d", len(payload), MaxPayloadSize)
	}
	if len(round) > maxRoundLen {
		return nil, fmt.Errorf("round name of %d bytes exceeds %d", len(round), maxRoundLen)
	}
	body := payload
	compressed := false
	if packed := encoder.EncodeAll(payload, nil); len(packed) < len(payload) {
		body = packed
		compressed = true
	}
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		w.Bool(isKeygen)
		w.String(round)
		w.Bool(compressed)
		w.SliceBytes(body)
		return nil
	})
}

// Decode reverses Encode.
func Decode(isKeygen bool, round string, data []byte) ([]byte, error) {
	var (
		kind       bool
		stored     string
		compressed bool
		body       []byte
	)
	err := cser.UnmarshalBinaryAdapter(data, func(r *cser.Reader) error {
		kind = r.Bool()
		stored = r.String(maxRoundLen)
		compressed = r.Bool()
		body = r.SliceBytes(MaxPayloadSize)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if kind != isKeygen || stored != round {
		return nil, fmt.Errorf("%w: frame is for round %q (keygen=%v)", ErrMalformedPayload, stored, kind)
	}
	if !compressed {
		return body, nil
	}
	payload, err := decoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: decompressed to %d bytes", ErrMalformedPayload, len(payload))
	}
	return payload, nil
}
