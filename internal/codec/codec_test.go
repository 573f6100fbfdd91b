package codec_test

import (
	"bytes"
	"testing"

	"github.com/discochess/coach/internal/codec"
	"github.com/discochess/coach/internal/codec/codecs"
)

func TestEncodeDecode(t *testing.T) {
	profile := []byte(`{"username":"alice","games_analyzed":3,"avg_cpl":41.5}`)

	tests := []struct {
		name  string
		codec codec.Codec
	}{
		{"none", codecs.None()},
		{"gzip", codecs.Gzip()},
		{"zstd", codecs.Zstd()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(tc.codec, profile)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if tc.codec.Extension() != "" && bytes.Equal(encoded, profile) {
				t.Error("Encode() left data unchanged")
			}

			decoded, err := codec.Decode(tc.codec, bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(decoded, profile) {
				t.Errorf("Decode() = %q, want %q", decoded, profile)
			}
		})
	}
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	if _, err := codec.Decode(codecs.Gzip(), bytes.NewReader([]byte("not gzip"))); err == nil {
		t.Error("Decode() error = nil for corrupt gzip")
	}
}
