package engine

import "testing"

// These vectors come from original_source/src/lib.rs's own extract_timestamp
// unit tests; they pin down the shift/mask formula spec.md's prose doesn't
// reproduce exactly (see DESIGN.md).
func TestExtractTimestamp(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
		maxLen  int
		want    uint64
	}{
		{"all continuation bits clear", []byte{0x80, 0x80, 0x80, 0x00}, 25, 0},
		{"max len 27", []byte{0x81, 0x87, 0x9F, 0x7F}, 27, 0xFE7C381},
		{"max len 25", []byte{0x81, 0x87, 0x9F, 0xFF}, 25, 0x3E7C381},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractTimestamp(tc.payload, tc.maxLen)
			if got != tc.want {
				t.Errorf("extractTimestamp(%v, %d) = %#x, want %#x", tc.payload, tc.maxLen, got, tc.want)
			}
		})
	}
}
