package wire_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wippyai/stabletrace/wire"
)

func TestOtherString(t *testing.T) {
	tests := []struct {
		name  string
		value string
		min   int
		want  []byte
	}{
		{"padded to min 3", "ab", 3, []byte{3, 'a', 'b', ' '}},
		{"empty padded to min 3", "", 3, []byte{3, ' ', ' ', ' '}},
		{"exact min", "abc", 3, []byte{3, 'a', 'b', 'c'}},
		{"longer than min", "riscv64", 2, []byte{7, 'r', 'i', 's', 'c', 'v', '6', '4'}},
		{"min 1 empty", "", 1, []byte{1, ' '}},
		{"keeps trailing spaces", "a ", 1, []byte{2, 'a', ' '}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := wire.NewOtherString(tt.value, tt.min)
			if got := s.EncodedSize(); got != len(tt.want) {
				t.Errorf("EncodedSize = %d, want %d", got, len(tt.want))
			}
			if got := wire.Marshal(s); !bytes.Equal(got, tt.want) {
				t.Errorf("encoded = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOtherStringTruncates(t *testing.T) {
	value := strings.Repeat("x", 300) + "tail"
	got := wire.Marshal(wire.NewOtherString(value, 3))

	if len(got) != 256 {
		t.Fatalf("len = %d, want 256", len(got))
	}
	if got[0] != 255 {
		t.Errorf("length byte = %d, want 255", got[0])
	}
	if !bytes.Equal(got[1:], []byte(value[:255])) {
		t.Error("content is not the first 255 bytes")
	}
}

func TestOtherStringPaddingProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("width is max(min, min(len, 255)) and padding is spaces", prop.ForAll(
		func(value string, minWidth int) bool {
			s := wire.NewOtherString(value, minWidth)
			buf := wire.Marshal(s)

			content := min(len(value), 255)
			width := max(content, minWidth)
			if len(buf) != 1+width || int(buf[0]) != width {
				return false
			}
			if !bytes.Equal(buf[1:1+content], []byte(value[:content])) {
				return false
			}
			for _, b := range buf[1+content:] {
				if b != ' ' {
					return false
				}
			}

			r := wire.NewReader(buf)
			n, _ := r.ReadByte()
			decoded, err := r.ReadString(int(n))
			return err == nil && strings.TrimRight(decoded, " ") == strings.TrimRight(value[:content], " ")
		},
		gen.AnyString(),
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}
