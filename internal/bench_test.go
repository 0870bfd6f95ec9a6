package internal

import (
	"strings"
	"testing"
)

func BenchmarkScanReader(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 20000; i++ {
		sb.WriteString("user=alice action=login status=ok\n")
		sb.WriteString("user=bob action=upload status=failed\n")
	}
	body := sb.String()

	for _, mode := range []MatchMode{ExtendedRegexp, FixedStrings} {
		m, err := Compile("status=fail", mode)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(mode.String(), func(b *testing.B) {
			b.SetBytes(int64(len(body)))
			for i := 0; i < b.N; i++ {
				if _, err := scanReader(strings.NewReader(body), m); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
