package currency

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "GYD$0"},
		{5, "GYD$5"},
		{999, "GYD$999"},
		{1000, "GYD$1,000"},
		{1234, "GYD$1,234"},
		{2000, "GYD$2,000"},
		{1234567, "GYD$1,234,567"},
		{-50, "GYD$-50"},
		{-1234, "GYD$-1,234"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParse(t *testing.T) {
	n, err := Parse("GYD$1,234")
	if err != nil || n != 1234 {
		t.Fatalf("Parse = %d, %v", n, err)
	}
	if _, err := Parse("GYD$"); err == nil {
		t.Error("empty amount should not parse")
	}
	if _, err := Parse("GYD$12x4"); err == nil {
		t.Error("garbage should not parse")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 99, 100, 999, 1000, 10000, 123456, 999999999} {
		got, err := Parse(Format(n))
		if err != nil {
			t.Fatalf("round trip %d: %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip %d -> %d", n, got)
		}
	}
}
