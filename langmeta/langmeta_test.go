package langmeta

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "ko_kr", want: "ko-KR"},
		{in: " EN-us ", want: "en-US"},
		{in: "zh_hant", want: "zh-Hant"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := Normalize(tc.in)
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		got, ok := Resolve("en-GB")
		if !ok || got.Name != "English (UK)" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("base fallback", func(t *testing.T) {
		got, ok := Resolve("ko_KR")
		if !ok || got.Name != "Korean" || got.Native != "한국어" {
			t.Fatalf("unexpected fallback result: %#v", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, ok := Resolve("zz-ZZ"); ok {
			t.Fatal("zz-ZZ should not resolve")
		}
		if got := Name("zz-ZZ"); got != "zz-ZZ" {
			t.Fatalf("Name(zz-ZZ) = %q, want passthrough", got)
		}
	})
}

func TestBase(t *testing.T) {
	if got := Base("ko_KR"); got != "ko" {
		t.Fatalf("Base(ko_KR) = %q, want ko", got)
	}
	if got := Base("en"); got != "en" {
		t.Fatalf("Base(en) = %q, want en", got)
	}
}
