package token

import "testing"

func TestIsSymbolPunct(t *testing.T) {
	for _, ch := range []byte("+-*/<>=!&|^%") {
		if !IsSymbolPunct(ch) {
			t.Fatalf("expected %q to be symbol punctuation", ch)
		}
	}
	for _, ch := range []byte("a0_() \"") {
		if IsSymbolPunct(ch) {
			t.Fatalf("did not expect %q to be symbol punctuation", ch)
		}
	}
}
