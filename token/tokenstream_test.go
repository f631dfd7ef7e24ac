package token

import (
	"testing"
)

func assertNext(t *testing.T, r ReadStream, expected Token) {
	t.Helper()
	next := r.Next()
	if next != expected {
		t.Fatalf("Expected %v, got %v", expected, next)
	}
}

func TestSliceReadStream(t *testing.T) {
	toks := []Token{&StartObject{}, KeyScalar("a"), Int64Scalar(1), &EndObject{}}
	r := NewSliceReadStream(toks)
	for _, tok := range toks {
		assertNext(t, r, tok)
	}
	assertNext(t, r, nil)
	assertNext(t, r, nil)
}

func TestAccumulatorStream(t *testing.T) {
	acc := NewAccumulatorStream()
	acc.Put(&StartArray{})
	acc.Put(NullScalar)
	acc.Put(&EndArray{})
	if n := len(acc.GetTokens()); n != 3 {
		t.Fatalf("expected 3 tokens, got %d", n)
	}
}
