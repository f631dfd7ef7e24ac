package envelope

import (
	"testing"

	"github.com/arnodel/xmtpdump/token"
)

func TestDocument(t *testing.T) {
	doc := NewDocument()
	doc.SetScalar("b", token.Int64Scalar(1))
	doc.SetScalar("a", token.StringScalar("x"))
	doc.SetScalar("c", token.TrueScalar)

	if got := render(t, doc.Tokens()); got != `{"b": 1, "a": "x", "c": true}` {
		t.Errorf("unexpected document %s", got)
	}

	doc.SetScalar("b", token.NullScalar)
	if got := render(t, doc.Tokens()); got != `{"b": null, "a": "x", "c": true}` {
		t.Errorf("Set should replace in place, got %s", got)
	}

	if s, ok := doc.GetString("a"); !ok || s != "x" {
		t.Errorf("GetString(a) = %q, %t", s, ok)
	}
	if _, ok := doc.GetString("c"); ok {
		t.Error("GetString should not accept a boolean")
	}
	if _, ok := doc.Get("missing"); ok {
		t.Error("Get should not find a missing key")
	}

	if !doc.Delete("a") || doc.Delete("a") {
		t.Error("Delete should remove a key once")
	}
	if got := render(t, doc.Tokens()); got != `{"b": null, "c": true}` {
		t.Errorf("unexpected document after Delete %s", got)
	}
	doc.SetScalar("a", token.FalseScalar)
	if got := render(t, doc.Tokens()); got != `{"b": null, "c": true, "a": false}` {
		t.Errorf("unexpected document %s", got)
	}
}

func TestDocumentNestedValues(t *testing.T) {
	rec := mustParseRecord(t, `{"x":{"y":[1,2]},"z":"w"}`)
	value, ok := rec.Doc.Get("x")
	if !ok {
		t.Fatal("missing x")
	}
	if got := render(t, value); got != `{"y": [1, 2]}` {
		t.Errorf("unexpected value %s", got)
	}
	if _, ok := rec.Doc.GetScalar("x"); ok {
		t.Error("GetScalar should not accept an object")
	}
	if got := render(t, NewDocument().Tokens()); got != `{}` {
		t.Errorf("unexpected empty document %s", got)
	}
}
