package iterator

import "github.com/arnodel/xmtpdump/token"

// A ValueTransformer transforms a value into a token stream.  Nothing may
// be written to out, which drops the value.
type ValueTransformer interface {
	TransformValue(value Value, out token.WriteStream)
}

// TransformTokens applies the transformer to each top-level value in toks
// and returns the resulting tokens.
func TransformTokens(toks []token.Token, transformer ValueTransformer) []token.Token {
	acc := token.NewAccumulatorStream()
	iter := FromTokens(toks)
	for iter.Advance() {
		transformer.TransformValue(iter.CurrentValue(), acc)
	}
	return acc.GetTokens()
}
