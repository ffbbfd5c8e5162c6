package types

// Tokenizer is implemented by both the escape-code decoder and the plain
// text lexer.
type Tokenizer interface {
	Tokenize() []Token
}

// Tokenize with statistics
type TokenizerWithStats interface {
	Tokenizer
	GetStats() TokenStats
}
