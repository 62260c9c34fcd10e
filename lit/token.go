package lit

import "sort"

// TokenKind classifies the tokens produced by a format tokenizer.
type TokenKind int

// Token kinds.
const (
	// TokenCommand is a directive, delimiters included.
	TokenCommand TokenKind = iota
	// TokenInline is inline code joined into one line.
	TokenInline
	// TokenBlock is block code with its markup indentation removed.
	TokenBlock
	// TokenEnd terminates every stream.
	TokenEnd
)

func (k TokenKind) String() string {
	switch k {
	case TokenCommand:
		return "command"
	case TokenInline:
		return "inline"
	case TokenBlock:
		return "block"
	case TokenEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Token is one element of a document token stream. Start and End are byte
// offsets into the document.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// IsBody reports whether t carries chunk text.
func (t Token) IsBody() bool { return t.Kind == TokenInline || t.Kind == TokenBlock }

// Tokenizer turns a document into a token stream sorted by Start and closed
// by exactly one [TokenEnd].
type Tokenizer interface {
	Tokenize(syn *Syntax, text string) ([]Token, error)
}

// TokenizerFunc adapts a function to [Tokenizer].
type TokenizerFunc func(syn *Syntax, text string) ([]Token, error)

// Tokenize calls f.
func (f TokenizerFunc) Tokenize(syn *Syntax, text string) ([]Token, error) {
	return f(syn, text)
}

// CommandTokens returns a command token for every definition directive of
// text. Format tokenizers use it before adding their own code tokens.
func CommandTokens(syn *Syntax, text string) []Token {
	locs := syn.FindDefinitions(text)
	toks := make([]Token, 0, len(locs))

	for _, loc := range locs {
		toks = append(toks, Token{
			Kind:  TokenCommand,
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}

	return toks
}

// Terminate sorts toks by Start and appends the end token for a document of
// the given length.
func Terminate(toks []Token, length int) []Token {
	sort.SliceStable(toks, func(i, j int) bool { return toks[i].Start < toks[j].Start })

	return append(toks, Token{Kind: TokenEnd, Start: length, End: length})
}
