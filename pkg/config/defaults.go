package config

// defaultFontSizes is the built-in font-size scale that extend tokens are
// layered on.
var defaultFontSizes = []Token{
	{Name: "xs", Value: FontSize{Size: "0.75rem", LineHeight: "1rem"}},
	{Name: "sm", Value: FontSize{Size: "0.875rem", LineHeight: "1.25rem"}},
	{Name: "base", Value: FontSize{Size: "1rem", LineHeight: "1.5rem"}},
	{Name: "lg", Value: FontSize{Size: "1.125rem", LineHeight: "1.75rem"}},
	{Name: "xl", Value: FontSize{Size: "1.25rem", LineHeight: "1.75rem"}},
	{Name: "2xl", Value: FontSize{Size: "1.5rem", LineHeight: "2rem"}},
	{Name: "3xl", Value: FontSize{Size: "1.875rem", LineHeight: "2.25rem"}},
	{Name: "4xl", Value: FontSize{Size: "2.25rem", LineHeight: "2.5rem"}},
	{Name: "5xl", Value: FontSize{Size: "3rem", LineHeight: "1"}},
	{Name: "6xl", Value: FontSize{Size: "3.75rem", LineHeight: "1"}},
	{Name: "7xl", Value: FontSize{Size: "4.5rem", LineHeight: "1"}},
	{Name: "8xl", Value: FontSize{Size: "6rem", LineHeight: "1"}},
	{Name: "9xl", Value: FontSize{Size: "8rem", LineHeight: "1"}},
}

// TokenSource says where a resolved token came from.
type TokenSource string

const (
	SourceDefault TokenSource = "default"
	SourceExtend  TokenSource = "extend"
)

// Token is one entry of the resolved font-size scale.
type Token struct {
	Name   string      `json:"name"`
	Value  FontSize    `json:"value"`
	Source TokenSource `json:"source"`
}

// DefaultFontSizes returns a copy of the built-in scale.
func DefaultFontSizes() []Token {
	out := make([]Token, len(defaultFontSizes))
	for i, t := range defaultFontSizes {
		t.Source = SourceDefault
		out[i] = t
	}
	return out
}

// ResolvedFontSizes layers the extend tokens over the built-in scale.
// Extending is additive: a token named like a default replaces that
// default's value in place, and new tokens follow in declared order.
func (c *Config) ResolvedFontSizes() []Token {
	tokens := DefaultFontSizes()
	index := make(map[string]int, len(tokens))
	for i, t := range tokens {
		index[t.Name] = i
	}
	if c.Theme.Extend.FontSize == nil {
		return tokens
	}
	for pair := c.Theme.Extend.FontSize.Oldest(); pair != nil; pair = pair.Next() {
		token := Token{Name: pair.Key, Value: pair.Value, Source: SourceExtend}
		if i, ok := index[pair.Key]; ok {
			tokens[i] = token
			continue
		}
		index[pair.Key] = len(tokens)
		tokens = append(tokens, token)
	}
	return tokens
}
