package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, input string) []token {
	t.Helper()
	var toks []token
	data := []byte(input)
	pos := 0
	for pos < len(data) {
		consumed, tok, ok := lexToken(data[pos:])
		require.True(t, ok, "incomplete token at %q", data[pos:])
		pos += consumed
		toks = append(toks, tok)
	}
	return toks
}

func TestLexTokenPlainWords(t *testing.T) {
	toks := lexAll(t, "ls -la\n")
	require.Len(t, toks, 3)
	assert.Equal(t, tokenStr, toks[0].typ)
	assert.Equal(t, "ls", string(toks[0].data))
	assert.Equal(t, "-la", string(toks[1].data))
	assert.Equal(t, tokenNewLine, toks[2].typ)
}

func TestLexTokenSingleQuoteSuppressesEscapes(t *testing.T) {
	toks := lexAll(t, `'a\nb' `)
	require.Len(t, toks, 1)
	assert.Equal(t, `a\nb`, string(toks[0].data))
}

func TestLexTokenDoubleQuoteEscapes(t *testing.T) {
	toks := lexAll(t, `"a\"b\\c\nd" `)
	require.Len(t, toks, 1)
	assert.Equal(t, "a\"b\\c\\nd", string(toks[0].data))
}

func TestLexTokenUnquotedEscapeDropsBackslashNewline(t *testing.T) {
	toks := lexAll(t, "a\\\nb\n")
	require.Len(t, toks, 2)
	assert.Equal(t, "ab", string(toks[0].data))
}

func TestLexTokenOperators(t *testing.T) {
	cases := map[string]tokenType{
		"|":  tokenPipe,
		"||": tokenOr,
		"&":  tokenBackground,
		"&&": tokenAnd,
		">":  tokenOutNew,
		">>": tokenOutAppend,
	}
	for input, want := range cases {
		toks := lexAll(t, input+"\n")
		require.Len(t, toks, 2)
		assert.Equal(t, want, toks[0].typ, "input %q", input)
	}
}

func TestLexTokenComment(t *testing.T) {
	toks := lexAll(t, "echo hi # trailing comment\n")
	require.Len(t, toks, 3)
	assert.Equal(t, "echo", string(toks[0].data))
	assert.Equal(t, "hi", string(toks[1].data))
	assert.Equal(t, tokenNewLine, toks[2].typ)
}

func TestLexTokenHashAfterWordStartsComment(t *testing.T) {
	// '#' immediately following a word ends the word and starts a
	// comment that swallows the rest of the line, including "hi".
	toks := lexAll(t, "echo#hi\n")
	require.Len(t, toks, 2)
	assert.Equal(t, "echo", string(toks[0].data))
	assert.Equal(t, tokenNewLine, toks[1].typ)
}

func TestLexTokenIncompleteQuoteNeedsMoreInput(t *testing.T) {
	_, _, ok := lexToken([]byte(`'unterminated`))
	assert.False(t, ok)
}

func TestLexTokenIncompleteOperatorNeedsMoreInput(t *testing.T) {
	_, _, ok := lexToken([]byte("&"))
	assert.False(t, ok)
}
