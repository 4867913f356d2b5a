package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserSimpleCommand(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hello world\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	require.NotNil(t, line)
	require.Len(t, line.Exprs, 1)
	assert.Equal(t, "echo", line.Exprs[0].Cmd.Exe)
	assert.Equal(t, []string{"hello", "world"}, line.Exprs[0].Cmd.Args)
}

func TestParserWaitsForMoreInput(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hello"))
	line, err := p.PopNext()
	require.NoError(t, err)
	assert.Nil(t, line)

	p.Feed([]byte(" world\n"))
	line, err = p.PopNext()
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, []string{"hello", "world"}, line.Exprs[0].Cmd.Args)
}

func TestParserPipeline(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("cat file | grep foo | wc -l\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	require.Len(t, line.Exprs, 5)
	assert.Equal(t, ExprCommand, line.Exprs[0].Type)
	assert.Equal(t, ExprPipe, line.Exprs[1].Type)
	assert.Equal(t, ExprCommand, line.Exprs[2].Type)
	assert.Equal(t, ExprPipe, line.Exprs[3].Type)
	assert.Equal(t, ExprCommand, line.Exprs[4].Type)
}

func TestParserAndOrChain(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("make && make install || echo failed\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	require.Len(t, line.Exprs, 5)
	assert.Equal(t, ExprAnd, line.Exprs[1].Type)
	assert.Equal(t, ExprOr, line.Exprs[3].Type)
}

func TestParserOutputRedirectNew(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi > out.txt\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	assert.Equal(t, OutputFileNew, line.OutType)
	assert.Equal(t, "out.txt", line.OutFile)
}

func TestParserOutputRedirectAppend(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi >> out.txt\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	assert.Equal(t, OutputFileAppend, line.OutType)
	assert.Equal(t, "out.txt", line.OutFile)
}

func TestParserBackground(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("sleep 10 &\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	assert.True(t, line.Background)
}

func TestParserBlankLinesAreSkipped(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("\n\n  \necho hi\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "echo", line.Exprs[0].Cmd.Exe)
}

func TestParserCommentOnlyLineYieldsNoCommand(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("# just a comment\necho hi\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "echo", line.Exprs[0].Cmd.Exe)
}

func TestParserPipeWithNoLeftArg(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("| echo hi\n"))
	_, err := p.PopNext()
	assert.ErrorIs(t, err, ErrPipeWithNoLeftArg)
}

func TestParserPipeAfterOperatorNotACommand(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi && | cat\n"))
	_, err := p.PopNext()
	assert.ErrorIs(t, err, ErrPipeWithLeftArgNotACommand)
}

func TestParserOutputRedirectBadArg(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi > | cat\n"))
	_, err := p.PopNext()
	assert.ErrorIs(t, err, ErrOutputRedirectBadArg)
}

func TestParserTooLateArguments(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi > out.txt extra\n"))
	_, err := p.PopNext()
	assert.ErrorIs(t, err, ErrTooLateArguments)
}

func TestParserCloseOnCleanBufferSucceeds(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi\n"))
	_, err := p.PopNext()
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestParserCloseOnDanglingStatementFails(t *testing.T) {
	p := NewParser()
	p.Feed([]byte("echo hi"))
	line, err := p.PopNext()
	require.NoError(t, err)
	assert.Nil(t, line)
	assert.ErrorIs(t, p.Close(), ErrEndsNotWithACommand)
}

func TestParserQuotedArgumentsPreserveWhitespace(t *testing.T) {
	p := NewParser()
	p.Feed([]byte(`echo "hello world"` + "\n"))
	line, err := p.PopNext()
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, line.Exprs[0].Cmd.Args)
}
