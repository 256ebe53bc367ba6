package comment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjdb/schreiber/internal/source"
)

func load(t *testing.T, text string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.AddVirtual("input.cc", []byte(text))
}

func TestBlockAbove(t *testing.T) {
	fs, id := load(t, strings.Join([]string{
		"// ordinary",
		"/// first",
		"  /// second",
		"int f();",
		"",
		"//// banner",
		"int g();",
	}, "\n"))
	file := fs.Get(id)

	first, last, ok := BlockAbove(file, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(2), first)
	assert.Equal(t, uint32(3), last)

	_, _, ok = BlockAbove(file, 7)
	assert.False(t, ok, "four slashes are not a documentation comment")

	_, _, ok = BlockAbove(file, 1)
	assert.False(t, ok)
}

func TestFormatStripsCommonIndent(t *testing.T) {
	fs, id := load(t, strings.Join([]string{
		"/// Summary line",
		"///",
		"/// \\returns hope",
		"///          continued",
		"int f();",
	}, "\n"))

	raw, err := Format(fs, id, 1, 4, FormatOptions{})
	require.NoError(t, err)
	require.Len(t, raw.Lines, 4)

	assert.Equal(t, "Summary line", raw.Lines[0].Text)
	assert.Equal(t, "", raw.Lines[1].Text)
	assert.Equal(t, `\returns hope`, raw.Lines[2].Text)
	assert.Equal(t, "         continued", raw.Lines[3].Text)

	assert.Equal(t, source.LineCol{Line: 1, Col: 1}, raw.Begin)
	assert.Equal(t, source.LineCol{Line: 1, Col: 5}, raw.Lines[0].Begin)
	assert.Equal(t, source.LineCol{Line: 2, Col: 4}, raw.Lines[1].Begin)
	assert.Equal(t, source.LineCol{Line: 3, Col: 5}, raw.Lines[2].Begin)
	assert.Equal(t, "Summary line\n\n\\returns hope\n         continued", raw.Text())
}

func TestLineOffsetMatchesFileSet(t *testing.T) {
	fs, id := load(t, strings.Join([]string{
		"namespace n {",
		"\t///   Divides.",
		"\t///   \\param numerator top   ",
		"\t///   \\param denominator bottom",
		"\tint div(int numerator, int denom);",
		"}",
	}, "\n"))

	raw, err := Format(fs, id, 2, 4, FormatOptions{})
	require.NoError(t, err)

	for i, ln := range raw.Lines {
		want, ok := fs.Offset(id, ln.Begin)
		require.True(t, ok)
		assert.Equalf(t, want, raw.LineOffset(i), "line %d", i)
	}
	assert.Equal(t, `\param numerator top`, raw.Lines[1].Text, "trailing blanks are trimmed")
	assert.Equal(t, uint32(8), raw.Lines[0].Begin.Col)

	span := raw.Span()
	assert.Equal(t, "///   Divides.\n\t///   \\param numerator top   \n\t///   \\param denominator bottom",
		string(fs.Get(id).Content[span.Start:span.End]))
}

func TestFormatTabWidth(t *testing.T) {
	text := "///\tSummary\n///    \tDetail\n"
	fs, id := load(t, text)

	narrow, err := Format(fs, id, 1, 2, FormatOptions{TabWidth: 4})
	require.NoError(t, err)
	// tab reaches column 4, "    \t" reaches column 8: the second line keeps its tab
	assert.Equal(t, "Summary", narrow.Lines[0].Text)
	assert.Equal(t, "\tDetail", narrow.Lines[1].Text)

	wide, err := Format(fs, id, 1, 2, FormatOptions{TabWidth: 8})
	require.NoError(t, err)
	// with 8-wide tabs both prefixes measure 8 columns
	assert.Equal(t, "Summary", wide.Lines[0].Text)
	assert.Equal(t, "Detail", wide.Lines[1].Text)
}

func TestFormatRejectsNonCommentLines(t *testing.T) {
	fs, id := load(t, "/// a\nint f();\n")
	_, err := Format(fs, id, 1, 2, FormatOptions{})
	assert.Error(t, err)

	_, err = Format(fs, id, 3, 9, FormatOptions{})
	assert.Error(t, err)
}

func TestEmptyRaw(t *testing.T) {
	var raw *Raw
	assert.True(t, raw.Empty())
	assert.Equal(t, "", raw.Text())
}

func TestAttach(t *testing.T) {
	fs, id := load(t, "/// Doc.\nint f();\nint g();\n")

	raw, err := Attach(fs, id, 2, FormatOptions{})
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "Doc.", raw.Text())

	raw, err = Attach(fs, id, 3, FormatOptions{})
	require.NoError(t, err)
	assert.Nil(t, raw)
}
