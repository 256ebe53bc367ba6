package docparse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjdb/schreiber/internal/comment"
	"github.com/cjdb/schreiber/internal/decl"
	"github.com/cjdb/schreiber/internal/diag"
	"github.com/cjdb/schreiber/internal/source"
)

type fixture struct {
	t   *testing.T
	fs  *source.FileSet
	id  source.FileID
	bag *diag.Bag
	s   *Session
}

func newFixture(t *testing.T, lines ...string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	fs.SetBaseDir("/w")
	id := fs.Add("/w/input.cc", []byte(strings.Join(lines, "\n")+"\n"), source.FileVirtual)
	bag := diag.NewBag(0)
	return &fixture{
		t:   t,
		fs:  fs,
		id:  id,
		bag: bag,
		s:   NewSession(fs, diag.BagReporter{Bag: bag}, Options{}),
	}
}

// decl builds a declaration named name at line:col with its comment attached.
func (f *fixture) decl(line, col uint32, kind decl.Kind, name string, params ...string) *decl.Decl {
	f.t.Helper()
	off, ok := f.fs.Offset(f.id, source.LineCol{Line: line, Col: col})
	require.True(f.t, ok)
	raw, err := comment.Attach(f.fs, f.id, line, comment.FormatOptions{})
	require.NoError(f.t, err)

	d := &decl.Decl{
		DeclKind: kind,
		DeclName: name,
		ID:       name,
		Loc:      source.Span{File: f.id, Start: off, End: off + uint32(len(name))},
		Doc:      raw,
	}
	for _, p := range params {
		d.Parameters = append(d.Parameters, decl.Param{Name: p})
	}
	return d
}

func (f *fixture) golden() string {
	return diag.FormatGoldenDiagnostics(f.bag.Items(), f.fs, true)
}

func (f *fixture) text(sp source.Span) string {
	return string(f.fs.Get(sp.File).Content[sp.Start:sp.End])
}

func TestRepeatedParameter(t *testing.T) {
	f := newFixture(t,
		`/// \param y is the rhs`,
		`/// \param x is the lhs`,
		`/// \param x pretty cool`,
		`/// \param y also cool`,
		`int multiply(int x, int y);`,
	)
	rec := f.s.Parse(f.decl(5, 5, decl.KindFunction, "multiply", "x", "y"))
	require.NotNil(t, rec)

	require.Len(t, rec.Params, 2)
	assert.Equal(t, "y", rec.Params[0].Name)
	assert.Equal(t, 1, rec.Params[0].Index)
	assert.Equal(t, "is the rhs", rec.Params[0].Text.Text)
	assert.Equal(t, "x", rec.Params[1].Name)
	assert.Equal(t, "is the lhs", rec.Params[1].Text.Text)

	assert.Equal(t, strings.Join([]string{
		`note DOC2002 input.cc:1:5 previous definition is here`,
		`note DOC2002 input.cc:2:5 previous definition is here`,
		`error DOC2002 input.cc:3:5 repeated '\param' directive for parameter 'x' in function 'multiply'`,
		`error DOC2002 input.cc:4:5 repeated '\param' directive for parameter 'y' in function 'multiply'`,
	}, "\n"), f.golden())
}

func TestDuplicateParameterKeepsFirst(t *testing.T) {
	f := newFixture(t,
		`/// \param x is the lhs`,
		`/// \param x pretty cool`,
		`int f(int x, int y);`,
	)
	rec := f.s.Parse(f.decl(3, 5, decl.KindFunction, "f", "x", "y"))
	require.NotNil(t, rec)
	require.Len(t, rec.Params, 1)
	assert.Equal(t, "is the lhs", rec.Params[0].Text.Text)

	items := f.bag.Items()
	require.Len(t, items, 1)
	require.Len(t, items[0].Notes, 1)
	assert.Equal(t, `\`, f.text(items[0].Notes[0].Span))
	assert.Equal(t, uint32(4), items[0].Notes[0].Span.Start)
}

func TestRepeatedReturns(t *testing.T) {
	f := newFixture(t,
		`/// \returns hello`,
		`/// \returns world`,
		`/// \returns goodbye`,
		`int cube(int x);`,
	)
	rec := f.s.Parse(f.decl(4, 5, decl.KindFunction, "cube", "x"))
	require.NotNil(t, rec)
	require.NotNil(t, rec.Returns)
	assert.Equal(t, "hello", rec.Returns.Text)

	assert.Equal(t, strings.Join([]string{
		`note DOC2003 input.cc:1:5 previous definition is here`,
		`note DOC2003 input.cc:1:5 previous definition is here`,
		`error DOC2003 input.cc:2:5 repeated '\returns' directive for function 'cube'`,
		`error DOC2003 input.cc:3:5 repeated '\returns' directive for function 'cube'`,
	}, "\n"), f.golden())
}

func TestUnknownDirectives(t *testing.T) {
	f := newFixture(t,
		`/// None of these directives exist, but some can be automatically fixed.`,
		`///`,
		`/// \extends`,
		`/// \return`,
		`/// \retval`,
		`/// \result`,
		`/// \throw`,
		`/// \exception`,
		`/// \ a`,
		`/// \buggy d. clown`,
		`void typo();`,
	)
	d := f.decl(11, 6, decl.KindFunction, "typo")
	d.Void = true
	rec := f.s.Parse(d)
	require.NotNil(t, rec)
	assert.Equal(t, "None of these directives exist, but some can be automatically fixed.", rec.Summary.Text)
	assert.Nil(t, rec.Returns)
	assert.Empty(t, rec.Throws)

	assert.Equal(t, strings.Join([]string{
		`warning SCN1003 input.cc:3:5 '\extends' is an unsupported Doxygen command and will be ignored`,
		`warning SCN1003 input.cc:4:5 '\return' is an unsupported Doxygen command and will be ignored; use '\returns' instead`,
		`warning SCN1003 input.cc:5:5 '\retval' is an unsupported Doxygen command and will be ignored; use '\returns' instead`,
		`warning SCN1003 input.cc:6:5 '\result' is an unsupported Doxygen command and will be ignored; use '\returns' instead`,
		`warning SCN1003 input.cc:7:5 '\throw' is an unsupported Doxygen command and will be ignored; use '\throws' instead`,
		`warning SCN1003 input.cc:8:5 '\exception' is an unsupported Doxygen command and will be ignored; use '\throws' instead`,
		`error SCN1001 input.cc:9:5 a backslash must be followed by a non-space character`,
		`warning SCN1002 input.cc:10:5 unknown directive '\buggy'`,
	}, "\n"), f.golden())

	fixes := map[string]string{}
	for _, it := range f.bag.Items() {
		if it.Code != diag.ScanLegacyDirective {
			assert.Empty(t, it.Fixes)
			continue
		}
		if len(it.Fixes) == 0 {
			continue
		}
		require.Len(t, it.Fixes[0].Edits, 1)
		edit := it.Fixes[0].Edits[0]
		assert.Equal(t, edit.OldText, f.text(edit.Span))
		assert.Equal(t, fmt.Sprintf("legacy-%s-%d-%d", edit.OldText, f.id, edit.Span.Start), it.Fixes[0].ID)
		fixes[edit.OldText] = edit.NewText
	}
	assert.Equal(t, map[string]string{
		"return":    "returns",
		"retval":    "returns",
		"result":    "returns",
		"throw":     "throws",
		"exception": "throws",
	}, fixes)
}

func TestUnknownParameter(t *testing.T) {
	f := newFixture(t,
		`/// \param num Top`,
		`/// \param denominator Bottom`,
		`int div(int num, int denom);`,
	)
	rec := f.s.Parse(f.decl(3, 5, decl.KindFunction, "div", "num", "denom"))
	require.NotNil(t, rec)
	require.Len(t, rec.Params, 1)
	assert.Equal(t, "num", rec.Params[0].Name)

	assert.Equal(t, strings.Join([]string{
		`error DOC2001 input.cc:2:12 documented parameter 'denominator' does not map to a parameter in this declaration of 'div'`,
		`note DOC2001 input.cc:2:12 the word immediately after '\param' must name one of the parameters in the function declaration`,
	}, "\n"), f.golden())
}

func TestExtendsHasNoReplacement(t *testing.T) {
	f := newFixture(t,
		`/// Summary.`,
		`/// \extends base`,
		`int f();`,
	)
	rec := f.s.Parse(f.decl(3, 5, decl.KindFunction, "f"))
	require.NotNil(t, rec)

	items := f.bag.Items()
	require.Len(t, items, 1)
	assert.Equal(t, diag.SevWarning, items[0].Severity)
	assert.Empty(t, items[0].Fixes)
	assert.Empty(t, rec.Params)
	assert.Nil(t, rec.Returns)
	assert.Empty(t, rec.Pre)
	assert.Empty(t, rec.Headers)
}

func TestHeadersAndModules(t *testing.T) {
	f := newFixture(t,
		`/// Reads things.`,
		`/// \headers a.hpp, b.hpp`,
		`/// \modules std.core,`,
		`///   std.io`,
		`/// \pre p`,
		`/// \post q`,
		`/// \exits-via abort`,
		`/// \throws std::bad_alloc`,
		`int f();`,
	)
	rec := f.s.Parse(f.decl(9, 5, decl.KindFunction, "f"))
	require.NotNil(t, rec)
	assert.Empty(t, f.bag.Items())

	assert.Equal(t, []string{"a.hpp", "b.hpp"}, rec.Headers)
	assert.Equal(t, []string{"std.core", "std.io"}, rec.Modules)
	require.Len(t, rec.Pre, 1)
	assert.Equal(t, "p", rec.Pre[0].Text)
	assert.Equal(t, "q", rec.Post[0].Text)
	assert.Equal(t, "abort", rec.ExitsVia[0].Text)
	assert.Equal(t, "std::bad_alloc", rec.Throws[0].Text)
	assert.Equal(t, "Reads things.", rec.Summary.Text)
}

func TestExportListsKeepEmptyFields(t *testing.T) {
	f := newFixture(t,
		`/// Reads things.`,
		`/// \headers a.hpp,,b.hpp`,
		`/// \modules`,
		`int f();`,
	)
	rec := f.s.Parse(f.decl(4, 5, decl.KindFunction, "f"))
	require.NotNil(t, rec)

	assert.Equal(t, []string{"a.hpp", "", "b.hpp"}, rec.Headers)
	assert.Empty(t, rec.Modules)
}

func TestRedeclarationDocumentedLater(t *testing.T) {
	f := newFixture(t,
		`class yonkō;`,
		``,
		`/// The most notorious four pirate captains in the world.`,
		`class yonkō;`,
	)
	assert.Nil(t, f.s.Parse(f.decl(1, 7, decl.KindClass, "yonkō")))
	assert.NotNil(t, f.s.Parse(f.decl(4, 7, decl.KindClass, "yonkō")))

	assert.Zero(t, f.s.Shutdown())
	assert.Empty(t, f.bag.Items())
}

func TestUndocumentedRedeclarationsReportOnce(t *testing.T) {
	f := newFixture(t,
		`class yonkō;`,
		``,
		`class yonkō;`,
	)
	f.s.Parse(f.decl(1, 7, decl.KindClass, "yonkō"))
	f.s.Parse(f.decl(3, 7, decl.KindClass, "yonkō"))

	assert.Equal(t, 1, f.s.Shutdown())
	assert.Equal(t, strings.Join([]string{
		`note UND3001 input.cc:1:7 use '\undocumented' to indicate that 'yonkō' is intentionally undocumented`,
		`warning UND3001 input.cc:1:7 class 'yonkō' is not documented`,
	}, "\n"), f.golden())

	assert.Zero(t, f.s.Shutdown())
	assert.Equal(t, 1, f.bag.Len())
}

func TestLocalDeclarationsAreSkipped(t *testing.T) {
	f := newFixture(t,
		`int captain(int x)`,
		`{`,
		`	int y;`,
		`}`,
	)
	local := f.decl(3, 6, decl.KindVariable, "y")
	local.Local = true
	assert.Nil(t, f.s.Parse(local))
	assert.Zero(t, f.s.Shutdown())
	assert.Empty(t, f.bag.Items())
}

func TestSkipUndocumented(t *testing.T) {
	f := newFixture(t, `int f();`)
	f.s = NewSession(f.fs, diag.BagReporter{Bag: f.bag}, Options{SkipUndocumented: true})
	f.s.Parse(f.decl(1, 5, decl.KindFunction, "f"))
	assert.Zero(t, f.s.Shutdown())
	assert.Empty(t, f.bag.Items())
}

func TestFunctionTemplateParameters(t *testing.T) {
	f := newFixture(t,
		`/// Copies.`,
		`/// \param T element type`,
		`/// \param x source`,
		`/// \param U nope`,
		`/// \throws T is nothrow copyable`,
		`/// \throws twice`,
		`template<class T> void copy(T x) noexcept(nothrow<T>);`,
	)
	d := f.decl(7, 24, decl.KindFunctionTemplate, "copy", "x")
	d.TParameters = []decl.Param{{Name: "T"}}
	d.Except = decl.ExceptNoexceptIf
	d.Void = true
	rec := f.s.Parse(d)
	require.NotNil(t, rec)

	require.Len(t, rec.TemplateParams, 1)
	assert.Equal(t, "element type", rec.TemplateParams[0].Text.Text)
	require.Len(t, rec.Params, 1)
	assert.Equal(t, "source", rec.Params[0].Text.Text)
	require.NotNil(t, rec.NoexceptIf)
	assert.Equal(t, "T is nothrow copyable", rec.NoexceptIf.Text)
	assert.Empty(t, rec.Throws)

	assert.Equal(t, strings.Join([]string{
		`error DOC2001 input.cc:4:12 documented parameter 'U' does not map to a parameter or template parameter in this declaration of 'copy'`,
		`note DOC2001 input.cc:4:12 the word immediately after '\param' must name one of the parameters or template parameters in the function declaration`,
		`note DOC2004 input.cc:5:5 previous definition is here`,
		`error DOC2004 input.cc:6:5 repeated '\throws' directive for function template 'copy'`,
	}, "\n"), f.golden())
}

func TestExceptionAndVoidChecks(t *testing.T) {
	f := newFixture(t,
		`/// Does nothing.`,
		`/// \returns nothing`,
		`/// \throws never`,
		`void f() noexcept;`,
	)
	d := f.decl(4, 6, decl.KindFunction, "f")
	d.Void = true
	d.Except = decl.ExceptNoexcept
	rec := f.s.Parse(d)
	require.NotNil(t, rec)
	assert.Nil(t, rec.Returns)
	assert.Empty(t, rec.Throws)

	assert.Equal(t, strings.Join([]string{
		`warning DOC2005 input.cc:2:5 '\returns' is ignored because function 'f' returns void`,
		`warning DOC2006 input.cc:3:5 '\throws' is ignored because function 'f' is declared noexcept`,
	}, "\n"), f.golden())
}

func TestMarkerAndEmptyDescription(t *testing.T) {
	f := newFixture(t,
		`/// \undocumented`,
		`int f();`,
		``,
		`/// \retval x`,
		`int g();`,
	)
	rec := f.s.Parse(f.decl(2, 5, decl.KindFunction, "f"))
	require.NotNil(t, rec)
	assert.Empty(t, f.bag.Items())
	assert.Equal(t, "", rec.Summary.Text)

	f.s.Parse(f.decl(5, 5, decl.KindFunction, "g"))
	items := f.bag.Items()
	require.Len(t, items, 1)
	require.Len(t, items[0].Notes, 1)
	assert.Equal(t, noDescriptionNote, items[0].Notes[0].Msg)
	assert.Len(t, items[0].Fixes, 1)
}

func TestParseContract(t *testing.T) {
	f := newFixture(t, `int f();`)
	assert.Panics(t, func() { f.s.Parse(nil) })

	f.s.Shutdown()
	assert.Panics(t, func() { f.s.Parse(f.decl(1, 5, decl.KindFunction, "f")) })
}

func TestStats(t *testing.T) {
	f := newFixture(t,
		`/// \param x a`,
		`/// \bogus`,
		`int f(int x);`,
		`int g();`,
	)
	f.s.Parse(f.decl(3, 5, decl.KindFunction, "f", "x"))
	f.s.Parse(f.decl(4, 5, decl.KindFunction, "g"))
	f.s.Shutdown()

	st := f.s.Stats()
	assert.Equal(t, 2, st.Declarations)
	assert.Equal(t, 1, st.Documented)
	assert.Equal(t, 1, st.Undocumented)
	assert.Equal(t, 2, st.Directives)
	assert.Equal(t, 1, st.Stored)
	assert.Equal(t, 1, st.Rejected)
}
