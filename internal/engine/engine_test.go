package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate(t *testing.T) *Template {
	t.Helper()
	tmpl, err := NewTemplate([][]string{
		{"Identifiant", "Nom complet", "Commentaires"},
	}, 1, nil)
	require.NoError(t, err)
	return tmpl
}

func testSource(t *testing.T) *Source {
	t.Helper()
	src, err := NewSource([][]string{
		{"id", "first", "last", "note"},
		{"1", "Ada", "Lovelace", "pioneer"},
		{"2", "Alan", "", "logic"},
		{"3", "Grace", "Hopper", ""},
	}, 1)
	require.NoError(t, err)
	return src
}

func TestUnmappedFieldsEvaluateEmpty(t *testing.T) {
	eng := New(testTemplate(t), testSource(t))

	row := eng.EvaluateRow([]string{"1", "Ada", "Lovelace", "pioneer"})

	require.Len(t, row, 3)
	for i, v := range row {
		assert.Empty(t, v, "field %d", i)
	}
}

func TestSimpleMappingReturnsRawCell(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	idCol, ok := src.ColumnByName("id")
	require.True(t, ok)
	eng.SetMapping(tmpl.Fields()[0], idCol)

	noteCol, ok := src.ColumnByName("note")
	require.True(t, ok)
	eng.SetMapping(tmpl.Fields()[2], noteCol)

	row := eng.EvaluateRow([]string{"1", "Ada", "Lovelace", "  pioneer  "})
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "", row[1])
	assert.Equal(t, "  pioneer  ", row[2], "raw value, unmodified")
}

func TestSimpleMappingOutOfBounds(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	noteCol, _ := src.ColumnByName("note")
	eng.SetMapping(tmpl.Fields()[0], noteCol)

	// Source row shorter than the mapped column index.
	row := eng.EvaluateRow([]string{"1", "Ada"})
	assert.Equal(t, "", row[0])
}

func TestSimpleMappingUnknownColumn(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	ghost, ok := src.ColumnByName("does-not-exist")
	assert.False(t, ok)
	eng.SetMapping(tmpl.Fields()[0], ghost)

	row := eng.EvaluateRow([]string{"1", "Ada", "Lovelace", "pioneer"})
	assert.Equal(t, "", row[0])
}

func TestConcatSkipEmpty(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	err := eng.SetConcatMapping(tmpl.Fields()[1], ConcatRule{
		Sources: []ConcatSource{
			{Column: "first", Prefix: "A:"},
			{Column: "last", Prefix: "B:"},
		},
		Separator: "-",
		SkipEmpty: true,
	})
	require.NoError(t, err)

	row := eng.EvaluateRow([]string{"2", "x", "", "logic"})
	assert.Equal(t, "A:x", row[1], "blank column skipped before prefixing")
}

func TestConcatKeepEmpty(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	err := eng.SetConcatMapping(tmpl.Fields()[1], ConcatRule{
		Sources: []ConcatSource{
			{Column: "first", Prefix: "A:"},
			{Column: "last", Prefix: "B:"},
		},
		Separator: "-",
	})
	require.NoError(t, err)

	row := eng.EvaluateRow([]string{"2", "x", "", "logic"})
	assert.Equal(t, "A:x-B:", row[1])
}

func TestConcatDedupeGlobal(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	err := eng.SetConcatMapping(tmpl.Fields()[1], ConcatRule{
		Sources: []ConcatSource{
			{Column: "first"},
			{Column: "last"},
			{Column: "note"},
		},
		Separator: ",",
		Dedupe:    true,
	})
	require.NoError(t, err)

	row := eng.EvaluateRow([]string{"1", "foo", "bar", "foo"})
	assert.Equal(t, "foo,bar", row[1], "first occurrence kept, repeats dropped globally")

	row = eng.EvaluateRow([]string{"1", "foo", "foo", "x"})
	assert.Equal(t, "foo,x", row[1])
}

func TestConcatSeparatorEscapes(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	err := eng.SetConcatMapping(tmpl.Fields()[1], ConcatRule{
		Sources:   []ConcatSource{{Column: "first"}, {Column: "last"}},
		Separator: `\n`,
		SkipEmpty: true,
	})
	require.NoError(t, err)

	row := eng.EvaluateRow([]string{"1", "Ada", "Lovelace", ""})
	assert.Equal(t, "Ada\nLovelace", row[1])
}

func TestSetConcatMappingEmptyRule(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	field := tmpl.Fields()[0]
	idCol, _ := src.ColumnByName("id")
	eng.SetMapping(field, idCol)

	err := eng.SetConcatMapping(field, ConcatRule{Separator: ";"})
	require.Error(t, err)

	var ruleErr *InvalidRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "Identifiant", ruleErr.Field)

	// Prior mapping unchanged after the failed call.
	row := eng.EvaluateRow([]string{"42", "Ada", "Lovelace", ""})
	assert.Equal(t, "42", row[0])
}

func TestSetConcatMappingBlankColumn(t *testing.T) {
	tmpl := testTemplate(t)
	eng := New(tmpl, testSource(t))

	err := eng.SetConcatMapping(tmpl.Fields()[0], ConcatRule{
		Sources: []ConcatSource{{Column: "  "}},
	})

	var ruleErr *InvalidRuleError
	require.ErrorAs(t, err, &ruleErr)
}

func TestReassignmentReplacesPriorMapping(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	field := tmpl.Fields()[0]
	idCol, _ := src.ColumnByName("id")
	eng.SetMapping(field, idCol)

	err := eng.SetConcatMapping(field, ConcatRule{
		Sources:   []ConcatSource{{Column: "first"}, {Column: "last"}},
		Separator: " ",
		SkipEmpty: true,
	})
	require.NoError(t, err)

	row := eng.EvaluateRow([]string{"1", "Ada", "Lovelace", ""})
	assert.Equal(t, "Ada Lovelace", row[0])

	firstCol, _ := src.ColumnByName("first")
	eng.SetMapping(field, firstCol)
	row = eng.EvaluateRow([]string{"1", "Ada", "Lovelace", ""})
	assert.Equal(t, "Ada", row[0])
}

func TestClearMapping(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	field := tmpl.Fields()[0]
	idCol, _ := src.ColumnByName("id")
	eng.SetMapping(field, idCol)
	require.True(t, eng.HasMapping(field))

	eng.ClearMapping(field)
	assert.False(t, eng.HasMapping(field))

	row := eng.EvaluateRow([]string{"1", "Ada", "Lovelace", ""})
	assert.Equal(t, "", row[0])
}

func TestEvaluateAllOrderAndCount(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	idCol, _ := src.ColumnByName("id")
	eng.SetMapping(tmpl.Fields()[0], idCol)

	var got []string
	for row := range eng.EvaluateAll(src.Rows()) {
		got = append(got, row[0])
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestEvaluateAllRestartable(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	idCol, _ := src.ColumnByName("id")
	eng.SetMapping(tmpl.Fields()[0], idCol)

	seq := eng.EvaluateAll(src.Rows())

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count(), "sequence replays from the start")

	// Early break must not consume the sequence.
	for range seq {
		break
	}
	assert.Equal(t, 3, count())
}

func TestEvaluateRowIdempotent(t *testing.T) {
	tmpl := testTemplate(t)
	src := testSource(t)
	eng := New(tmpl, src)

	err := eng.SetConcatMapping(tmpl.Fields()[2], ConcatRule{
		Sources:   []ConcatSource{{Column: "first", Prefix: "p:"}, {Column: "note"}},
		Separator: "; ",
		SkipEmpty: true,
		Dedupe:    true,
	})
	require.NoError(t, err)

	in := []string{"1", "Ada", "Lovelace", "pioneer"}
	first := eng.EvaluateRow(in)
	second := eng.EvaluateRow(in)
	assert.Equal(t, first, second)
}
