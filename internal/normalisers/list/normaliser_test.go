package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerNumeric(t *testing.T) {
	assert.Equal(t, "1", Marker('1', 1))
	assert.Equal(t, "12", Marker('1', 12))
	assert.Equal(t, "0", Marker('1', 0))
	assert.Equal(t, "-2", Marker('1', -2))
}

func TestMarkerAlpha(t *testing.T) {
	assert.Equal(t, "a", Marker('a', 1))
	assert.Equal(t, "z", Marker('a', 26))
	assert.Equal(t, "aa", Marker('a', 27))
	assert.Equal(t, "ab", Marker('a', 28))
	assert.Equal(t, "AZ", Marker('A', 52))
	// Below the alphabet domain falls back to decimal.
	assert.Equal(t, "0", Marker('a', 0))
	assert.Equal(t, "-1", Marker('A', -1))
}

func TestMarkerRoman(t *testing.T) {
	assert.Equal(t, "i", Marker('i', 1))
	assert.Equal(t, "iv", Marker('i', 4))
	assert.Equal(t, "xlii", Marker('i', 42))
	assert.Equal(t, "MMMCMXCIX", Marker('I', 3999))
	// Outside 1..3999 falls back to decimal.
	assert.Equal(t, "4000", Marker('I', 4000))
	assert.Equal(t, "0", Marker('i', 0))
}

func TestConvertOrderedWithStart(t *testing.T) {
	in := `<ol type="a" start="3"><li>x</li><li>y</li></ol>`
	assert.Equal(t, "c. x\nd. y", Convert(in, true))
	assert.Equal(t, "x\ny", Convert(in, false))
}

func TestConvertReversed(t *testing.T) {
	in := `<ol start="3" reversed><li>x</li><li>y</li><li>z</li></ol>`
	assert.Equal(t, "3. x\n2. y\n1. z", Convert(in, true))
}

func TestConvertUnknownTypeFallsBackToNumeric(t *testing.T) {
	in := `<ol type="q"><li>x</li><li>y</li></ol>`
	assert.Equal(t, "1. x\n2. y", Convert(in, true))
}

func TestConvertUnordered(t *testing.T) {
	in := `<ul><li>alpha</li><li>beta</li></ul>`
	assert.Equal(t, "- alpha\n- beta", Convert(in, true))
	assert.Equal(t, "alpha\nbeta", Convert(in, false))
}

func TestConvertEmptyList(t *testing.T) {
	assert.Equal(t, "", Convert(`<ul></ul>`, true))
	assert.Equal(t, "", Convert(`<ol></ol>`, false))
}

func TestConvertSingleItem(t *testing.T) {
	assert.Equal(t, "1. only", Convert(`<ol><li>only</li></ol>`, true))
}

func TestConvertNestedUnorderedUnderOrdered(t *testing.T) {
	in := `<ol><li>parent<ul><li>child one</li><li>child two</li></ul></li></ol>`
	want := "1. parent\n  - child one\n  - child two"
	assert.Equal(t, want, Convert(in, true))

	wantBare := "parent\n  child one\n  child two"
	assert.Equal(t, wantBare, Convert(in, false))
}

func TestConvertDeeplyNested(t *testing.T) {
	in := `<ul><li>a<ul><li>b<ol><li>c</li></ol></li></ul></li></ul>`
	want := "- a\n  - b\n    1. c"
	assert.Equal(t, want, Convert(in, true))
}

func TestConvertListOnlyItemStaysUnindented(t *testing.T) {
	// A parent item with no text of its own does not indent its
	// nested list.
	in := `<ol><li><ul><li>inner</li></ul></li></ol>`
	assert.Equal(t, "- inner", Convert(in, true))
}

func TestConvertStartAndReversedCombined(t *testing.T) {
	in := `<ol type="i" start="2" reversed><li>x</li><li>y</li></ol>`
	// 2 counts down to 1.
	assert.Equal(t, "ii. x\ni. y", Convert(in, true))
}

func TestConvertStripsMarkerLikePrefixes(t *testing.T) {
	in := `<ul><li>1. already numbered</li><li>• already bulleted</li></ul>`
	assert.Equal(t, "already numbered\nalready bulleted", Convert(in, false))
}

func TestConvertMixedContentAroundList(t *testing.T) {
	in := `<div><p>intro</p><ul><li>item</li></ul></div>`
	assert.Equal(t, "intro\n\n- item", Convert(in, true))
}
