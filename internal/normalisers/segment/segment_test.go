package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

func kinds(items []domain.SectionItem) []domain.ItemKind {
	out := make([]domain.ItemKind, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}

func TestItemsDirectElements(t *testing.T) {
	items := Items(`<p>a</p><ul><li>b</li></ul><table><tr><td>c</td></tr></table><pre>d</pre><blockquote>e</blockquote><figure>f</figure>`)

	assert.Equal(t, []domain.ItemKind{
		domain.ItemParagraph,
		domain.ItemList,
		domain.ItemTable,
		domain.ItemPre,
		domain.ItemBlockquote,
		domain.ItemFigure,
	}, kinds(items))
}

func TestItemsBareTextBecomesParagraph(t *testing.T) {
	items := Items(`some loose text<p>real paragraph</p>`)

	require.Len(t, items, 2)
	assert.Equal(t, domain.ItemParagraph, items[0].Kind)
	assert.Equal(t, "some loose text", items[0].HTML)
	assert.Equal(t, domain.ItemParagraph, items[1].Kind)
}

func TestItemsWhitespaceTextSkipped(t *testing.T) {
	items := Items("\n\t  <p>x</p>  \n")

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemParagraph, items[0].Kind)
}

func TestItemsUnknownTagIsOther(t *testing.T) {
	items := Items(`<aside>note</aside>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemOther, items[0].Kind)
}

func TestItemsDivWithFigureClass(t *testing.T) {
	items := Items(`<div class="figure" id="fig1"><img src="a.png"></div>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemFigure, items[0].Kind)
	assert.Contains(t, items[0].HTML, `id="fig1"`)
}

func TestItemsDivLiftsStructuralChild(t *testing.T) {
	items := Items(`<div class="wrap"><table><tr><td>x</td></tr></table></div>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemTable, items[0].Kind)
	assert.NotContains(t, items[0].HTML, "wrap")
}

func TestItemsDivLiftsList(t *testing.T) {
	items := Items(`<div><ol><li>one</li></ol></div>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemList, items[0].Kind)
}

func TestItemsDivWithOnlyTextIsParagraph(t *testing.T) {
	items := Items(`<div>plain <b>bold</b> text</div>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemParagraph, items[0].Kind)
	assert.Contains(t, items[0].HTML, "bold")
}

func TestItemsEmptyDivSkipped(t *testing.T) {
	items := Items(`<div>   </div><p>x</p>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemParagraph, items[0].Kind)
}

func TestItemsHeadingTerminatesWalk(t *testing.T) {
	items := Items(`<p>before</p><h2>Next section</h2><p>after</p>`)

	require.Len(t, items, 1)
	assert.Contains(t, items[0].HTML, "before")
}

func TestItemsSectionWrapperUnwrapped(t *testing.T) {
	items := Items(`<section><ul><li>a</li></ul></section>`)

	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemList, items[0].Kind)
}

func TestItemsEmptyInput(t *testing.T) {
	assert.Empty(t, Items(""))
}
