package tex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormaliseSymbols(t *testing.T) {
	out, residual := Normalise(`Let \(\alpha \in \mathbb{R}\) be given.`)
	assert.False(t, residual)
	assert.Equal(t, "Let α ∈ ℝ be given.", out)
}

func TestNormaliseOutsideDelimitersUntouched(t *testing.T) {
	in := `\alpha stays literal outside math`
	out, residual := Normalise(in)
	assert.False(t, residual)
	assert.Equal(t, in, out)
}

func TestNormaliseDisplayMath(t *testing.T) {
	out, residual := Normalise(`\[x \ne y\]`)
	assert.False(t, residual)
	assert.Equal(t, "x ≠ y", out)
}

func TestNormaliseTextCommand(t *testing.T) {
	out, residual := Normalise(`\(n \text{ is even}\)`)
	assert.False(t, residual)
	assert.Equal(t, "n  is even", out)
}

func TestNormaliseFontVariants(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`\(\mathbb{NQZ}\)`, "ℕℚℤ"},
		{`\(\mathbb{A}\)`, "𝔸"},
		{`\(\mathcal{H}\)`, "ℋ"},
		{`\(\mathcal{A}\)`, "𝒜"},
		{`\(\mathbf{Av9}\)`, "𝐀𝐯𝟗"},
		{`\(\mathit{h}\)`, "ℎ"},
		{`\(\mathsf{Go}\)`, "𝖦𝗈"},
		{`\(\mathrm{d}x\)`, "dx"},
	}
	for _, tc := range cases {
		out, residual := Normalise(tc.in)
		assert.False(t, residual, tc.in)
		assert.Equal(t, tc.want, out, tc.in)
	}
}

func TestNormaliseScriptLowercasePassesThrough(t *testing.T) {
	// Script and double-struck variants are uppercase-only.
	out, _ := Normalise(`\(\mathcal{ab}\)`)
	assert.Equal(t, "ab", out)
	out, _ = Normalise(`\(\mathbb{xy}\)`)
	assert.Equal(t, "xy", out)
}

func TestNormaliseNegatedRelations(t *testing.T) {
	out, residual := Normalise(`\(x \not\in S\)`)
	assert.False(t, residual)
	assert.Equal(t, "x ∉ S", out)

	out, residual = Normalise(`\(a \not\subseteq b\)`)
	assert.False(t, residual)
	assert.Equal(t, "a ⊈ b", out)

	// Unmapped negations get a prefixed negation sign.
	out, residual = Normalise(`\(a \not\asymp b\)`)
	assert.False(t, residual)
	assert.Equal(t, "a ¬≍ b", out)
}

func TestNormaliseSqrt(t *testing.T) {
	out, residual := Normalise(`\(\sqrt{x+1}\)`)
	assert.False(t, residual)
	assert.Equal(t, "√(x+1)", out)
}

func TestNormaliseStructuralCommandsSurvive(t *testing.T) {
	out, residual := Normalise(`\(\sum_{i=1}^n i\)`)
	assert.True(t, residual)
	assert.Contains(t, out, `\sum`)

	out, residual = Normalise(`\(\frac{a}{b}\)`)
	assert.True(t, residual)
	assert.Contains(t, out, `\frac`)
}

func TestNormaliseLeftRightDropped(t *testing.T) {
	out, residual := Normalise(`\(\left( x \right)\)`)
	assert.False(t, residual)
	assert.Equal(t, "( x )", out)
}

func TestNormaliseSpacing(t *testing.T) {
	out, residual := Normalise(`\(a\,b\;c\!d\quad e\)`)
	assert.False(t, residual)
	assert.Equal(t, "a b cd e", out)
}

func TestNormaliseBraceUnescape(t *testing.T) {
	out, residual := Normalise(`\(\{1, 2\}\)`)
	assert.False(t, residual)
	assert.Equal(t, "{1, 2}", out)
}

func TestNormaliseIdempotent(t *testing.T) {
	inputs := []string{
		`\(\alpha + \beta \le \gamma\)`,
		`\(\mathbb{R}^n \to \mathbb{R}\)`,
		`\(x \not\in \{1, 2\}\)`,
		`\(\sqrt{2} \approx 1.414\)`,
	}
	for _, in := range inputs {
		once, _ := Normalise(in)
		twice, _ := Normalise(once)
		assert.Equal(t, once, twice, in)
	}
}

func TestNormaliseMultipleSpans(t *testing.T) {
	out, residual := Normalise(`If \(x \in A\) and \(y \notin B\), done.`)
	assert.False(t, residual)
	assert.Equal(t, "If x ∈ A and y ∉ B, done.", out)
}

func TestHasMath(t *testing.T) {
	assert.True(t, HasMath(`prefix \(x\) suffix`))
	assert.True(t, HasMath(`\[display\]`))
	assert.False(t, HasMath(`nothing here`))
}
