// Package tex rewrites TeX math into Unicode text. Only content inside
// \( ... \) and \[ ... \] delimiters is touched; everything the static
// substitution pass cannot resolve is flagged so the caller can decide
// between an external natural-language conversion (retrieval format)
// and keeping the symbol-substituted text (generation format).
package tex

import (
	"regexp"
	"strings"
)

var (
	mathSpan    = regexp.MustCompile(`(?s)\\\((.*?)\\\)|\\\[(.*?)\\\]`)
	textCmd     = regexp.MustCompile(`\\text\{([^{}]*)\}`)
	fontCmd     = regexp.MustCompile(`\\(mathcal|mathbb|mathbf|mathit|mathsf|mathrm)\{([^{}]*)\}`)
	notCmd      = regexp.MustCompile(`\\not\s*\\([a-zA-Z]+)`)
	notEq       = regexp.MustCompile(`\\not\s*=`)
	sqrtCmd     = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	letterCmd   = regexp.MustCompile(`\\([a-zA-Z]+)`)
	leftRight   = regexp.MustCompile(`\\left|\\right`)
	singleShift = regexp.MustCompile(`\\[rb]([A-Za-z])\b`)
	thinSpace   = regexp.MustCompile(`\\[,;:]`)
)

// Normalise rewrites every math span in text, dropping the delimiters.
// The second return value reports whether any span still contains a
// backslash afterwards, meaning a command survived that substitution
// could not resolve.
func Normalise(text string) (string, bool) {
	residual := false
	out := mathSpan.ReplaceAllStringFunc(text, func(span string) string {
		inner := span[2 : len(span)-2]
		processed := processMath(inner)
		if strings.Contains(processed, `\`) {
			residual = true
		}
		return processed
	})
	return out, residual
}

// HasMath reports whether the text contains any math delimiters.
func HasMath(text string) bool {
	return mathSpan.MatchString(text)
}

// processMath runs the substitution pipeline over one span's content.
func processMath(s string) string {
	// (a) expand \text{...}, innermost first.
	for {
		next := textCmd.ReplaceAllString(s, "$1")
		if next == s {
			break
		}
		s = next
	}

	// (b) font-wrapping commands become Unicode style variants.
	for {
		next := fontCmd.ReplaceAllStringFunc(s, func(m string) string {
			sub := fontCmd.FindStringSubmatch(m)
			return styleString(sub[1], sub[2])
		})
		if next == s {
			break
		}
		s = next
	}

	// (c) negated relations.
	s = notEq.ReplaceAllString(s, "≠")
	s = notCmd.ReplaceAllStringFunc(s, func(m string) string {
		name := notCmd.FindStringSubmatch(m)[1]
		if g, ok := negated[name]; ok {
			return g
		}
		// Leave the relation for the symbol pass, negation prefixed.
		return "¬\\" + name
	})

	// (d) square roots.
	for {
		next := sqrtCmd.ReplaceAllString(s, "√($1)")
		if next == s {
			break
		}
		s = next
	}

	// (e) single-symbol commands, structural ones excluded.
	s = letterCmd.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1:]
		if structural[name] {
			return m
		}
		if sym, ok := symbols[name]; ok {
			return sym
		}
		return m
	})

	// (f) sizing commands carry no content.
	s = leftRight.ReplaceAllString(s, "")

	// (g) collapse custom single-letter typesetting escapes.
	s = singleShift.ReplaceAllString(s, "$1")

	// (h) spacing commands.
	s = thinSpace.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, `\!`, "")
	s = strings.ReplaceAll(s, `\quad`, " ")
	s = strings.ReplaceAll(s, `\qquad`, "  ")
	s = strings.ReplaceAll(s, `\ `, " ")
	s = strings.ReplaceAll(s, `\|`, "‖")

	// (i) unescape remaining braces.
	s = strings.ReplaceAll(s, `\{`, "{")
	s = strings.ReplaceAll(s, `\}`, "}")

	return s
}

// styleString maps each character of s to the Unicode variant for the
// given font command. Script and double-struck variants exist
// uppercase-only; other characters pass through unchanged.
func styleString(cmd, s string) string {
	var sb strings.Builder
	for _, r := range s {
		sb.WriteString(styleRune(cmd, r))
	}
	return sb.String()
}

// Letterlike Symbols predate the Mathematical Alphanumeric block and
// fill its holes.
var (
	doubleStruck = map[rune]rune{
		'C': 'ℂ', 'H': 'ℍ', 'N': 'ℕ', 'P': 'ℙ', 'Q': 'ℚ', 'R': 'ℝ', 'Z': 'ℤ',
	}
	script = map[rune]rune{
		'B': 'ℬ', 'E': 'ℰ', 'F': 'ℱ', 'H': 'ℋ', 'I': 'ℐ',
		'L': 'ℒ', 'M': 'ℳ', 'R': 'ℛ',
	}
)

func styleRune(cmd string, r rune) string {
	switch cmd {
	case "mathbb":
		if e, ok := doubleStruck[r]; ok {
			return string(e)
		}
		if r >= 'A' && r <= 'Z' {
			return string(rune(0x1D538 + r - 'A'))
		}
	case "mathcal":
		if e, ok := script[r]; ok {
			return string(e)
		}
		if r >= 'A' && r <= 'Z' {
			return string(rune(0x1D49C + r - 'A'))
		}
	case "mathbf":
		switch {
		case r >= 'A' && r <= 'Z':
			return string(rune(0x1D400 + r - 'A'))
		case r >= 'a' && r <= 'z':
			return string(rune(0x1D41A + r - 'a'))
		case r >= '0' && r <= '9':
			return string(rune(0x1D7CE + r - '0'))
		}
	case "mathit":
		switch {
		case r == 'h':
			return "ℎ"
		case r >= 'A' && r <= 'Z':
			return string(rune(0x1D434 + r - 'A'))
		case r >= 'a' && r <= 'z':
			return string(rune(0x1D44E + r - 'a'))
		}
	case "mathsf":
		switch {
		case r >= 'A' && r <= 'Z':
			return string(rune(0x1D5A0 + r - 'A'))
		case r >= 'a' && r <= 'z':
			return string(rune(0x1D5BA + r - 'a'))
		case r >= '0' && r <= '9':
			return string(rune(0x1D7E2 + r - '0'))
		}
	case "mathrm":
		// Upright is the plain form.
	}
	return string(r)
}
