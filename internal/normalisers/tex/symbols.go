package tex

// structural lists commands that need structural rather than 1:1
// handling and must stay literal through symbol substitution.
var structural = map[string]bool{
	"sum": true, "int": true, "prod": true, "lim": true,
	"bigcup": true, "bigcap": true, "frac": true, "sqrt": true,
	"hat": true, "bar": true, "vec": true, "dot": true, "tilde": true,
	"begin": true, "end": true,
}

// symbols maps single-symbol TeX commands to their Unicode equivalents.
var symbols = map[string]string{
	// Greek lowercase.
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ",
	"epsilon": "ε", "varepsilon": "ε", "zeta": "ζ", "eta": "η",
	"theta": "θ", "vartheta": "ϑ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π",
	"varpi": "ϖ", "rho": "ρ", "varrho": "ϱ", "sigma": "σ",
	"varsigma": "ς", "tau": "τ", "upsilon": "υ", "phi": "φ",
	"varphi": "ϕ", "chi": "χ", "psi": "ψ", "omega": "ω",

	// Greek uppercase.
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ",
	"Xi": "Ξ", "Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ",
	"Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",

	// Binary operators.
	"pm": "±", "mp": "∓", "times": "×", "div": "÷", "cdot": "⋅",
	"ast": "∗", "star": "⋆", "circ": "∘", "bullet": "•",
	"cap": "∩", "cup": "∪", "sqcap": "⊓", "sqcup": "⊔",
	"vee": "∨", "wedge": "∧", "lor": "∨", "land": "∧",
	"setminus": "∖", "oplus": "⊕", "ominus": "⊖", "otimes": "⊗",
	"oslash": "⊘", "odot": "⊙", "dagger": "†", "ddagger": "‡",
	"amalg": "⨿", "wr": "≀",

	// Relations.
	"le": "≤", "leq": "≤", "ge": "≥", "geq": "≥", "ne": "≠",
	"neq": "≠", "equiv": "≡", "sim": "∼", "simeq": "≃",
	"approx": "≈", "cong": "≅", "propto": "∝", "prec": "≺",
	"succ": "≻", "preceq": "⪯", "succeq": "⪰", "ll": "≪",
	"gg": "≫", "subset": "⊂", "supset": "⊃", "subseteq": "⊆",
	"supseteq": "⊇", "sqsubseteq": "⊑", "sqsupseteq": "⊒",
	"in": "∈", "ni": "∋", "notin": "∉", "mid": "∣",
	"parallel": "∥", "perp": "⊥", "models": "⊨", "vdash": "⊢",
	"dashv": "⊣", "asymp": "≍", "doteq": "≐", "bowtie": "⋈",

	// Arrows.
	"leftarrow": "←", "gets": "←", "rightarrow": "→", "to": "→",
	"uparrow": "↑", "downarrow": "↓", "leftrightarrow": "↔",
	"Leftarrow": "⇐", "Rightarrow": "⇒", "Leftrightarrow": "⇔",
	"mapsto": "↦", "hookrightarrow": "↪", "hookleftarrow": "↩",
	"longrightarrow": "⟶", "longleftarrow": "⟵",
	"longmapsto": "⟼", "implies": "⟹", "iff": "⟺",
	"nearrow": "↗", "searrow": "↘", "swarrow": "↙", "nwarrow": "↖",
	"rightharpoonup": "⇀", "leftharpoonup": "↼",

	// Miscellaneous.
	"infty": "∞", "partial": "∂", "nabla": "∇", "forall": "∀",
	"exists": "∃", "nexists": "∄", "emptyset": "∅",
	"varnothing": "∅", "aleph": "ℵ", "hbar": "ℏ", "ell": "ℓ",
	"Re": "ℜ", "Im": "ℑ", "wp": "℘", "angle": "∠",
	"triangle": "△", "top": "⊤", "bot": "⊥", "neg": "¬",
	"lnot": "¬", "surd": "√", "flat": "♭", "natural": "♮",
	"sharp": "♯", "clubsuit": "♣", "diamondsuit": "♢",
	"heartsuit": "♡", "spadesuit": "♠", "prime": "′",
	"therefore": "∴", "because": "∵", "degree": "°",
	"cdots": "⋯", "ldots": "…", "dots": "…", "ddots": "⋱",
	"vdots": "⋮", "circledast": "⊛",

	// Delimiters.
	"langle": "⟨", "rangle": "⟩", "lceil": "⌈", "rceil": "⌉",
	"lfloor": "⌊", "rfloor": "⌋", "lVert": "‖",
	"rVert": "‖", "lvert": "|", "rvert": "|",

	// Named operators kept as words.
	"sin": "sin", "cos": "cos", "tan": "tan", "cot": "cot",
	"sec": "sec", "csc": "csc", "arcsin": "arcsin",
	"arccos": "arccos", "arctan": "arctan", "sinh": "sinh",
	"cosh": "cosh", "tanh": "tanh", "log": "log", "ln": "ln",
	"lg": "lg", "exp": "exp", "det": "det", "dim": "dim",
	"ker": "ker", "deg": "deg", "gcd": "gcd", "min": "min",
	"max": "max", "inf": "inf", "sup": "sup", "arg": "arg",
	"mod": "mod", "bmod": "mod", "Pr": "Pr",
}

// negated maps relation commands to their single negated glyph when
// preceded by \not.
var negated = map[string]string{
	"in": "∉", "ni": "∌", "subset": "⊄", "supset": "⊅",
	"subseteq": "⊈", "supseteq": "⊉", "equiv": "≢", "sim": "≁",
	"simeq": "≄", "approx": "≉", "cong": "≇", "le": "≰",
	"leq": "≰", "ge": "≱", "geq": "≱", "prec": "⊀", "succ": "⊁",
	"mid": "∤", "parallel": "∦", "exists": "∄",
	"rightarrow": "↛", "leftarrow": "↚", "Rightarrow": "⇏",
	"Leftarrow": "⇍",
}
