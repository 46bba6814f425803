// Package normalisers provides shared text-normalisation helpers used
// by the kind-specific normaliser subpackages: generic HTML-to-text
// flattening and diacritic stripping.
package normalisers
