package services

import (
	"context"
	"strings"
	"sync"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/logger"
	"github.com/calliope-labs/calliope/internal/normalisers"
	"github.com/calliope-labs/calliope/internal/normalisers/list"
	"github.com/calliope-labs/calliope/internal/normalisers/table"
	"github.com/calliope-labs/calliope/internal/normalisers/tex"
)

// UnitBuilder renders section items into aligned (retrieval,
// generation) unit pairs, batching the external conversion calls a
// section needs into two requests.
type UnitBuilder struct {
	converter driven.Converter
}

// NewUnitBuilder creates a unit builder. The converter is optional
// (can be nil); without it, deterministic fallback text is used for
// table summaries and residual math.
func NewUnitBuilder(converter driven.Converter) *UnitBuilder {
	return &UnitBuilder{converter: converter}
}

// pendingConversion marks a unit whose retrieval text needs an
// external call, keyed by its position in the output slice.
type pendingConversion struct {
	unitIndex int
	text      string
}

// Build converts a section's items into unit pairs. Output order
// matches item order; items empty on both sides are dropped, but an
// item non-empty on only one side is kept so alignment survives
// asymmetric emptiness. External-call failures fall back to the
// pre-call text and never fail the section.
func (b *UnitBuilder) Build(
	ctx context.Context, items []domain.SectionItem, articleTitle, sectionHeading string,
) []domain.Unit {
	units := make([]domain.Unit, len(items))
	var mathPending, tablePending []pendingConversion

	for i, item := range items {
		switch item.Kind {
		case domain.ItemList:
			generation, _ := tex.Normalise(list.Convert(item.HTML, true))
			retrieval, residual := tex.Normalise(list.Convert(item.HTML, false))
			units[i] = domain.Unit{RetrievalText: retrieval, GenerationText: generation}
			if residual {
				mathPending = append(mathPending, pendingConversion{i, retrieval})
			}

		case domain.ItemTable:
			markdown, _ := tex.Normalise(table.ToMarkdown(item.HTML))
			units[i] = domain.Unit{
				RetrievalText:  table.Fallback(markdown),
				GenerationText: markdown,
			}
			tablePending = append(tablePending, pendingConversion{i, markdown})

		default:
			// paragraph, pre, blockquote, figure and other all take
			// the generic flatten-then-TeX path.
			flat := normalisers.FlattenHTML(item.HTML)
			processed, residual := tex.Normalise(flat)
			units[i] = domain.Unit{RetrievalText: processed, GenerationText: processed}
			if residual {
				mathPending = append(mathPending, pendingConversion{i, processed})
			}
		}
	}

	b.convertPending(ctx, units, mathPending, tablePending, articleTitle, sectionHeading)

	// Retrieval text is diacritic-free regardless of path.
	out := make([]domain.Unit, 0, len(units))
	for _, u := range units {
		u.RetrievalText = normalisers.StripDiacritics(strings.TrimSpace(u.RetrievalText))
		u.GenerationText = strings.TrimSpace(u.GenerationText)
		if u.RetrievalText == "" && u.GenerationText == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}

// convertPending issues the section's two external batches in
// parallel and writes successful results back onto the retrieval side,
// keyed by original index rather than completion order.
func (b *UnitBuilder) convertPending(
	ctx context.Context,
	units []domain.Unit,
	mathPending, tablePending []pendingConversion,
	articleTitle, sectionHeading string,
) {
	if b.converter == nil || (len(mathPending) == 0 && len(tablePending) == 0) {
		return
	}

	var wg sync.WaitGroup

	if len(mathPending) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			texts := make([]string, len(mathPending))
			for i, p := range mathPending {
				texts[i] = p.text
			}
			converted, err := b.converter.ConvertMath(ctx, texts, articleTitle, sectionHeading)
			if err != nil || len(converted) != len(mathPending) {
				logger.Warn("Math conversion failed, keeping substituted text: %v", err)
				return
			}
			for i, p := range mathPending {
				if strings.TrimSpace(converted[i]) != "" {
					units[p.unitIndex].RetrievalText = converted[i]
				}
			}
		}()
	}

	if len(tablePending) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tables := make([]string, len(tablePending))
			for i, p := range tablePending {
				tables[i] = p.text
			}
			summaries, err := b.converter.SummarizeTables(ctx, tables, articleTitle, sectionHeading)
			if err != nil || len(summaries) != len(tablePending) {
				logger.Warn("Table summarisation failed, keeping markdown fallback: %v", err)
				return
			}
			for i, p := range tablePending {
				if strings.TrimSpace(summaries[i]) != "" {
					units[p.unitIndex].RetrievalText = summaries[i]
				}
			}
		}()
	}

	wg.Wait()
}
