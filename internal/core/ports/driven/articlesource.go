package driven

import (
	"context"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// ArticleSource fetches encyclopedia article pages and splits them into
// heading-bounded sections.
type ArticleSource interface {
	// FetchArticle retrieves an article by ID and returns it with its
	// raw section HTML populated. Returns domain.ErrNotFound when the
	// article doesn't exist upstream.
	FetchArticle(ctx context.Context, articleID string) (domain.Article, error)

	// FetchPage retrieves the full page HTML for an article, used to
	// resolve figure descriptions that live outside section bodies.
	FetchPage(ctx context.Context, articleID string) (string, error)
}
