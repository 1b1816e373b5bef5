package storage

import (
	"newshub/internal/models"
)

// Store defines the content store operations the worker needs. One table
// per category plus a single metadata row tracking refresh state.
type Store interface {
	// CheckTables verifies every category table is queryable. The refresh
	// routine fails fast on the whole run if any table is missing.
	CheckTables() error

	ListArticles(cat models.Category) ([]models.Article, error)
	ListAllArticles(limit int) ([]models.Article, error)
	GetArticle(cat models.Category, id int64) (*models.Article, error)

	ExistingTitles(cat models.Category) (map[string]struct{}, error)
	InsertArticle(cat models.Category, article models.NewArticle) error
	PruneOlderThan(cat models.Category, cutoff string) (int64, error)

	ToggleLike(cat models.Category, id int64, username string) (*models.LikeState, error)
	SetSummary(cat models.Category, id int64, summary, content string) error

	RefreshCount() (int, error)
	SetRefreshState(count int, lastRefresh string) error
	LastRefresh() (string, error)

	Close() error
}
