package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"newshub/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested article or metadata row does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrCorruptLikedBy is returned when a stored liked_by value cannot be
// parsed. Single-row operations treat this as fatal for the request.
var ErrCorruptLikedBy = errors.New("failed to parse liked_by data")

const metadataKey = "refresh_count"

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "newshub.db")
	log.Printf("Initializing database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	for _, cat := range models.Categories {
		table := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			url TEXT,
			urlToImage TEXT,
			publishedAt TEXT NOT NULL,
			summary TEXT,
			content TEXT,
			language TEXT DEFAULT 'en',
			likes INTEGER NOT NULL DEFAULT 0,
			liked_by TEXT NOT NULL DEFAULT '[]'
		);`, cat.Table())
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table %s: %v", cat.Table(), err)
		}

		index := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_published_at ON %s(publishedAt DESC);",
			cat.Table(), cat.Table())
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index for %s: %v", cat.Table(), err)
		}
	}

	metadata := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0,
		last_refresh TEXT
	);`
	if _, err := db.Exec(metadata); err != nil {
		return fmt.Errorf("failed to create metadata table: %v", err)
	}

	return nil
}

// CheckTables verifies that every category table exists and is queryable.
func (s *SQLiteStorage) CheckTables() error {
	for _, cat := range models.Categories {
		query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", cat.Table())
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("table %s does not exist or is inaccessible: %v", cat.Table(), err)
		}
	}
	return nil
}

func (s *SQLiteStorage) ListArticles(cat models.Category) ([]models.Article, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, url, urlToImage, publishedAt, likes, liked_by, summary, content, language
		FROM %s ORDER BY publishedAt DESC`, cat.Table())

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s table: %v", cat.Table(), err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows, cat)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %v", err)
	}

	return articles, nil
}

func (s *SQLiteStorage) ListAllArticles(limit int) ([]models.Article, error) {
	var all []models.Article
	for _, cat := range models.Categories {
		articles, err := s.ListArticles(cat)
		if err != nil {
			return nil, err
		}
		for i := range articles {
			articles[i].Category = cat.String()
		}
		all = append(all, articles...)
	}

	// publishedAt is stored as ISO-8601 text, so lexicographic order is
	// chronological order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt > all[j].PublishedAt
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []models.Article{}
	}

	return all, nil
}

func (s *SQLiteStorage) GetArticle(cat models.Category, id int64) (*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, url, urlToImage, publishedAt, likes, liked_by, summary, content, language
		FROM %s WHERE id = ?`, cat.Table())

	row := s.db.QueryRow(query, id)

	var (
		article     models.Article
		description sql.NullString
		url         sql.NullString
		urlToImage  sql.NullString
		likedByJSON sql.NullString
		summary     sql.NullString
		content     sql.NullString
		language    sql.NullString
	)
	err := row.Scan(&article.ID, &article.Title, &description, &url, &urlToImage,
		&article.PublishedAt, &article.Likes, &likedByJSON, &summary, &content, &language)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article id %d in %s: %v", id, cat, err)
	}

	article.Description = description.String
	article.URL = url.String
	article.URLToImage = urlToImage.String
	article.Summary = summary.String
	article.Content = content.String
	article.Language = language.String
	article.Source = models.SourceFromURL(article.URL)

	likedBy, err := parseLikedBy(likedByJSON.String)
	if err != nil {
		log.Printf("Error parsing liked_by for id %d in %s: %v", id, cat, err)
		return nil, ErrCorruptLikedBy
	}
	article.LikedBy = likedBy

	return &article, nil
}

func (s *SQLiteStorage) ExistingTitles(cat models.Category) (map[string]struct{}, error) {
	query := fmt.Sprintf("SELECT title FROM %s", cat.Table())
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing titles for %s: %v", cat, err)
	}
	defer rows.Close()

	titles := make(map[string]struct{})
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title for %s: %v", cat, err)
		}
		titles[title] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during title iteration for %s: %v", cat, err)
	}

	return titles, nil
}

func (s *SQLiteStorage) InsertArticle(cat models.Category, article models.NewArticle) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, description, url, urlToImage, publishedAt, summary, content, language)
		VALUES (?, ?, ?, ?, ?, NULL, NULL, ?)`, cat.Table())

	_, err := s.db.Exec(query, article.Title, article.Description, article.URL,
		article.URLToImage, article.PublishedAt, article.Language)
	if err != nil {
		return fmt.Errorf("failed to insert article into %s table: %v", cat, err)
	}
	return nil
}

func (s *SQLiteStorage) PruneOlderThan(cat models.Category, cutoff string) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE publishedAt < ?", cat.Table())
	result, err := s.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to remove old entries from %s: %v", cat, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %v", cat, err)
	}
	return removed, nil
}

// ToggleLike adds or removes the username from the article's liked_by set
// and adjusts the like count to match. The read-modify-write runs inside a
// transaction so concurrent toggles cannot lose an update.
func (s *SQLiteStorage) ToggleLike(cat models.Category, id int64, username string) (*models.LikeState, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				log.Printf("Warning: failed to rollback like toggle: %v", err)
			}
		}
	}()

	query := fmt.Sprintf("SELECT likes, liked_by FROM %s WHERE id = ?", cat.Table())
	var (
		likes       int
		likedByJSON sql.NullString
	)
	err = tx.QueryRow(query, id).Scan(&likes, &likedByJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article id %d in %s: %v", id, cat, err)
	}

	likedBy, err := parseLikedBy(likedByJSON.String)
	if err != nil {
		log.Printf("Error parsing liked_by for id %d in %s: %v", id, cat, err)
		return nil, ErrCorruptLikedBy
	}

	found := false
	for i, user := range likedBy {
		if user == username {
			likedBy = append(likedBy[:i], likedBy[i+1:]...)
			found = true
			break
		}
	}

	if found {
		likes--
		if likes < 0 {
			likes = 0
		}
	} else {
		likedBy = append(likedBy, username)
		likes++
	}

	updatedJSON, err := json.Marshal(likedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize liked_by for id %d in %s: %v", id, cat, err)
	}

	update := fmt.Sprintf("UPDATE %s SET likes = ?, liked_by = ? WHERE id = ?", cat.Table())
	if _, err := tx.Exec(update, likes, string(updatedJSON), id); err != nil {
		return nil, fmt.Errorf("failed to update likes for id %d in %s: %v", id, cat, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit like toggle: %v", err)
	}
	committed = true

	return &models.LikeState{Likes: likes, LikedBy: likedBy}, nil
}

func (s *SQLiteStorage) SetSummary(cat models.Category, id int64, summary, content string) error {
	query := fmt.Sprintf("UPDATE %s SET summary = ?, content = ? WHERE id = ?", cat.Table())
	if _, err := s.db.Exec(query, summary, content, id); err != nil {
		return fmt.Errorf("failed to store summary and content for id %d in %s: %v", id, cat, err)
	}
	return nil
}

func (s *SQLiteStorage) RefreshCount() (int, error) {
	var value int
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", metadataKey).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch refresh count: %v", err)
	}
	return value, nil
}

func (s *SQLiteStorage) SetRefreshState(count int, lastRefresh string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value, last_refresh) VALUES (?, ?, ?)",
		metadataKey, count, lastRefresh)
	if err != nil {
		return fmt.Errorf("failed to update refresh count and last_refresh: %v", err)
	}
	return nil
}

func (s *SQLiteStorage) LastRefresh() (string, error) {
	var lastRefresh sql.NullString
	err := s.db.QueryRow("SELECT last_refresh FROM metadata WHERE key = ?", metadataKey).Scan(&lastRefresh)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch last_refresh: %v", err)
	}
	if !lastRefresh.Valid || lastRefresh.String == "" {
		return "", ErrNotFound
	}
	return lastRefresh.String, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Rows and *sql.Row
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanArticle maps one row to the public article shape. A malformed
// liked_by value is logged and defaulted to empty here, so one bad row
// cannot fail a whole list response.
func scanArticle(row scanner, cat models.Category) (*models.Article, error) {
	var (
		article     models.Article
		description sql.NullString
		url         sql.NullString
		urlToImage  sql.NullString
		likedByJSON sql.NullString
		summary     sql.NullString
		content     sql.NullString
		language    sql.NullString
	)
	err := row.Scan(&article.ID, &article.Title, &description, &url, &urlToImage,
		&article.PublishedAt, &article.Likes, &likedByJSON, &summary, &content, &language)
	if err != nil {
		return nil, fmt.Errorf("failed to scan article in %s: %v", cat, err)
	}

	article.Description = description.String
	article.URL = url.String
	article.URLToImage = urlToImage.String
	article.Summary = summary.String
	article.Content = content.String
	article.Language = language.String
	article.Source = models.SourceFromURL(article.URL)

	likedBy, err := parseLikedBy(likedByJSON.String)
	if err != nil {
		log.Printf("Warning: failed to parse liked_by for id %d in %s: %v", article.ID, cat, err)
		likedBy = []string{}
	}
	article.LikedBy = likedBy

	return &article, nil
}

func parseLikedBy(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var likedBy []string
	if err := json.Unmarshal([]byte(raw), &likedBy); err != nil {
		return nil, err
	}
	if likedBy == nil {
		likedBy = []string{}
	}
	return likedBy, nil
}
