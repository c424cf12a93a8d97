package sqlite

import (
	"context"
	"fmt"

	"github.com/snipvault/snipvault/internal/model"
	"github.com/snipvault/snipvault/internal/repository"
)

// compile-time check that *DB implements repository.LanguageRepository
var _ repository.LanguageRepository = (*DB)(nil)

func (db *DB) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, slug FROM languages ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing languages: %w", err)
	}
	defer rows.Close()

	languages := []model.Language{}
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning language row: %w", err)
		}
		languages = append(languages, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating languages: %w", err)
	}

	return languages, nil
}
