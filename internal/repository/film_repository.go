package repository

import (
    "context"
    "database/sql"

    "github.com/moviekiosk/film-rental/internal/model"
)

// FilmRepo provides read access to the film catalog.  Films are provisioned
// out-of-band; this service never writes to the film table.
type FilmRepo struct {
    db *sql.DB
}

// NewFilmRepo returns a new FilmRepo bound to the given database.
func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{db: db} }

// ExistsTx reports whether a film id exists, inside an existing transaction
// so that rent and availability observe the same snapshot as the allocation
// queries that follow.
func (r *FilmRepo) ExistsTx(ctx context.Context, tx *sql.Tx, filmID uint64) (bool, error) {
    var one int
    err := tx.QueryRowContext(ctx, `SELECT 1 FROM film WHERE film_id = ?`, filmID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// GetByID returns a single film or ErrFilmNotFound.
func (r *FilmRepo) GetByID(ctx context.Context, filmID uint64) (*model.Film, error) {
    const q = `SELECT film_id, title, description, release_year FROM film WHERE film_id = ?`
    var f model.Film
    var desc sql.NullString
    var year sql.NullInt64
    err := r.db.QueryRowContext(ctx, q, filmID).Scan(&f.ID, &f.Title, &desc, &year)
    if err == sql.ErrNoRows {
        return nil, ErrFilmNotFound
    }
    if err != nil {
        return nil, err
    }
    if desc.Valid {
        d := desc.String
        f.Description = &d
    }
    if year.Valid {
        y := uint16(year.Int64)
        f.ReleaseYear = &y
    }
    return &f, nil
}

// Search lists films whose title contains the given fragment, ordered by
// title for deterministic output.  An empty fragment lists the catalog up to
// the limit.  Case sensitivity follows the column collation.
func (r *FilmRepo) Search(ctx context.Context, title string, limit int) ([]model.Film, error) {
    if limit <= 0 || limit > 200 {
        limit = 50
    }
    const q = `SELECT film_id, title, description, release_year
               FROM film
               WHERE title LIKE CONCAT('%', ?, '%')
               ORDER BY title, film_id
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, title, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    films := make([]model.Film, 0)
    for rows.Next() {
        var f model.Film
        var desc sql.NullString
        var year sql.NullInt64
        if err := rows.Scan(&f.ID, &f.Title, &desc, &year); err != nil {
            return nil, err
        }
        if desc.Valid {
            d := desc.String
            f.Description = &d
        }
        if year.Valid {
            y := uint16(year.Int64)
            f.ReleaseYear = &y
        }
        films = append(films, f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return films, nil
}
