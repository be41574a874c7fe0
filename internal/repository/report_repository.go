package repository

import (
    "context"
    "database/sql"
)

// ReportRepo serves the read-only landing page projections.  These queries
// aggregate over the whole rental history, which is why their routes sit
// behind the response cache.
type ReportRepo struct {
    db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// TopFilm is one row of the top-rented-films report.
type TopFilm struct {
    FilmID   uint64 `json:"film_id"`
    Title    string `json:"title"`
    Category string `json:"category_name"`
    Rented   uint64 `json:"rented"`
}

// TopActor is one row of the top-actors report.
type TopActor struct {
    ActorID   uint64 `json:"actor_id"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Movies    uint64 `json:"movies"`
}

// TopRentedFilms returns the most rented films of all time with their
// category, ordered by rental count descending.
func (r *ReportRepo) TopRentedFilms(ctx context.Context, limit int) ([]TopFilm, error) {
    if limit <= 0 {
        limit = 5
    }
    const q = `SELECT f.film_id, f.title, c.name AS category_name,
                      COUNT(r.rental_id) AS rented
               FROM film f
               JOIN inventory i ON f.film_id = i.film_id
               JOIN rental r ON i.inventory_id = r.inventory_id
               JOIN film_category fc ON f.film_id = fc.film_id
               JOIN category c ON fc.category_id = c.category_id
               GROUP BY f.film_id, f.title, c.name
               ORDER BY rented DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    films := make([]TopFilm, 0, limit)
    for rows.Next() {
        var f TopFilm
        if err := rows.Scan(&f.FilmID, &f.Title, &f.Category, &f.Rented); err != nil {
            return nil, err
        }
        films = append(films, f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return films, nil
}

// TopActors returns the actors appearing in the most films in the store,
// ordered by film count descending.
func (r *ReportRepo) TopActors(ctx context.Context, limit int) ([]TopActor, error) {
    if limit <= 0 {
        limit = 5
    }
    const q = `SELECT actor.actor_id, actor.first_name, actor.last_name,
                      COUNT(film_actor.film_id) AS movies
               FROM actor
               JOIN film_actor ON actor.actor_id = film_actor.actor_id
               GROUP BY actor.actor_id
               ORDER BY movies DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    actors := make([]TopActor, 0, limit)
    for rows.Next() {
        var a TopActor
        if err := rows.Scan(&a.ActorID, &a.FirstName, &a.LastName, &a.Movies); err != nil {
            return nil, err
        }
        actors = append(actors, a)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return actors, nil
}
