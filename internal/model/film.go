package model

// Film represents a catalog title as stored in the `film` table.  Films and
// their physical copies are provisioned out-of-band by catalog management;
// this service only ever reads them.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – film title.
//  Description – optional synopsis.
//  ReleaseYear – optional release year.
type Film struct {
    ID          uint64  // film.film_id
    Title       string  // film.title
    Description *string // film.description (nullable)
    ReleaseYear *uint16 // film.release_year (nullable)
}
