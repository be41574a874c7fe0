package repository

import (
    "context"
    "database/sql"
)

// LocationRepo resolves the country → city → address hierarchy by natural
// key, creating rows lazily on first use.  Every level uses the same MySQL
// upsert primitive:
//
//   INSERT ... ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
//
// backed by a unique index on the natural key.  A fresh insert returns the
// new id; a collision makes LAST_INSERT_ID echo the existing row's id.
// Either way LastInsertId() yields the one surviving row, so concurrent
// first-creation races converge without a check-then-insert window and
// repeated identical calls return identical ids.
type LocationRepo struct {
    db *sql.DB
}

// NewLocationRepo returns a new LocationRepo bound to the given database.
func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

// LocationInput carries the address fields of a customer create or update.
type LocationInput struct {
    Country    string
    City       string
    Address    string
    Address2   string
    District   string
    PostalCode string
    Phone      string
}

// UpsertCountryTx finds or creates a country by name and returns its id.
func (r *LocationRepo) UpsertCountryTx(ctx context.Context, tx *sql.Tx, name string) (uint64, error) {
    const q = `INSERT INTO country (country) VALUES (?)
               ON DUPLICATE KEY UPDATE country_id = LAST_INSERT_ID(country_id)`
    res, err := tx.ExecContext(ctx, q, name)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// UpsertCityTx finds or creates a city by (name, country) and returns its id.
func (r *LocationRepo) UpsertCityTx(ctx context.Context, tx *sql.Tx, name string, countryID uint64) (uint64, error) {
    const q = `INSERT INTO city (city, country_id) VALUES (?, ?)
               ON DUPLICATE KEY UPDATE city_id = LAST_INSERT_ID(city_id)`
    res, err := tx.ExecContext(ctx, q, name, countryID)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// UpsertAddressTx finds or creates an address by (street line, city) and
// returns its id.  Secondary fields are refreshed in place on collision so a
// customer edit can correct district, postal code or phone without minting a
// duplicate address row.
func (r *LocationRepo) UpsertAddressTx(ctx context.Context, tx *sql.Tx, in LocationInput, cityID uint64) (uint64, error) {
    const q = `INSERT INTO address (address, address2, district, city_id, postal_code, phone)
               VALUES (?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                   address_id  = LAST_INSERT_ID(address_id),
                   address2    = VALUES(address2),
                   district    = VALUES(district),
                   postal_code = VALUES(postal_code),
                   phone       = VALUES(phone)`
    res, err := tx.ExecContext(ctx, q, in.Address, nullIfEmpty(in.Address2), in.District, cityID, nullIfEmpty(in.PostalCode), in.Phone)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// UpsertLocationTx resolves the full hierarchy for one input and returns the
// address id the customer row should reference.
func (r *LocationRepo) UpsertLocationTx(ctx context.Context, tx *sql.Tx, in LocationInput) (uint64, error) {
    countryID, err := r.UpsertCountryTx(ctx, tx, in.Country)
    if err != nil {
        return 0, err
    }
    cityID, err := r.UpsertCityTx(ctx, tx, in.City, countryID)
    if err != nil {
        return 0, err
    }
    return r.UpsertAddressTx(ctx, tx, in, cityID)
}

func nullIfEmpty(s string) interface{} {
    if s == "" {
        return nil
    }
    return s
}
