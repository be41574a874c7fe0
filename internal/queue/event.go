// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// RentalCreatedEvent is published when a copy is successfully handed out.
// It carries enough information for downstream consumers to log, notify, or
// feed analytics without querying the primary database.
type RentalCreatedEvent struct {
    RentalID   uint64 `json:"rental_id"`
    CustomerID uint64 `json:"customer_id"`
    FilmID     uint64 `json:"film_id"`
    UnitID     uint64 `json:"unit_id"`
    RentedAt   string `json:"rented_at"`
}

// RentalReturnedEvent is published when a rental is closed.
type RentalReturnedEvent struct {
    RentalID   uint64 `json:"rental_id"`
    CustomerID uint64 `json:"customer_id"`
    FilmID     uint64 `json:"film_id"`
    ReturnedAt string `json:"returned_at"`
}
