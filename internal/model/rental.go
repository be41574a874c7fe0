package model

import "time"

// Rental records the binding of one inventory unit to one customer,
// mirroring the `rental` table.  A rental is open while ReturnDate is nil;
// closing it is the single mutation the row ever receives.
//
// Fields:
//  ID          – primary key identifier.
//  InventoryID – the physical copy handed out.
//  CustomerID  – the customer holding it.
//  RentalDate  – when the copy was handed out (UTC).
//  ReturnDate  – when it came back; nil while the rental is open.
type Rental struct {
    ID          uint64     // rental.rental_id
    InventoryID uint64     // rental.inventory_id
    CustomerID  uint64     // rental.customer_id
    RentalDate  time.Time  // rental.rental_date
    ReturnDate  *time.Time // rental.return_date (nullable)
}
