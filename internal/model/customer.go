package model

import "time"

// Customer mirrors the `customer` table.  Every customer references exactly
// one address row; addresses may be shared between customers, so deleting a
// customer never touches the location hierarchy.
//
// Fields:
//  ID        – primary key identifier.
//  FirstName – given name.
//  LastName  – family name.
//  Email     – unique contact email (enforced by the schema).
//  AddressID – reference into the address table.
//  Active    – soft activity flag.
//  CreatedAt – timestamp of creation.
type Customer struct {
    ID        uint64    // customer.customer_id
    FirstName string    // customer.first_name
    LastName  string    // customer.last_name
    Email     string    // customer.email
    AddressID uint64    // customer.address_id
    Active    bool      // customer.active
    CreatedAt time.Time // customer.create_date
}
