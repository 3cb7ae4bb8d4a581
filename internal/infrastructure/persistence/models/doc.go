// Package models contains the GORM persistence models of the pricing engine.
//
// Models are kept apart from domain types: domain objects guard their
// invariants through constructors, so every model converts through ToDomain
// and the constructors run again on load. The SQL schema under migrations/
// is authoritative; the gorm tags mirror it for sqlite-backed tests.
package models
