package model

import (
	"database/sql"
	"time"
)

// Officiant represents one registrant in the directory, sourced from the
// Ontario Data Catalogue
type Officiant struct {
	ID           int
	OntarioID    int
	FirstName    string
	LastName     string
	Municipality string
	Affiliation  string
	Lat          sql.NullFloat64
	Lng          sql.NullFloat64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegistryRecord is a normalized row from the upstream registry API
type RegistryRecord struct {
	OntarioID    int
	FirstName    string
	LastName     string
	Municipality string
	Affiliation  string
}

// SearchResult is an Officiant plus per-request computed fields
type SearchResult struct {
	ID           int      `json:"id"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Municipality string   `json:"municipality"`
	Affiliation  string   `json:"affiliation"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	DistanceKm   *float64 `json:"distance,omitempty"`
	Featured     bool     `json:"featured,omitempty"`
}
