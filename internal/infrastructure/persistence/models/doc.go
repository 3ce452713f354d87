// Package models contains GORM persistence models. Domain records never carry
// GORM tags; a module is stored as one serialized snapshot row and activity
// entries as flat rows.
package models
