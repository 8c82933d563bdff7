// Package models contains the GORM persistence models. Each model maps one
// table and converts to and from its domain aggregate with ToDomain and
// FromDomain, so domain types never carry gorm tags.
package models
