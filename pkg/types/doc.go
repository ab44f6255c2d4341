// Package types defines the Store and Table interfaces, entity types,
// and standard errors for the Casebook data-synchronization core.
package types
