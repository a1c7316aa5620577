// Package match provides identifier normalization and edit-distance ranking.
//
// It is used to pair feed columns with struct fields ("customer_id" with
// CustomerID) and to suggest close names when a selector refers to a field
// that does not exist.
package match
