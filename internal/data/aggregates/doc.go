// Package aggregates implements the review aggregate on top of the table repos.
//
// It owns the transaction boundary for review writes: the course row lock, the review
// row change and the course statistics recompute commit or roll back together.
package aggregates
