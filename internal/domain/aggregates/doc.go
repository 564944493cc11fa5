// Package aggregates defines the review write boundary and its error taxonomy.
//
// Contracts here stay free of persistence and transport details. Each write method is a
// semantic unit in which a review row and its course statistics change together.
package aggregates
