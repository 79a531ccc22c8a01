// Package core defines the entity graph produced by compiling a DBML document.
//
// This package contains:
//   - The arena-backed Database and its entities (schemas, tables, columns,
//     indexes, enums, relationships, table groups, partials, notes)
//   - Typed IDs used for every cross reference between entities
//   - The closed Element sum type consumers switch over
//
// Entities are created through Database methods, which enforce naming and
// uniqueness invariants and report violations as wrapped sentinel errors.
// Ordered collections iterate in insertion order.
//
// The Golden Rule: pkg/core imports ONLY stdlib.
package core
