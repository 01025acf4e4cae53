// Package domain defines the intermediate representation (IR) consumed by the
// fluxion pipeline compiler and execution engine.
//
// This package contains pure domain types with ZERO external dependencies
// outside the Go standard library. All types in this package are:
//
// - Independent of infrastructure (no parsing frameworks, no I/O)
// - Produced upstream by the DSL front end and treated as read-only here
// - Testable in isolation without mocks
//
// Other packages (engine, tool, config, etc.) consume these types and
// implement behavior around them. The dependency direction is always:
//
//	Infrastructure → Domain (CORRECT)
//	Domain → Infrastructure (FORBIDDEN)
package domain
