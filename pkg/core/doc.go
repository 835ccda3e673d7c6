// Package core defines the shared language of the anosql system.
//
// This package contains:
//   - Query kinds (Select, Mutate, AutoGen)
//   - The parsed query definition (Spec)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
