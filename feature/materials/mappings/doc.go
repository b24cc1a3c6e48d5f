// Package mappings implements reconcile.MappingStore backends.
//
//   - GormStore: material_mappings table, atomic upsert with ON CONFLICT.
//   - BadgerStore: embedded key-value store for single-node deployments.
//   - CachedStore: Redis read-through/write-through cache over either.
//   - DryRun: read-only wrapper used by the CLI.
//
// Every backend keys mappings on (calculator_name, calculator_category),
// so a second write for the same key replaces the first.
package mappings
