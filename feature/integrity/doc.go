// Package integrity provides infrastructure health checks for the
// reconciliation service.
//
// # Checks Provided
//
//   - Server: Validates that the connected database schema matches the GORM models (columns, type families).
//   - Catalog: Verifies the configured catalog source. For the storage source the snapshot object must exist;
//     for the database source the catalog table is counted.
//   - Cache: Pings the Redis mapping cache when one is configured.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/server : Runs server schema check.
//   - GET /integrity/catalog : Runs catalog source check.
//   - GET /integrity/cache : Runs cache check.
package integrity
