// Package materials exposes material reconciliation over HTTP.
//
// A calculator submits its free-text material list, receives the processed
// and unmapped partition, and an operator resolves the unmapped lines by
// confirming one of the suggestions. Sessions are kept in memory for the
// configured TTL so confirmations can refer to them.
//
// # HTTP Endpoints
//
//   - POST /reconcile : Reconciles a batch and opens a session.
//   - GET /reconcile/:session : Returns the current state of a session.
//   - POST /reconcile/:session/confirm : Confirms a warehouse entry for a line.
//   - GET /catalog/search : Ranks the catalog against a free-text term.
//   - POST /mappings : Creates or replaces a mapping.
//   - GET /mappings/lookup : Returns the stored mapping for a name and category.
package materials
