// Package reconcile matches free-text calculator materials against the
// canonical warehouse catalog.
//
// A batch flows through a Session:
//
//  1. Dedup: lines are grouped by their normalized (name, category) key and
//     quantities are summed.
//  2. Store check: each key is looked up in the MappingStore. Hits are
//     processed with mapping_method "store".
//  3. Scoring: remaining keys are ranked against the catalog on a bounded
//     worker pool. A top candidate at or above the auto-accept threshold is
//     persisted as an "auto" mapping.
//  4. Partition: everything else is returned as unmapped with ranked
//     suggestions, in original input order.
//
// Operators resolve unmapped lines with Session.Confirm, which writes a
// "manual" mapping so the same name resolves from the store next time.
//
// # Scoring
//
//	score = 0.6*jaccard(tokens) + 0.3*editSimilarity(names) + 0.1*sameCategory
//
// clamped to [0,1]. Unit tokens such as "1,4 м" are extracted during
// normalization and compared in canonical form ("1.4м"). Ties are broken by
// catalog id ascending.
//
// # Usage Example
//
//	cache := reconcile.NewCatalogCache(catalog, 5*time.Minute)
//	engine := reconcile.NewEngine(cache, store, cfg.Matching, logger)
//
//	session := engine.NewSession(materials)
//	result, err := session.Run(ctx)
//
//	// later, from the review screen
//	conf, err := session.Confirm(ctx, "3", 42, "operator@example.com")
package reconcile
