package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"material-reconciler/core/config"
	"material-reconciler/core/database"
	"material-reconciler/core/reconcile"
	"material-reconciler/feature/materials/catalog"
)

// Prints how a material name normalizes and how it scores against the top
// catalog candidates. Usage: debug_match "<name>" [category]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_match <name> [category]")
	}
	name := os.Args[1]
	category := ""
	if len(os.Args) > 2 {
		category = os.Args[2]
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	matching := cfg.Matching

	key := reconcile.Normalize(name, category)
	fmt.Println("=== Normalized ===")
	fmt.Printf("name:     %q\n", key.Name)
	fmt.Printf("category: %q\n", key.Category)
	fmt.Printf("units:    %v\n", key.Units)
	fmt.Printf("store:    %q\n", key.StoreName())

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	list, err := catalog.NewDBCatalog(db).Materials(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	idx := reconcile.BuildIndex(list)
	scorer := reconcile.NewSimilarity(matching)
	ranker := reconcile.NewRanker(scorer, matching)

	fmt.Printf("\n=== Top candidates (%d catalog entries) ===\n", idx.Len())
	for _, c := range ranker.RankKey(key, idx, 10) {
		other := reconcile.Normalize(c.Name, c.Category)
		jac := reconcile.Jaccard(key.Tokens(matching.UnitsInOverlap), other.Tokens(matching.UnitsInOverlap))
		edit := reconcile.EditSimilarity(key.Name, other.Name)
		accept := ""
		if c.Similarity >= matching.AutoAccept {
			accept = " AUTO"
		}
		fmt.Printf("#%-6d %.6f jaccard=%.3f edit=%.3f cat=%-5t %s [%s]%s\n",
			c.ID, c.Similarity, jac, edit, key.Category != "" && strings.EqualFold(key.Category, other.Category),
			c.Name, c.Category, accept)
	}
}
