// Package cache configures the optional Redis connection used to cache
// material mappings in front of the durable store.
package cache
