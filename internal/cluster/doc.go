// Package cluster implements seeded, weighted k-means over muesli/clusters
// observations.
package cluster
