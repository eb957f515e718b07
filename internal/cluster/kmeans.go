package cluster

import (
	"math"
	"math/rand"
	"sort"

	"github.com/muesli/clusters"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoObservations is returned when there is nothing to partition.
	ErrNoObservations = errors.New("cluster: no observations")

	// ErrBadK is returned when K is not positive.
	ErrBadK = errors.New("cluster: k must be greater than 0")
)

// Observation is a point with a multiplicity. Identical input points are
// collapsed into one Observation whose Weight is their count, which yields the
// same partition as clustering every point separately.
type Observation struct {
	Coords clusters.Coordinates
	Weight float64
}

// Coordinates implements clusters.Observation.
func (o Observation) Coordinates() clusters.Coordinates {
	return o.Coords
}

// Distance implements clusters.Observation. It is the squared Euclidean
// distance.
func (o Observation) Distance(point clusters.Coordinates) float64 {
	return o.Coords.Distance(point)
}

// Options configures KMeans.
type Options struct {
	K             int
	MaxIterations int
	// Tolerance is relative to the mean per-dimension variance of the data.
	Tolerance float64
	Runs      int
	Seed      int64
}

// Result is the outcome of the best run.
type Result struct {
	// Labels holds one cluster index per observation, in input order.
	Labels []int

	Centers []clusters.Coordinates

	// Weights is the total observation weight assigned to each cluster.
	Weights []float64

	// Inertia is the weighted sum of squared distances to the assigned centers.
	Inertia float64

	Iterations int
}

// KMeans partitions weighted observations into opts.K groups.
//
// Centers are seeded with k-means++ from a generator created from opts.Seed,
// so equal inputs and seeds always produce equal labels. Lloyd iterations run
// until the total squared center shift is at most the tolerance or the labels
// stop changing. A cluster that loses all observations keeps its previous
// center. With several runs the one with the lowest inertia wins, the earliest
// on ties.
func KMeans(obs []Observation, opts Options) (*Result, error) {
	if len(obs) == 0 || len(obs[0].Coords) == 0 {
		return nil, ErrNoObservations
	}
	if opts.K < 1 {
		return nil, ErrBadK
	}
	dims := len(obs[0].Coords)
	for i, o := range obs {
		if len(o.Coords) != dims {
			return nil, errors.Errorf("cluster: observation %d has %d dimensions, want %d", i, len(o.Coords), dims)
		}
		if o.Weight <= 0 {
			return nil, errors.Errorf("cluster: observation %d has non-positive weight %g", i, o.Weight)
		}
	}

	runs := max(opts.Runs, 1)
	iters := max(opts.MaxIterations, 1)
	tol := opts.Tolerance * meanVariance(obs, dims)

	rng := rand.New(rand.NewSource(opts.Seed))

	var best *Result
	for run := 0; run < runs; run++ {
		res := lloyd(obs, seedPlusPlus(obs, opts.K, rng), iters, tol)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centers. The first is drawn with probability
// proportional to weight, each further one proportional to weight times the
// squared distance to the nearest chosen center. When every point already
// coincides with a center the first observation is reused.
func seedPlusPlus(obs []Observation, k int, rng *rand.Rand) clusters.Clusters {
	weights := make([]float64, len(obs))
	for i, o := range obs {
		weights[i] = o.Weight
	}

	c := make(clusters.Clusters, 0, k)
	first := sample(weights, rng)
	c = append(c, clusters.Cluster{Center: copyCoords(obs[first].Coords)})

	d2 := make([]float64, len(obs))
	for i, o := range obs {
		d2[i] = o.Distance(c[0].Center)
	}

	scores := make([]float64, len(obs))
	for len(c) < k {
		floats.MulTo(scores, weights, d2)
		next := 0
		if floats.Sum(scores) > 0 {
			next = sample(scores, rng)
		}
		center := copyCoords(obs[next].Coords)
		c = append(c, clusters.Cluster{Center: center})

		for i, o := range obs {
			d2[i] = math.Min(d2[i], o.Distance(center))
		}
	}
	return c
}

// sample draws an index with probability proportional to p.
func sample(p []float64, rng *rand.Rand) int {
	cum := floats.CumSum(make([]float64, len(p)), p)
	target := rng.Float64() * cum[len(cum)-1]
	i := sort.Search(len(cum), func(i int) bool { return cum[i] > target })
	if i == len(cum) {
		i = len(cum) - 1
	}
	return i
}

func lloyd(obs []Observation, c clusters.Clusters, maxIter int, tol float64) *Result {
	dims := len(obs[0].Coords)
	labels := make([]int, len(obs))
	for i := range labels {
		labels[i] = -1
	}

	iter := 0
	for iter < maxIter {
		iter++

		changed := assign(obs, c, labels)

		shift := 0.0
		for i := range c {
			prev := c[i].Center
			if next, ok := weightedCenter(c[i].Observations, dims); ok {
				c[i].Center = next
			}
			d := floats.Distance(prev, c[i].Center, 2)
			shift += d * d
		}

		if !changed || shift <= tol {
			break
		}
	}

	// Labels must match the final centers.
	assign(obs, c, labels)

	res := &Result{
		Labels:     labels,
		Centers:    make([]clusters.Coordinates, len(c)),
		Weights:    make([]float64, len(c)),
		Iterations: iter,
	}
	for i := range c {
		res.Centers[i] = c[i].Center
	}
	for i, o := range obs {
		res.Weights[labels[i]] += o.Weight
		res.Inertia += o.Weight * o.Distance(c[labels[i]].Center)
	}
	return res
}

// assign moves every observation to its nearest center and reports whether
// any label changed. Ties go to the lower cluster index.
func assign(obs []Observation, c clusters.Clusters, labels []int) bool {
	c.Reset()
	changed := false
	for i, o := range obs {
		n := c.Nearest(o)
		if labels[i] != n {
			labels[i] = n
			changed = true
		}
		c[n].Append(o)
	}
	return changed
}

// weightedCenter returns the weighted mean of a cluster's observations, or
// false when the cluster is empty.
func weightedCenter(members clusters.Observations, dims int) (clusters.Coordinates, bool) {
	if len(members) == 0 {
		return nil, false
	}
	x := make([]float64, len(members))
	w := make([]float64, len(members))
	center := make(clusters.Coordinates, dims)
	for d := 0; d < dims; d++ {
		for i, m := range members {
			o := m.(Observation)
			x[i] = o.Coords[d]
			w[i] = o.Weight
		}
		center[d] = stat.Mean(x, w)
	}
	return center, true
}

func meanVariance(obs []Observation, dims int) float64 {
	x := make([]float64, len(obs))
	w := make([]float64, len(obs))
	for i, o := range obs {
		w[i] = o.Weight
	}
	total := 0.0
	for d := 0; d < dims; d++ {
		for i, o := range obs {
			x[i] = o.Coords[d]
		}
		_, v := stat.PopMeanVariance(x, w)
		total += v
	}
	return total / float64(dims)
}

func copyCoords(c clusters.Coordinates) clusters.Coordinates {
	return append(clusters.Coordinates(nil), c...)
}
