// Package solver implements the payload/unit solver: two parallel
// union-find forests — one over payload variables and ports, one over
// units — each root carrying the accumulated constraint metadata for
// its group.
package solver

// dsu is a disjoint-set forest over string-keyed nodes, with path
// compression and union by rank, and a caller-supplied merge function
// that folds one root's metadata into the surviving root's on union.
// The shape mirrors a minimum-spanning-tree disjoint-set forest: a
// parent map seeded to self, a rank map for union-by-rank, iterative
// find with path compression.
type dsu[M any] struct {
	parent map[string]string
	rank   map[string]int
	meta   map[string]*M
}

func newDSU[M any]() *dsu[M] {
	return &dsu[M]{
		parent: make(map[string]string),
		rank:   make(map[string]int),
		meta:   make(map[string]*M),
	}
}

// ensure registers node if it has not been seen before, seeding its
// metadata via factory. It is idempotent.
func (d *dsu[M]) ensure(node string, factory func() *M) {
	if _, ok := d.parent[node]; ok {
		return
	}
	d.parent[node] = node
	d.rank[node] = 0
	d.meta[node] = factory()
}

// find returns the root of node's group, compressing the path.
func (d *dsu[M]) find(node string) string {
	for d.parent[node] != node {
		d.parent[node] = d.parent[d.parent[node]]
		node = d.parent[node]
	}
	return node
}

// union merges the groups containing a and b, attaching the
// lower-rank root under the higher-rank one (ties broken by attaching
// b's root under a's root and bumping its rank), and folds the
// absorbed root's metadata into the surviving root via merge. Returns
// the surviving root id. If a and b are already in the same group,
// merge is not called and the existing root is returned unchanged.
func (d *dsu[M]) union(a, b string, merge func(survivor, absorbed *M) *M) string {
	rootA, rootB := d.find(a), d.find(b)
	if rootA == rootB {
		return rootA
	}
	var survivor, absorbed string
	switch {
	case d.rank[rootA] < d.rank[rootB]:
		survivor, absorbed = rootB, rootA
	case d.rank[rootA] > d.rank[rootB]:
		survivor, absorbed = rootA, rootB
	default:
		survivor, absorbed = rootA, rootB
		d.rank[survivor]++
	}
	d.meta[survivor] = merge(d.meta[survivor], d.meta[absorbed])
	d.parent[absorbed] = survivor
	delete(d.meta, absorbed)
	return survivor
}

// metaOf returns the metadata for node's current root.
func (d *dsu[M]) metaOf(node string) *M {
	return d.meta[d.find(node)]
}

// nodes returns every node registered in the forest, for deterministic
// iteration by callers that sort the result themselves.
func (d *dsu[M]) nodes() []string {
	out := make([]string, 0, len(d.parent))
	for n := range d.parent {
		out = append(out, n)
	}
	return out
}
