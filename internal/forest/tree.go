package forest

import (
	"math/rand/v2"
	"sort"
)

// leaf marks a terminal node.
const leaf = -1

// minDecrease is the smallest RSS reduction accepted for a split.
const minDecrease = 1e-12

type node struct {
	feature   int
	threshold float64
	left      int32
	right     int32
	value     float64
}

// Tree is a fitted CART regression tree.
type Tree struct {
	nodes []node
}

// Predict returns the tree's prediction for row.
func (t *Tree) Predict(row []float64) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.feature == leaf {
			return n.value
		}
		if row[n.feature] <= n.threshold {
			i = int(n.left)
		} else {
			i = int(n.right)
		}
	}
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Leaves returns the number of terminal nodes.
func (t *Tree) Leaves() int {
	count := 0
	for _, n := range t.nodes {
		if n.feature == leaf {
			count++
		}
	}
	return count
}

// grower holds the state shared while growing one tree.
type grower struct {
	x        [][]float64
	y        []float64
	mtry     int
	nodeSize int
	maxDepth int
	rng      *rand.Rand
	tree     *Tree
	purity   []float64
	order    []int
}

func newGrower(x [][]float64, y []float64, cfg Config, rng *rand.Rand) *grower {
	return &grower{
		x:        x,
		y:        y,
		mtry:     cfg.Mtry,
		nodeSize: cfg.NodeSize,
		maxDepth: cfg.MaxDepth,
		rng:      rng,
		purity:   make([]float64, len(x)),
	}
}

// grow builds a tree over the rows listed in idx (duplicates allowed).
// RSS decreases are added to g.purity per split feature.
func (g *grower) grow(idx []int) *Tree {
	g.tree = &Tree{nodes: make([]node, 0, 2*len(idx)/g.nodeSize+1)}
	if cap(g.order) < len(idx) {
		g.order = make([]int, len(idx))
	}
	g.split(idx, 0)
	return g.tree
}

func (g *grower) split(idx []int, depth int) int32 {
	self := int32(len(g.tree.nodes))
	sum := 0.0
	for _, i := range idx {
		sum += g.y[i]
	}
	mean := sum / float64(len(idx))
	g.tree.nodes = append(g.tree.nodes, node{feature: leaf, value: mean})

	if len(idx) <= g.nodeSize || (g.maxDepth > 0 && depth >= g.maxDepth) || constant(g.y, idx) {
		return self
	}

	feature, threshold, decrease := g.bestSplit(idx, sum)
	if feature == leaf {
		return self
	}

	// Partition idx in place around the threshold.
	lo, hi := 0, len(idx)-1
	col := g.x[feature]
	for lo <= hi {
		if col[idx[lo]] <= threshold {
			lo++
		} else {
			idx[lo], idx[hi] = idx[hi], idx[lo]
			hi--
		}
	}
	if lo == 0 || lo == len(idx) {
		return self
	}

	g.purity[feature] += decrease
	left := g.split(idx[:lo], depth+1)
	right := g.split(idx[lo:], depth+1)

	n := &g.tree.nodes[self]
	n.feature = feature
	n.threshold = threshold
	n.left = left
	n.right = right
	return self
}

// bestSplit searches mtry randomly chosen features for the split that
// maximises the RSS reduction. It returns leaf when no split helps.
func (g *grower) bestSplit(idx []int, sum float64) (int, float64, float64) {
	n := float64(len(idx))
	parent := sum * sum / n

	bestFeature := leaf
	bestThreshold := 0.0
	bestScore := parent + minDecrease

	candidates := g.rng.Perm(len(g.x))[:g.mtry]
	order := g.order[:len(idx)]
	for _, j := range candidates {
		col := g.x[j]
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return col[order[a]] < col[order[b]] })

		leftSum := 0.0
		for k := 0; k < len(order)-1; k++ {
			leftSum += g.y[order[k]]
			cur, next := col[order[k]], col[order[k+1]]
			if cur == next {
				continue
			}
			leftN := float64(k + 1)
			rightSum := sum - leftSum
			score := leftSum*leftSum/leftN + rightSum*rightSum/(n-leftN)
			if score > bestScore {
				bestScore = score
				bestFeature = j
				bestThreshold = cur + (next-cur)/2
			}
		}
	}

	return bestFeature, bestThreshold, bestScore - parent
}

func constant(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}
