package gbt

import "sort"

// node is one flattened tree node. Leaves carry the additive score
// contribution (learning rate already applied); internal nodes route on
// feature < threshold.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
	Leaf      bool    `json:"leaf"`
}

type tree struct {
	Nodes []node `json:"nodes"`
}

func (t tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows one regression tree on gradient/hessian pairs using
// exact greedy splits, the usual second-order boosting objective.
type treeBuilder struct {
	x         [][]float64
	grad      []float64
	hess      []float64
	maxDepth  int
	minLeaf   int
	lambda    float64
	leafScale float64
	nodes     []node
}

func (b *treeBuilder) build(indices []int) tree {
	b.nodes = b.nodes[:0]
	b.grow(indices, 0)
	return tree{Nodes: append([]node(nil), b.nodes...)}
}

// grow appends the subtree for the given sample set and returns its root
// position in the flattened node slice.
func (b *treeBuilder) grow(indices []int, depth int) int {
	pos := len(b.nodes)
	b.nodes = append(b.nodes, node{})

	if depth < b.maxDepth && len(indices) >= 2*b.minLeaf {
		if feature, threshold, ok := b.bestSplit(indices); ok {
			left := make([]int, 0, len(indices))
			right := make([]int, 0, len(indices))
			for _, i := range indices {
				if b.x[i][feature] < threshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			lpos := b.grow(left, depth+1)
			rpos := b.grow(right, depth+1)
			b.nodes[pos] = node{Feature: feature, Threshold: threshold, Left: lpos, Right: rpos}
			return pos
		}
	}

	b.nodes[pos] = node{Leaf: true, Value: b.leafValue(indices)}
	return pos
}

// leafValue is the regularized Newton step -G/(H+lambda), scaled by the
// learning rate.
func (b *treeBuilder) leafValue(indices []int) float64 {
	var g, h float64
	for _, i := range indices {
		g += b.grad[i]
		h += b.hess[i]
	}
	return b.leafScale * (-g / (h + b.lambda))
}

func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold float64, ok bool) {
	var gTotal, hTotal float64
	for _, i := range indices {
		gTotal += b.grad[i]
		hTotal += b.hess[i]
	}
	parentScore := gTotal * gTotal / (hTotal + b.lambda)

	bestGain := 0.0
	numFeatures := len(b.x[indices[0]])
	order := make([]int, len(indices))

	for f := 0; f < numFeatures; f++ {
		copy(order, indices)
		sort.Slice(order, func(a, c int) bool {
			return b.x[order[a]][f] < b.x[order[c]][f]
		})

		var gLeft, hLeft float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			gLeft += b.grad[i]
			hLeft += b.hess[i]

			cur, next := b.x[i][f], b.x[order[pos+1]][f]
			if cur == next {
				continue
			}
			if pos+1 < b.minLeaf || len(order)-pos-1 < b.minLeaf {
				continue
			}

			gRight := gTotal - gLeft
			hRight := hTotal - hLeft
			gain := gLeft*gLeft/(hLeft+b.lambda) + gRight*gRight/(hRight+b.lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
