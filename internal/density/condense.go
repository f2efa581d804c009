package density

import "math"

// minLinkageDistance keeps lambda = 1/distance finite for duplicate points.
const minLinkageDistance = 1e-12

// condensedRow records that child left cluster parent at lambda. Children
// below n are points; others are clusters.
type condensedRow struct {
	parent    int
	child     int
	lambda    float64
	childSize int
}

// condense walks the dendrogram from the root and keeps only splits where
// both sides reach minSize. Smaller sides fall out as individual points.
// Cluster labels start at n for the root.
func condense(l *linkage, minSize int) []condensedRow {
	n := l.n
	root := l.root()
	relabel := map[int]int{root: n}
	nextLabel := n + 1
	ignore := make([]bool, 2*n-1)
	var rows []condensedRow

	fallOut := func(parent, node int, lambda float64) {
		stack := []int{node}
		for len(stack) > 0 {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ignore[x] = true
			if x < n {
				rows = append(rows, condensedRow{parent: parent, child: x, lambda: lambda, childSize: 1})
				continue
			}
			stack = append(stack, l.right[x-n], l.left[x-n])
		}
	}

	queue := []int{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node < n || ignore[node] {
			continue
		}
		left, right := l.left[node-n], l.right[node-n]
		queue = append(queue, left, right)

		lambda := 1 / math.Max(l.dist[node-n], minLinkageDistance)
		ls, rs := l.sizeOf(left), l.sizeOf(right)
		label := relabel[node]

		switch {
		case ls >= minSize && rs >= minSize:
			relabel[left] = nextLabel
			rows = append(rows, condensedRow{parent: label, child: nextLabel, lambda: lambda, childSize: ls})
			nextLabel++
			relabel[right] = nextLabel
			rows = append(rows, condensedRow{parent: label, child: nextLabel, lambda: lambda, childSize: rs})
			nextLabel++
		case ls < minSize && rs < minSize:
			fallOut(label, left, lambda)
			fallOut(label, right, lambda)
		case ls < minSize:
			relabel[right] = label
			fallOut(label, left, lambda)
		default:
			relabel[left] = label
			fallOut(label, right, lambda)
		}
	}
	return rows
}

// stability sums (lambda − birth) · size over each cluster's departures.
func stability(rows []condensedRow, root int) map[int]float64 {
	birth := map[int]float64{root: 0}
	for _, r := range rows {
		if r.child >= root {
			birth[r.child] = r.lambda
		}
	}
	stab := map[int]float64{}
	for c := range birth {
		stab[c] = 0
	}
	for _, r := range rows {
		stab[r.parent] += (r.lambda - birth[r.parent]) * float64(r.childSize)
	}
	return stab
}
