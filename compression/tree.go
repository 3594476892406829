package compression

import (
	"container/heap"
	"fmt"
)

const noChild = -1

type treeNode struct {
	symbol byte
	left   int
	right  int
}

func (n treeNode) isLeaf() bool { return n.left == noChild }

// codeTree is an arena of nodes. Children are referenced by index and every
// internal node has exactly two of them.
type codeTree struct {
	nodes []treeNode
	root  int
}

func (t *codeTree) addLeaf(sym byte) int {
	t.nodes = append(t.nodes, treeNode{symbol: sym, left: noChild, right: noChild})
	return len(t.nodes) - 1
}

func (t *codeTree) addInternal(left, right int) int {
	t.nodes = append(t.nodes, treeNode{left: left, right: right})
	return len(t.nodes) - 1
}

type queueItem struct {
	node   int
	weight uint64
	seq    int
}

// priorityQueue pops the lowest weight first. Equal weights pop in
// insertion order.
type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].weight != pq[j].weight {
		return pq[i].weight < pq[j].weight
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// buildTree runs the greedy merge over ft. A table with a single symbol
// yields a tree whose root is that leaf.
func buildTree(ft FrequencyTable) (*codeTree, error) {
	if len(ft) == 0 {
		return nil, ErrEmptyInput
	}

	tree := &codeTree{nodes: make([]treeNode, 0, 2*len(ft)-1)}
	pq := make(priorityQueue, 0, len(ft))
	seq := 0
	// seed in symbol order so equal weights merge the same way every run
	for sym := 0; sym < 256; sym++ {
		weight, ok := ft[byte(sym)]
		if !ok {
			continue
		}
		pq = append(pq, queueItem{node: tree.addLeaf(byte(sym)), weight: weight, seq: seq})
		seq++
	}
	heap.Init(&pq)

	if pq.Len() == 1 {
		tree.root = pq[0].node
		return tree, nil
	}

	for pq.Len() > 1 {
		first := heap.Pop(&pq).(queueItem)
		second := heap.Pop(&pq).(queueItem)
		if first.weight+second.weight < first.weight {
			return nil, fmt.Errorf("frequency overflow merging %d and %d", first.weight, second.weight)
		}
		heap.Push(&pq, queueItem{
			node:   tree.addInternal(first.node, second.node),
			weight: first.weight + second.weight,
			seq:    seq,
		})
		seq++
	}
	tree.root = pq[0].node
	return tree, nil
}
