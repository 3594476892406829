package compression

import (
	"sort"
	"strings"
)

// CodeTable maps a symbol to its prefix code spelled with '0' and '1'.
type CodeTable map[byte]string

// singleSymbolCode is the code given to the only symbol of a one-symbol
// input. An empty code could not be written or matched.
const singleSymbolCode = "0"

// BuildCodeTable runs the tree construction over ft and flattens the result.
func BuildCodeTable(ft FrequencyTable) (CodeTable, error) {
	tree, err := buildTree(ft)
	if err != nil {
		return nil, err
	}
	return tree.toTable(), nil
}

func (t *codeTree) toTable() CodeTable {
	table := make(CodeTable, (len(t.nodes)+1)/2)
	if t.nodes[t.root].isLeaf() {
		table[t.nodes[t.root].symbol] = singleSymbolCode
		return table
	}
	t.walk(t.root, make([]byte, 0, 32), table)
	return table
}

// walk assigns codes depth first, 0 for the left child and 1 for the right.
// Depth is bounded by the 256 symbol alphabet.
func (t *codeTree) walk(idx int, path []byte, table CodeTable) {
	n := t.nodes[idx]
	if n.isLeaf() {
		table[n.symbol] = string(path)
		return
	}
	t.walk(n.left, append(path, '0'), table)
	t.walk(n.right, append(path, '1'), table)
}

// Symbols returns the symbols of the table in ascending order.
func (ct CodeTable) Symbols() []byte {
	syms := make([]byte, 0, len(ct))
	for s := range ct {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// isPrefixFree reports whether no code in codes is a prefix of another.
func isPrefixFree(codes []string) bool {
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if strings.HasPrefix(sorted[i], sorted[i-1]) {
			return false
		}
	}
	return true
}
