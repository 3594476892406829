package compression

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildTree_Empty(t *testing.T) {
	if _, err := buildTree(FrequencyTable{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestBuildTree_SingleSymbol(t *testing.T) {
	tree, err := buildTree(FrequencyTable{0x41: 10_000})
	if err != nil {
		t.Fatal(err)
	}
	root := tree.nodes[tree.root]
	if !root.isLeaf() || root.symbol != 0x41 {
		t.Fatalf("expected a single leaf for 0x41, got %+v", root)
	}
	table := tree.toTable()
	if len(table) != 1 || table[0x41] != singleSymbolCode {
		t.Errorf("expected {0x41: %q}, got %v", singleSymbolCode, table)
	}
}

func TestBuildTree_Shape(t *testing.T) {
	tree, err := buildTree(Count([]byte("aaaaaaaaabbbc")))
	if err != nil {
		t.Fatal(err)
	}
	leaves, internal := 0, 0
	for _, n := range tree.nodes {
		if n.isLeaf() {
			leaves++
			continue
		}
		internal++
		if n.left == noChild || n.right == noChild {
			t.Errorf("internal node with one child: %+v", n)
		}
	}
	if leaves != 3 || internal != 2 {
		t.Errorf("expected 3 leaves and 2 internal nodes, got %d and %d", leaves, internal)
	}
}

func TestBuildTree_Deterministic(t *testing.T) {
	ft := Count([]byte("abcdefgh abcdefgh 12345678"))
	first, err := BuildCodeTable(ft)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := BuildCodeTable(ft)
		if err != nil {
			t.Fatal(err)
		}
		for sym, code := range first {
			if again[sym] != code {
				t.Fatalf("run %d: symbol %q got %q, first run %q", i, sym, again[sym], code)
			}
		}
	}
}

func TestCodeTable_PrefixFree(t *testing.T) {
	inputs := []string{
		"ab",
		"abracadabra",
		"the quick brown fox jumps over the lazy dog",
		strings.Repeat("x", 100) + strings.Repeat("y", 50) + strings.Repeat("z", 25) + "0123456789",
	}
	for _, in := range inputs {
		table, err := BuildCodeTable(Count([]byte(in)))
		if err != nil {
			t.Fatal(err)
		}
		ft := Count([]byte(in))
		if len(table) != len(ft) {
			t.Errorf("%q: expected %d codes, got %d", in, len(ft), len(table))
		}
		for s1, c1 := range table {
			for s2, c2 := range table {
				if s1 != s2 && strings.HasPrefix(c2, c1) {
					t.Errorf("%q: code %q of %q is a prefix of %q of %q", in, c1, s1, c2, s2)
				}
			}
		}
	}
}

func TestCodeTable_Fibonacci(t *testing.T) {
	// fibonacci weights produce the deepest possible tree
	ft := FrequencyTable{}
	a, b := uint64(1), uint64(1)
	for sym := 0; sym < 40; sym++ {
		ft[byte(sym)] = a
		a, b = b, a+b
	}
	table, err := BuildCodeTable(ft)
	if err != nil {
		t.Fatal(err)
	}
	longest := 0
	for _, code := range table {
		longest = max(longest, len(code))
	}
	if longest != 39 {
		t.Errorf("expected longest code of 39 bits, got %d", longest)
	}
}

func TestIsPrefixFree(t *testing.T) {
	if !isPrefixFree([]string{"0", "10", "11"}) {
		t.Error("expected {0,10,11} to be prefix free")
	}
	if isPrefixFree([]string{"0", "01", "11"}) {
		t.Error("expected {0,01,11} to not be prefix free")
	}
	if isPrefixFree([]string{"10", "10"}) {
		t.Error("expected duplicate codes to not be prefix free")
	}
}
