// # internal/engine/parser/pool_test.go
package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

func rustLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_rust.Language())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(rustLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Leased() != 1 {
		t.Errorf("expected 1 leased parser, got %d", pool.Leased())
	}
	pool.Put(sp)
	if pool.Leased() != 0 {
		t.Errorf("expected 0 leased parsers, got %d", pool.Leased())
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(rustLanguage())
	pool.Put(nil)
}

func TestParserPool_ParsesValidRust(t *testing.T) {
	pool := NewParserPool(rustLanguage())

	tree := pool.Parse([]byte("pub fn main() {}\n"))
	if tree == nil {
		t.Fatal("expected non-nil parse tree for valid Rust source")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		t.Fatalf("expected error-free root node")
	}
}

func TestParserPool_ConcurrentAccess(t *testing.T) {
	pool := NewParserPool(rustLanguage())

	const goroutines = 20
	const iters = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)

	src := []byte("fn run() {}\n")

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iters; j++ {
				tree := pool.Parse(src)
				if tree == nil {
					t.Errorf("expected non-nil parse tree")
					continue
				}
				tree.Close()
			}
		}()
	}

	wg.Wait()
	if pool.Leased() != 0 {
		t.Errorf("expected all parsers returned, got %d leased", pool.Leased())
	}
}
