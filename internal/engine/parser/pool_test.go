package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	pool.Put(sp)

	// Put(nil) must be a no-op.
	pool.Put(nil)

	again := pool.Get()
	defer pool.Put(again)
	if again.Language() == nil {
		t.Fatal("recycled parser lost its language")
	}
}

func TestParserPool_ParsesPython(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse([]byte("import abra.core\n"), nil)
	if tree == nil {
		t.Fatal("expected a tree")
	}
	defer tree.Close()
	if tree.RootNode().HasError() {
		t.Fatal("valid source parsed with errors")
	}
}

func TestParserPool_Concurrent(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp := pool.Get()
			defer pool.Put(sp)
			tree := sp.Parse([]byte("from abra.utils import x\n"), nil)
			if tree == nil {
				errs <- "nil tree"
				return
			}
			defer tree.Close()
			if tree.RootNode().HasError() {
				errs <- "valid source parsed with errors"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}
