package handlers

import (
	"github.com/ballop/merchplan/internal/blob"
	"github.com/ballop/merchplan/internal/catalog"
	"github.com/ballop/merchplan/internal/engine"
	"github.com/ballop/merchplan/internal/identity"
	"github.com/ballop/merchplan/internal/sku"
)

var (
	gate      *identity.Gate
	tokens    *identity.Tokens
	syncer    *engine.Engine
	pipeline  *catalog.Service
	allocator *sku.Allocator
	blobs     blob.Store
)

func SetGate(g *identity.Gate) {
	gate = g
}

func SetTokens(t *identity.Tokens) {
	tokens = t
}

func SetEngine(e *engine.Engine) {
	syncer = e
}

func SetPipeline(s *catalog.Service) {
	pipeline = s
}

func SetAllocator(a *sku.Allocator) {
	allocator = a
}

func SetBlobStore(b blob.Store) {
	blobs = b
}
