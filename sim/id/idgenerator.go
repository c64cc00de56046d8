// Package id provides unique identifiers for transactions and trace tasks.
package id

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate unique IDs.
type IDGenerator interface {
	Generate() string
}

var (
	generatorMutex sync.Mutex
	generator      IDGenerator = &sequentialIDGenerator{}
)

// UseSequentialIDGenerator makes Generate return increasing decimal numbers.
// Sequential IDs make runs reproducible.
func UseSequentialIDGenerator() {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	generator = &sequentialIDGenerator{}
}

// UseParallelIDGenerator makes Generate return globally unique xids. Use it
// when several simulations record into the same trace database.
func UseParallelIDGenerator() {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	generator = parallelIDGenerator{}
}

// Generate returns a new ID from the current generator.
func Generate() string {
	generatorMutex.Lock()
	g := generator
	generatorMutex.Unlock()

	return g.Generate()
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
