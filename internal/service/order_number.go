package service

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

const orderSuffixRange = 1000

// OrderNumberGenerator produces ORD-<unix ms>-<n> numbers that never repeat
// within the process. The first number in a millisecond gets a random n in
// [0,1000); later numbers in the same millisecond, or after the clock steps
// back, reuse the last millisecond and increment n.
type OrderNumberGenerator struct {
	mu     sync.Mutex
	now    func() time.Time
	intn   func(n int) int
	lastMS int64
	lastN  int
}

// NewOrderNumberGenerator creates a generator using the wall clock
func NewOrderNumberGenerator() *OrderNumberGenerator {
	return newOrderNumberGenerator(time.Now, rand.IntN)
}

func newOrderNumberGenerator(now func() time.Time, intn func(n int) int) *OrderNumberGenerator {
	return &OrderNumberGenerator{now: now, intn: intn, lastMS: -1}
}

// Next returns the next order number
func (g *OrderNumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms > g.lastMS {
		g.lastMS = ms
		g.lastN = g.intn(orderSuffixRange)
	} else {
		g.lastN++
	}

	return "ORD-" + strconv.FormatInt(g.lastMS, 10) + "-" + strconv.Itoa(g.lastN)
}

// NewTransactionID returns the simulated gateway reference TXN-<unix ms>
func NewTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN-%d", now.UnixMilli())
}
