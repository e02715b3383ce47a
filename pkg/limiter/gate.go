package limiter

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AuthorityGate
// Specialized component to manage per-authority politeness during crawling.
// Responsibilities:
// - Bookkeep a token bucket per authority (host with "www." stripped)
// - Admit at most one dispatch per configured delay per authority
// - Compute jittered backoff durations for transient fetch failures
//
// The gate never sleeps. It is an admission check only; callers decide
// what to do with a denied authority.
type AuthorityGate struct {
	mu      sync.Mutex
	rngMu   sync.Mutex
	delay   time.Duration
	buckets map[string]*rate.Limiter
	rng     *rand.Rand
}

func NewAuthorityGate(delay time.Duration, randomSeed int64) *AuthorityGate {
	return &AuthorityGate{
		delay:   delay,
		buckets: make(map[string]*rate.Limiter),
		rng:     rand.New(rand.NewSource(randomSeed)),
	}
}

// Register pre-creates the bucket for an authority with a full token,
// i.e. "never accessed". Used on seed ingestion and save restore.
func (g *AuthorityGate) Register(authority string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.buckets[authority]; !exists {
		g.buckets[authority] = g.newBucket()
	}
}

// TryAcquire reports whether the authority may be dispatched to right now,
// consuming the politeness token on success. An unknown authority is
// admitted immediately. A denied call consumes nothing.
func (g *AuthorityGate) TryAcquire(authority string) bool {
	g.mu.Lock()
	bucket, exists := g.buckets[authority]
	if !exists {
		bucket = g.newBucket()
		g.buckets[authority] = bucket
	}
	g.mu.Unlock()

	return bucket.Allow()
}

// Delay returns the configured minimum inter-dispatch interval.
func (g *AuthorityGate) Delay() time.Duration {
	return g.delay
}

// BackoffDelay returns base plus a random jitter in [0s, 1s), used when a
// worker backs off after a transport-level fetch failure.
func (g *AuthorityGate) BackoffDelay(base time.Duration) time.Duration {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()

	return base + time.Duration(g.rng.Int63n(int64(time.Second)))
}

// SetRNG allows injecting a custom random number generator for testing
func (g *AuthorityGate) SetRNG(rng *rand.Rand) {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()

	g.rng = rng
}

// newBucket builds a full single-token bucket refilling once per delay.
// rate.Every treats a non-positive delay as "no limit", which matches a
// zero politeness delay.
func (g *AuthorityGate) newBucket() *rate.Limiter {
	return rate.NewLimiter(rate.Every(g.delay), 1)
}
