package limiter_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/campus-crawler/pkg/limiter"
)

func TestTryAcquire_UnknownAuthorityAdmitted(t *testing.T) {
	gate := limiter.NewAuthorityGate(time.Second, 1)

	if !gate.TryAcquire("ics.uci.edu") {
		t.Error("an authority never dispatched to must be admitted immediately")
	}
}

func TestTryAcquire_DeniedWithinDelay(t *testing.T) {
	gate := limiter.NewAuthorityGate(time.Second, 1)

	if !gate.TryAcquire("ics.uci.edu") {
		t.Fatal("first acquire must succeed")
	}
	if gate.TryAcquire("ics.uci.edu") {
		t.Error("second acquire within the delay must be denied")
	}
}

func TestTryAcquire_AdmittedAfterDelay(t *testing.T) {
	gate := limiter.NewAuthorityGate(50*time.Millisecond, 1)

	if !gate.TryAcquire("ics.uci.edu") {
		t.Fatal("first acquire must succeed")
	}
	time.Sleep(80 * time.Millisecond)
	if !gate.TryAcquire("ics.uci.edu") {
		t.Error("acquire after the delay elapsed must succeed")
	}
}

func TestTryAcquire_AuthoritiesIndependent(t *testing.T) {
	gate := limiter.NewAuthorityGate(time.Second, 1)

	if !gate.TryAcquire("ics.uci.edu") {
		t.Fatal("first authority must be admitted")
	}
	if !gate.TryAcquire("stat.uci.edu") {
		t.Error("a different authority must not be throttled by the first")
	}
}

func TestTryAcquire_ZeroDelayAlwaysAdmits(t *testing.T) {
	gate := limiter.NewAuthorityGate(0, 1)

	for i := 0; i < 10; i++ {
		if !gate.TryAcquire("ics.uci.edu") {
			t.Fatalf("zero delay must never throttle (iteration %d)", i)
		}
	}
}

func TestRegister_CountsAsNeverAccessed(t *testing.T) {
	gate := limiter.NewAuthorityGate(time.Second, 1)

	gate.Register("ics.uci.edu")
	if !gate.TryAcquire("ics.uci.edu") {
		t.Error("a registered authority starts with a full politeness token")
	}
}

func TestTryAcquire_ConcurrentSingleAdmission(t *testing.T) {
	gate := limiter.NewAuthorityGate(time.Second, 1)

	const goroutines = 16
	var wg sync.WaitGroup
	admitted := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if gate.TryAcquire("ics.uci.edu") {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != 1 {
		t.Errorf("exactly one concurrent acquire may win, got %d", count)
	}
}

func TestBackoffDelay_WithinJitterBounds(t *testing.T) {
	gate := limiter.NewAuthorityGate(time.Second, 42)
	gate.SetRNG(rand.New(rand.NewSource(42)))

	base := 500 * time.Millisecond
	for i := 0; i < 100; i++ {
		delay := gate.BackoffDelay(base)
		if delay < base {
			t.Fatalf("backoff %v fell below base %v", delay, base)
		}
		if delay >= base+time.Second {
			t.Fatalf("backoff %v reached base plus a full second", delay)
		}
	}
}

func TestDelay_ReportsConfiguredInterval(t *testing.T) {
	gate := limiter.NewAuthorityGate(750*time.Millisecond, 1)

	if got := gate.Delay(); got != 750*time.Millisecond {
		t.Errorf("Delay() = %v, want 750ms", got)
	}
}
