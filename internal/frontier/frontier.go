package frontier

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/campus-crawler/internal/config"
	"github.com/rohmanhakim/campus-crawler/internal/metadata"
	"github.com/rohmanhakim/campus-crawler/internal/store"
	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/fileutil"
	"github.com/rohmanhakim/campus-crawler/pkg/limiter"
	"github.com/rohmanhakim/campus-crawler/pkg/urlutil"
)

/*
Frontier Responsibilities
- Hold the queue of URLs known but not yet fetched
- Deduplicate against the durable seen-set (the primary dedup point)
- Gate dispatch per authority through the politeness gate
- Restore queue and seen-set across restarts
- Knows nothing about:
	- fetching
	- page processing
	- deliverables

One mutex guards every externally visible operation. The durable store is
written through synchronously on each insert, so an acknowledged Add
survives a crash.
*/

type Frontier struct {
	mu sync.Mutex

	cfg   config.Config
	queue urlQueue
	gate  *limiter.AuthorityGate
	seen  store.Shelf
	sink  metadata.MetadataSink

	// URLs ever accepted by Add (or restored from the save), including
	// seeds. Empty() uses it to require forward progress past the seeds.
	addedEver int

	testing bool
}

// New builds the frontier. With restart true any existing save files are
// deleted and the queue is seeded from config; otherwise an existing save
// is restored (undownloaded entries re-enter the queue) with seeding as
// the fallback. TESTING=true keeps everything in memory.
func New(
	cfg config.Config,
	restart bool,
	gate *limiter.AuthorityGate,
	sink metadata.MetadataSink,
) (*Frontier, failure.ClassifiedError) {
	testing := os.Getenv("TESTING") == "true"

	f := &Frontier{
		cfg:     cfg,
		queue:   newURLQueue(),
		gate:    gate,
		sink:    sink,
		testing: testing,
	}

	if restart || testing || !store.Exists(cfg.SaveFile()) {
		if err := f.restartSave(); err != nil {
			return nil, err
		}
	} else {
		if err := f.loadSave(); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// restartSave wipes any previous save and seeds the queue from config.
func (f *Frontier) restartSave() failure.ClassifiedError {
	if !f.testing {
		if err := fileutil.RemoveGlob(f.cfg.SaveFile() + "*"); err != nil {
			return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
		}
	}

	shelf, err := store.Open(f.cfg.SaveFile())
	if err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	f.seen = shelf

	f.sink.RecordEvent("frontier", "restartSave",
		fmt.Sprintf("starting from seed: %s", strings.Join(f.cfg.SeedURLs(), ", ")), nil)
	for _, seed := range f.cfg.SeedURLs() {
		if err := f.unsafeAdd(seed); err != nil {
			return err
		}
		f.gate.Register(urlutil.Authority(seed))
	}
	return nil
}

// loadSave restores queue and politeness state from an existing save.
// Every undownloaded entry re-enters the queue; every restored authority
// starts as "never accessed".
func (f *Frontier) loadSave() failure.ClassifiedError {
	shelf, err := store.Open(f.cfg.SaveFile())
	if err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	f.seen = shelf

	restored := 0
	forEachErr := shelf.ForEach(func(_ string, raw json.RawMessage) error {
		var entry SeenEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		if !entry.Downloaded {
			f.queue.Append(entry.URL)
		}
		f.gate.Register(urlutil.Authority(entry.URL))
		restored++
		return nil
	})
	if forEachErr != nil {
		return &FrontierError{Message: forEachErr.Error(), Cause: ErrCauseStoreFailure}
	}

	f.addedEver = restored
	f.sink.RecordEvent("frontier", "loadSave",
		fmt.Sprintf("starting from save in %s; added %d to frontier", f.cfg.SaveFile(), f.queue.Size()), nil)
	return nil
}

// Add normalizes the URL and inserts it if never seen. Duplicates are a
// silent no-op. The seen-set write goes through before the URL becomes
// dispatchable.
func (f *Frontier) Add(rawURL string) failure.ClassifiedError {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.unsafeAdd(rawURL)
}

func (f *Frontier) unsafeAdd(rawURL string) failure.ClassifiedError {
	normalized := urlutil.Normalize(rawURL)
	fingerprint := urlutil.Fingerprint(normalized)

	var existing SeenEntry
	found, err := f.seen.Get(fingerprint, &existing)
	if err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	if found {
		return nil // seen before, primary dedup
	}

	if err := f.seen.Put(fingerprint, SeenEntry{URL: normalized, Downloaded: false}); err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	f.queue.Append(normalized)
	f.addedEver++
	return nil
}

// NextTBD returns the next politeness-eligible URL, scanning the queue
// from tail toward head. A false result does NOT mean the frontier is
// empty, only that no URL is eligible right now; callers distinguish the
// two via Empty.
func (f *Frontier) NextTBD() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := f.queue.Size() - 1; i >= 0; i-- {
		authority := urlutil.Authority(f.queue[i])
		if f.gate.TryAcquire(authority) {
			return f.queue.RemoveAt(i), true
		}
	}
	return "", false
}

// MarkComplete transitions a dispatched URL to downloaded. The entry must
// already exist and must not be downloaded yet; either violation is a
// scheduling bug and fatal.
func (f *Frontier) MarkComplete(rawURL string) failure.ClassifiedError {
	f.mu.Lock()
	defer f.mu.Unlock()

	normalized := urlutil.Normalize(rawURL)
	fingerprint := urlutil.Fingerprint(normalized)

	var entry SeenEntry
	found, err := f.seen.Get(fingerprint, &entry)
	if err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	if !found {
		f.sink.RecordError(time.Now(), "frontier", "MarkComplete",
			metadata.CauseInvariantViolation,
			fmt.Sprintf("marking url %s as complete, but have not seen it before", normalized),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, normalized)})
		return &FrontierError{Message: normalized, Cause: ErrCauseCompleteUnseen}
	}
	if entry.Downloaded {
		f.sink.RecordError(time.Now(), "frontier", "MarkComplete",
			metadata.CauseInvariantViolation,
			fmt.Sprintf("marking url %s as complete, but have already downloaded it before", normalized),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, normalized)})
		return &FrontierError{Message: normalized, Cause: ErrCauseDoubleCompletion}
	}

	if err := f.seen.Put(fingerprint, SeenEntry{URL: normalized, Downloaded: true}); err != nil {
		return &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	return nil
}

// Empty reports whether workers may terminate: the queue is drained AND
// the crawl has made forward progress past the seeds (at least one
// discovered URL was ever added). Without the progress requirement a seed
// page with no admissible links would end the crawl before other workers
// had a chance to add anything. TESTING mode drops the requirement.
func (f *Frontier) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Size() != 0 {
		return false
	}
	if f.testing {
		return true
	}
	return f.addedEver > len(f.cfg.SeedURLs())
}

// URLSeen reports whether a fingerprint exists in the seen-set.
func (f *Frontier) URLSeen(fingerprint string) (bool, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entry SeenEntry
	found, err := f.seen.Get(fingerprint, &entry)
	if err != nil {
		return false, &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	return found, nil
}

// URLDownloaded reports whether a fingerprint exists and is downloaded.
func (f *Frontier) URLDownloaded(fingerprint string) (bool, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entry SeenEntry
	found, err := f.seen.Get(fingerprint, &entry)
	if err != nil {
		return false, &FrontierError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	return found && entry.Downloaded, nil
}

// Size is the number of URLs currently awaiting download.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.queue.Size()
}
