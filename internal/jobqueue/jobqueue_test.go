package jobqueue

import (
	"path/filepath"
	"sync"
	"testing"
)

const testRecordSize = 8

func recordFor(i int) Record {
	r := make(Record, testRecordSize)
	PutUint32(r[0:4], uint32(i))
	return r
}

func TestAddCommitFetch_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.bin")
	q := New(path)
	for i := 0; i < 10; i++ {
		q.Add(recordFor(i), true)
	}
	if err := q.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := Fetch(path, testRecordSize, 100, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("got %d records, want 10", len(got))
	}
	for i, r := range got {
		if Uint32(r[0:4]) != uint32(i) {
			t.Fatalf("record %d = %d, want %d", i, Uint32(r[0:4]), i)
		}
	}

	again, err := Fetch(path, testRecordSize, 100, false)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected empty queue after full fetch, got %d records", len(again))
	}
}

func TestFetch_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.bin")
	got, err := Fetch(path, testRecordSize, 10, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing file, got %v", got)
	}
}

func TestFetch_DiscardsShortTrailingRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	q := New(path)
	q.Add(recordFor(1), true)
	q.Add(make(Record, 3), true) // short, partial trailing record
	if err := q.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := Fetch(path, testRecordSize, 10, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1 (short tail discarded)", len(got))
	}
}

func TestFetch_ConcurrentWorkersPartitionRecordsExactly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs100.bin")
	q := New(path)
	for i := 0; i < 100; i++ {
		q.Add(recordFor(i), true)
	}
	if err := q.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var mu sync.Mutex
	seen := make(map[uint32]int)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				batch, err := Fetch(path, testRecordSize, 24, false)
				if err != nil {
					t.Errorf("Fetch: %v", err)
					return
				}
				if len(batch) == 0 {
					return
				}
				mu.Lock()
				for _, r := range batch {
					seen[Uint32(r[0:4])]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 100 {
		t.Fatalf("got %d distinct records claimed, want 100", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("record %d claimed %d times, want exactly 1", id, count)
		}
	}
}
