package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockReader serves files from memory
type MockReader struct {
	files   map[string]string
	delay   time.Duration
	reads   int32
	active  int32
	maxSeen int32
}

func (m *MockReader) ReadFile(path string) ([]byte, error) {
	atomic.AddInt32(&m.reads, 1)
	cur := atomic.AddInt32(&m.active, 1)
	defer atomic.AddInt32(&m.active, -1)
	for {
		seen := atomic.LoadInt32(&m.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&m.maxSeen, seen, cur) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	body, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(body), nil
}

func parseArray(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func collect(pool *WorkerPool) (func() []ReadResult, *sync.WaitGroup) {
	var results []ReadResult
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			results = append(results, result)
		}
	}()
	return func() []ReadResult { return results }, &wg
}

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	reader := &MockReader{files: map[string]string{}}
	numJobs := 10
	for i := 0; i < numJobs; i++ {
		reader.files[fmt.Sprintf("post%d.json", i)] = fmt.Sprintf(`[{"id":"%d"}]`, i)
	}

	pool := NewWorkerPool(context.Background(), 3, reader, parseArray, nil)
	pool.Start()
	results, wg := collect(pool)

	for i := 0; i < numJobs; i++ {
		if err := pool.Submit(ReadJob{Index: i, Path: fmt.Sprintf("post%d.json", i)}); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(results()) != numJobs {
		t.Fatalf("Expected %d results, got %d", numJobs, len(results()))
	}
	for _, result := range results() {
		if result.Error != nil {
			t.Errorf("Unexpected error for %s: %v", result.Job.Path, result.Error)
		}
		want := fmt.Sprintf(`{"id":"%d"}`, result.Job.Index)
		if len(result.Items) != 1 || string(result.Items[0]) != want {
			t.Errorf("Expected %s for job %d, got %v", want, result.Job.Index, result.Items)
		}
	}
	if int(atomic.LoadInt32(&reader.reads)) != numJobs {
		t.Errorf("Expected %d reads, got %d", numJobs, reader.reads)
	}
}

func TestWorkerPoolWithErrors(t *testing.T) {
	reader := &MockReader{files: map[string]string{"bad.json": `{`}}

	pool := NewWorkerPool(context.Background(), 2, reader, parseArray, nil)
	pool.Start()
	results, wg := collect(pool)

	_ = pool.Submit(ReadJob{Index: 0, Path: "missing.json"})
	_ = pool.Submit(ReadJob{Index: 1, Path: "bad.json"})

	pool.Stop()
	wg.Wait()

	if len(results()) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results()))
	}
	for _, result := range results() {
		if result.Error == nil {
			t.Errorf("Expected error for %s", result.Job.Path)
		}
	}
}

func TestWorkerPoolConcurrency(t *testing.T) {
	reader := &MockReader{files: map[string]string{}, delay: 20 * time.Millisecond}
	for i := 0; i < 8; i++ {
		reader.files[fmt.Sprintf("%d.json", i)] = `[]`
	}

	pool := NewWorkerPool(context.Background(), 4, reader, parseArray, nil)
	pool.Start()
	_, wg := collect(pool)

	for i := 0; i < 8; i++ {
		_ = pool.Submit(ReadJob{Index: i, Path: fmt.Sprintf("%d.json", i)})
	}
	pool.Stop()
	wg.Wait()

	if max := atomic.LoadInt32(&reader.maxSeen); max < 2 || max > 4 {
		t.Errorf("Expected between 2 and 4 concurrent reads, got %d", max)
	}
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, &MockReader{}, parseArray, nil)
	cancel()

	// Fill the buffer so Submit has to wait
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = pool.Submit(ReadJob{Index: i, Path: "x.json"})
	}
	if err == nil {
		t.Error("Expected submit to fail after cancellation")
	}
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, body := range []string{`[{"id":"a"}]`, `[{"id":"b"},{"id":"c"}]`, `[]`, `[{"id":"d"}]`} {
		path := filepath.Join(dir, fmt.Sprintf("%02d.json", i))
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	items, err := ReadAll(context.Background(), paths, 3, parseArray, nil)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	var got []string
	for _, it := range items {
		got = append(got, string(it))
	}
	want := []string{`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`, `{"id":"d"}`}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestReadAll_EarliestErrorWins(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}
	paths := []string{good, filepath.Join(dir, "first-missing.json"), filepath.Join(dir, "second-missing.json")}

	_, err := ReadAll(context.Background(), paths, 3, parseArray, nil)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "first-missing.json") {
		t.Errorf("Expected error for first-missing.json, got %v", err)
	}
}

func TestReadAll_Empty(t *testing.T) {
	items, err := ReadAll(context.Background(), nil, 2, parseArray, nil)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", items)
	}
}

func TestReadAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAll(ctx, []string{"a.json"}, 1, parseArray, nil)
	if err == nil {
		t.Error("Expected cancellation error")
	}
}
