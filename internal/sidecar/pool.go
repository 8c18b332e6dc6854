package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"iganalyzer/pkg/logger"
)

// ReadJob represents a single sidecar file to read
type ReadJob struct {
	Index int
	Path  string
}

// ReadResult represents the result of a read job
type ReadResult struct {
	Job      ReadJob
	Items    []json.RawMessage
	Error    error
	Duration time.Duration
	Size     int
}

// ParseFunc splits one JSON document into post items
type ParseFunc func(data []byte) ([]json.RawMessage, error)

// FileReader reads a file from disk
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// WorkerPool manages concurrent sidecar readers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan ReadJob
	resultQueue chan ReadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	reader      FileReader
	parse       ParseFunc
	logger      logger.Logger
}

// NewWorkerPool creates a new read worker pool. A nil reader reads from the
// local filesystem.
func NewWorkerPool(
	ctx context.Context,
	numWorkers int,
	reader FileReader,
	parse ParseFunc,
	log logger.Logger,
) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if reader == nil {
		reader = osReader{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan ReadJob, numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan ReadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		reader:      reader,
		parse:       parse,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.DebugWithFields("Starting sidecar readers", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop waits for queued jobs to finish and closes the result channel.
// It must be called once, after the last Submit.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit adds a new read job to the queue
func (wp *WorkerPool) Submit(job ReadJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel for consuming read results
func (wp *WorkerPool) Results() <-chan ReadResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Reader stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		result := wp.processJob(job)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job ReadJob) ReadResult {
	start := time.Now()
	result := ReadResult{Job: job}

	data, err := wp.reader.ReadFile(job.Path)
	if err != nil {
		result.Error = fmt.Errorf("read %s: %w", job.Path, err)
		result.Duration = time.Since(start)
		return result
	}
	result.Size = len(data)

	items, err := wp.parse(data)
	if err != nil {
		result.Error = fmt.Errorf("parse %s: %w", job.Path, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Items = items
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Sidecar read", map[string]interface{}{
		"path":     job.Path,
		"items":    len(items),
		"size":     result.Size,
		"duration": result.Duration,
	})
	return result
}

// ReadAll reads and parses every path with numWorkers concurrent readers.
// Items keep the order of paths. When several files fail, the error of the
// earliest path is returned.
func ReadAll(ctx context.Context, paths []string, numWorkers int, parse ParseFunc, log logger.Logger) ([]json.RawMessage, error) {
	pool := NewWorkerPool(ctx, numWorkers, nil, parse, log)
	pool.Start()

	go func() {
		defer pool.Stop()
		for i, path := range paths {
			if err := pool.Submit(ReadJob{Index: i, Path: path}); err != nil {
				return
			}
		}
	}()

	perFile := make([][]json.RawMessage, len(paths))
	var firstErr error
	firstIdx := len(paths)
	for res := range pool.Results() {
		if res.Error != nil {
			if res.Job.Index < firstIdx {
				firstIdx, firstErr = res.Job.Index, res.Error
			}
			continue
		}
		perFile[res.Job.Index] = res.Items
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := []json.RawMessage{}
	for _, batch := range perFile {
		items = append(items, batch...)
	}
	return items, nil
}
