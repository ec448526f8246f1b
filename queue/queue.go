// Package queue implements a Redis-backed job queue with a worker pool.
// Jobs are delivered at least once and in no particular order; a handler
// error is logged and the job is dropped, there are no retries.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/skillhub/skillhub-api/utils/cache"
)

const (
	// JobTypeNotification delivers a pending notification email.
	JobTypeNotification = "notification.deliver"

	defaultQueueKey = "skillhub:jobs"
	popTimeout      = 5 * time.Second
)

// Job is a unit of background work pushed onto the Redis list.
type Job struct {
	Type           string `json:"type"`
	NotificationID uint   `json:"notification_id,omitempty"`
}

// Handler processes a single job.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, job Job) error

// Handle calls f(ctx, job).
func (f HandlerFunc) Handle(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// Queue is a Redis-list job queue consumed by a pool of workers.
type Queue struct {
	redisCache *cache.RedisCache
	key        string
	workers    int

	mu       sync.Mutex
	handlers map[string]Handler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a queue backed by the given Redis cache.
func New(redisCache *cache.RedisCache, workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		redisCache: redisCache,
		key:        defaultQueueKey,
		workers:    workers,
		handlers:   make(map[string]Handler),
	}
}

// Register binds a handler to a job type. Must be called before Start.
func (q *Queue) Register(jobType string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	if err := q.redisCache.LPush(ctx, q.key, payload); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return nil
}

// Depth returns the number of jobs waiting in the queue.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.redisCache.LLen(ctx, q.key)
}

// Start launches the worker pool. Workers run until Stop is called.
func (q *Queue) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	log.Printf("Queue: started %d workers on %s", q.workers, q.key)
}

// Stop signals all workers to exit and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
	log.Println("Queue: all workers stopped")
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := q.redisCache.BRPop(ctx, popTimeout, q.key)
		if err != nil {
			if err == cache.ErrNotFound {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Printf("Queue: worker %d pop error: %v", id, err)
			time.Sleep(time.Second)
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			log.Printf("Queue: worker %d dropping malformed job: %v", id, err)
			continue
		}

		q.dispatch(ctx, id, job)
	}
}

func (q *Queue) dispatch(ctx context.Context, workerID int, job Job) {
	q.mu.Lock()
	handler, ok := q.handlers[job.Type]
	q.mu.Unlock()

	if !ok {
		log.Printf("Queue: worker %d has no handler for job type %q", workerID, job.Type)
		return
	}

	if err := handler.Handle(ctx, job); err != nil {
		log.Printf("Queue: worker %d job %q failed: %v", workerID, job.Type, err)
	}
}
