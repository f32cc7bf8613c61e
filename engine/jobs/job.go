package jobs

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/on3d/engine/core"
)

var ErrNoWorkers = errors.New("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
var ErrShutdown = errors.New("job system is shut down")

/** @brief A unit of work run by the job system. */
type Job struct {
	/** @brief Name used in log lines. */
	Name string
	/** @brief The work itself. A returned error marks the job as failed. */
	Run func() error
	/** @brief Called with the error of a failed job, if set. */
	OnFailure func(err error)
	/** @brief Called after a successful run, if set. */
	OnComplete func()
}

// JobSystem runs submitted jobs on a fixed set of worker goroutines.
type JobSystem struct {
	numWorkers int
	jobQueue   chan Job
	wg         sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				if err := job.Run(); err != nil {
					core.LogDebug("job %s failed: %s", job.Name, err)
					if job.OnFailure != nil {
						job.OnFailure(err)
					}
					continue
				}
				if job.OnComplete != nil {
					job.OnComplete()
				}
			}
		}()
	}
}

// Workers returns the number of worker goroutines.
func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down. Queued jobs still run; Submit fails afterwards.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param job The job to be executed.
 */
func (js *JobSystem) Submit(job Job) error {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.closed {
		return ErrShutdown
	}
	js.jobQueue <- job
	return nil
}

// RunAll submits every job, waits for all of them and returns the first failure.
func (js *JobSystem) RunAll(jobs []Job) error {
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, job := range jobs {
		run, onFailure, onComplete := job.Run, job.OnFailure, job.OnComplete
		// callbacks run before Done so RunAll returns after all of them
		job.OnFailure, job.OnComplete = nil, nil
		job.Run = func() error {
			defer wg.Done()
			err := run()
			if err != nil {
				once.Do(func() { firstErr = err })
				if onFailure != nil {
					onFailure(err)
				}
				return err
			}
			if onComplete != nil {
				onComplete()
			}
			return nil
		}
		wg.Add(1)
		if err := js.Submit(job); err != nil {
			wg.Done()
			once.Do(func() { firstErr = err })
			break
		}
	}
	wg.Wait()
	return firstErr
}
