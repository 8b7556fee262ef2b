package worker

import (
	"sync"

	uatomic "go.uber.org/atomic"
)

type TaskStop struct{}

type Task interface{}

type TaskHandler interface {
	Handle(t Task)
}

type Starter interface {
	Start()
}

// Worker runs a TaskHandler on its own goroutine, feeding it tasks in the
// order they were sent.
type Worker struct {
	name    string
	sender  chan<- Task
	receive <-chan Task
	wg      *sync.WaitGroup
	handled uatomic.Uint64
}

func (w *Worker) Start(handler TaskHandler) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if s, ok := handler.(Starter); ok {
			s.Start()
		}
		for task := range w.receive {
			if _, ok := task.(TaskStop); ok {
				return
			}
			handler.Handle(task)
			w.handled.Inc()
		}
	}()
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Sender() chan<- Task {
	return w.sender
}

// Handled is the number of tasks the handler has finished.
func (w *Worker) Handled() uint64 {
	return w.handled.Load()
}

// Stop asks the worker to exit after the tasks already queued.
func (w *Worker) Stop() {
	w.sender <- TaskStop{}
}

const defaultWorkerCapacity = 128

func NewWorker(name string, capacity int, wg *sync.WaitGroup) *Worker {
	if capacity <= 0 {
		capacity = defaultWorkerCapacity
	}
	ch := make(chan Task, capacity)
	return &Worker{
		sender:  (chan<- Task)(ch),
		receive: (<-chan Task)(ch),
		name:    name,
		wg:      wg,
	}
}
