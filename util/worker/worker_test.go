package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	started bool
	got     []int
}

func (r *recorder) Start() { r.started = true }

func (r *recorder) Handle(t Task) { r.got = append(r.got, t.(int)) }

func TestWorkerOrder(t *testing.T) {
	var wg sync.WaitGroup
	w := NewWorker("test", 4, &wg)
	assert.Equal(t, "test", w.Name())
	r := &recorder{}
	w.Start(r)
	for i := 0; i < 10; i++ {
		w.Sender() <- i
	}
	w.Stop()
	wg.Wait()
	assert.True(t, r.started)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, r.got)
	assert.Equal(t, uint64(10), w.Handled())
}
