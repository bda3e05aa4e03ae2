package models

import (
	"container/heap"
	"sync"
	"time"
)

// PositionSample is one scheduled position report in a replayed trip.
type PositionSample struct {
	At       time.Time
	Step     int
	Location Location
}

// SampleQueue is a time-ordered priority queue of position samples.
type SampleQueue struct {
	samples []*PositionSample
	mutex   sync.Mutex
}

// sampleHeap implements heap.Interface, earliest sample first; ties keep step order.
type sampleHeap []*PositionSample

func (h sampleHeap) Len() int { return len(h) }
func (h sampleHeap) Less(i, j int) bool {
	if h[i].At.Equal(h[j].At) {
		return h[i].Step < h[j].Step
	}
	return h[i].At.Before(h[j].At)
}
func (h sampleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *sampleHeap) Push(x interface{}) {
	*h = append(*h, x.(*PositionSample))
}

func (h *sampleHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func NewSampleQueue() *SampleQueue {
	return &SampleQueue{samples: make([]*PositionSample, 0)}
}

func (q *SampleQueue) Enqueue(sample *PositionSample) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	heap.Push((*sampleHeap)(&q.samples), sample)
}

// Dequeue removes and returns the earliest sample, or nil when empty.
func (q *SampleQueue) Dequeue() *PositionSample {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.samples) == 0 {
		return nil
	}
	return heap.Pop((*sampleHeap)(&q.samples)).(*PositionSample)
}

// DequeueDue pops every sample scheduled at or before now, in order.
func (q *SampleQueue) DequeueDue(now time.Time) []*PositionSample {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	var due []*PositionSample
	for len(q.samples) > 0 && !q.samples[0].At.After(now) {
		due = append(due, heap.Pop((*sampleHeap)(&q.samples)).(*PositionSample))
	}
	return due
}

func (q *SampleQueue) Peek() *PositionSample {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.samples) == 0 {
		return nil
	}
	return q.samples[0]
}

func (q *SampleQueue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.samples)
}
