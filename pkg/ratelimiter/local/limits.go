package local

import (
	"container/heap"
	"time"
)

// rollingLimit counts reservations made within the last window.
type rollingLimit struct {
	window time.Duration
	cap    uint64
	used   uint64
	heap   reservationHeap
}

type reservation struct {
	amount    uint64
	expiresAt time.Time
}

type reservationHeap []reservation

func (h reservationHeap) Len() int           { return len(h) }
func (h reservationHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h reservationHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *reservationHeap) Push(x any) {
	*h = append(*h, x.(reservation))
}

func (h *reservationHeap) Pop() any {
	old := *h
	n := len(old)
	res := old[n-1]
	*h = old[:n-1]
	return res
}

func (l *rollingLimit) cleanup(now time.Time) {
	for l.heap.Len() > 0 && !l.heap[0].expiresAt.After(now) {
		res := heap.Pop(&l.heap).(reservation)
		if l.used >= res.amount {
			l.used -= res.amount
		} else {
			l.used = 0
		}
	}
}

func (l *rollingLimit) fits(amount uint64) bool {
	return l.used+amount <= l.cap
}

// retryAfter is the time until the oldest reservation leaves the window.
func (l *rollingLimit) retryAfter(now time.Time) time.Duration {
	if l.heap.Len() == 0 {
		return minRetry
	}
	return clampRetry(l.heap[0].expiresAt.Sub(now))
}

func (l *rollingLimit) add(amount uint64, now time.Time) {
	l.used += amount
	heap.Push(&l.heap, reservation{amount: amount, expiresAt: now.Add(l.window)})
}

// concLimit counts leases holding a slot until Complete or their timeout.
type concLimit struct {
	timeout time.Duration
	cap     uint64
	holds   map[string]time.Time
}

func (l *concLimit) cleanup(now time.Time) {
	for id, expiresAt := range l.holds {
		if !expiresAt.After(now) {
			delete(l.holds, id)
		}
	}
}

func (l *concLimit) fits() bool {
	return uint64(len(l.holds))+1 <= l.cap
}

func (l *concLimit) add(leaseID string, now time.Time) {
	l.holds[leaseID] = now.Add(l.timeout)
}

func (l *concLimit) release(leaseID string) {
	delete(l.holds, leaseID)
}

const (
	minRetry = 50 * time.Millisecond
	maxRetry = 5 * time.Second
)

func clampRetry(d time.Duration) time.Duration {
	if d < minRetry {
		return minRetry
	}
	if d > maxRetry {
		return maxRetry
	}
	return d
}
