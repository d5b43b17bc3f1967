// Package bus carries the process-wide "data changed" broadcast fired
// after a confirmed expense is persisted, so dashboards and transaction
// lists can refresh without polling.
package bus

import "sync"

// ExpenseRecorded is the only event the pipeline publishes.
type ExpenseRecorded struct {
	ID       string
	Amount   float64
	Merchant string
	Category string
}

const subscriberBuffer = 8

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// that falls more than subscriberBuffer events behind misses the overflow.
type Bus struct {
	mu   sync.Mutex
	subs map[<-chan ExpenseRecorded]chan ExpenseRecorded
}

func New() *Bus {
	return &Bus{subs: make(map[<-chan ExpenseRecorded]chan ExpenseRecorded)}
}

func (b *Bus) Subscribe() <-chan ExpenseRecorded {
	ch := make(chan ExpenseRecorded, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = ch
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(sub <-chan ExpenseRecorded) {
	b.mu.Lock()
	if ch, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(ev ExpenseRecorded) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
