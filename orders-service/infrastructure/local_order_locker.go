package infrastructure

import (
	"context"
	"sync"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

var _ domain.OrderLocker = (*LocalOrderLocker)(nil)

type orderSlot struct {
	ch   chan struct{}
	refs int
}

// LocalOrderLocker serializes work on an order within a single process
type LocalOrderLocker struct {
	mu    sync.Mutex
	slots map[models.ID]*orderSlot
}

func NewLocalOrderLocker() *LocalOrderLocker {
	return &LocalOrderLocker{slots: make(map[models.ID]*orderSlot)}
}

func (l *LocalOrderLocker) Lock(ctx context.Context, orderID models.ID) (domain.ReleaseFunc, error) {
	slot := l.acquireSlot(orderID)

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(orderID, slot)
		return nil, errors.Wrap(ctx.Err(), "failed to acquire order lock")
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.releaseSlot(orderID, slot)
		})
	}, nil
}

func (l *LocalOrderLocker) acquireSlot(orderID models.ID) *orderSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[orderID]
	if !ok {
		slot = &orderSlot{ch: make(chan struct{}, 1)}
		l.slots[orderID] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalOrderLocker) releaseSlot(orderID models.ID, slot *orderSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, orderID)
	}
}
