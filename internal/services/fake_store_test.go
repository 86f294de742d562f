package services

import (
	"context"
	"sync"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/storage"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	mu       sync.Mutex
	projects map[int64]storage.Project
	items    map[int64]core.ProjectItem
	txs      map[int64]core.Transaction
	prefs    map[int64][]string
	nextItem int64
	nextTx   int64

	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[int64]storage.Project{
			1: {ID: 1, Name: "Casa Piantini", ClientName: "Familia Gómez"},
		},
		items: make(map[int64]core.ProjectItem),
		txs:   make(map[int64]core.Transaction),
		prefs: make(map[int64][]string),
	}
}

func (f *fakeStore) GetProject(_ context.Context, id int64) (storage.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return storage.Project{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateItem(_ context.Context, item core.ProjectItem) (core.ProjectItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextItem++
	item.ID = f.nextItem
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeStore) GetItem(_ context.Context, id int64) (core.ProjectItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return core.ProjectItem{}, storage.ErrNotFound
	}
	return item, nil
}

func (f *fakeStore) ListProjectItems(_ context.Context, projectID int64) ([]core.ProjectItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var items []core.ProjectItem
	for id := int64(1); id <= f.nextItem; id++ {
		if item, ok := f.items[id]; ok && item.ProjectID == projectID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, item core.ProjectItem) (core.ProjectItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return core.ProjectItem{}, storage.ErrNotFound
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeStore) DeleteItem(_ context.Context, id int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return nil, storage.ErrNotFound
	}
	delete(f.items, id)
	var cascaded []int64
	for txID := int64(1); txID <= f.nextTx; txID++ {
		if tx, ok := f.txs[txID]; ok && tx.ProjectItemID == id {
			delete(f.txs, txID)
			cascaded = append(cascaded, txID)
		}
	}
	return cascaded, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTx++
	t.ID = f.nextTx
	f.txs[t.ID] = t
	return t, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListItemTransactions(_ context.Context, itemID int64) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var txs []core.Transaction
	for id := int64(1); id <= f.nextTx; id++ {
		if t, ok := f.txs[id]; ok && t.ProjectItemID == itemID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (f *fakeStore) ListProjectTransactions(_ context.Context, projectID int64) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var txs []core.Transaction
	for id := int64(1); id <= f.nextTx; id++ {
		if t, ok := f.txs[id]; ok && t.ProjectID == projectID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[t.ID]; !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	f.txs[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

func (f *fakeStore) LoadColumnPreferences(_ context.Context, projectID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prefs[projectID], nil
}

func (f *fakeStore) SaveColumnPreferences(_ context.Context, projectID int64, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[projectID] = keys
	return nil
}

// fakePublisher records published ledger events.
type fakePublisher struct {
	mu       sync.Mutex
	messages []*amqp.LedgerMessage
}

func (p *fakePublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *fakePublisher) published() []*amqp.LedgerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.LedgerMessage(nil), p.messages...)
}

// fakeNotifier records over-budget notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	items []int64
}

func (n *fakeNotifier) NotifyOverBudget(_ context.Context, item core.ProjectItem, _ core.BudgetGuidance) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, item.ID)
}
