// Package memory is an in-process implementation of repositories.Store.
// Transactions serialize on a single mutex and roll back by restoring a
// snapshot, so row locks are implicit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"freelink/internal/models"
	"freelink/internal/repositories"
)

type state struct {
	nextID       uint
	users        map[uint]models.User
	wallets      map[uint]models.Wallet // keyed by wallet id
	entries      []models.WalletEntry
	transactions map[uint]models.Transaction
	escrows      map[uint]models.Escrow
	disputes     map[uint]models.EscrowDispute
}

func newState() *state {
	return &state{
		users:        make(map[uint]models.User),
		wallets:      make(map[uint]models.Wallet),
		transactions: make(map[uint]models.Transaction),
		escrows:      make(map[uint]models.Escrow),
		disputes:     make(map[uint]models.EscrowDispute),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextID:       s.nextID,
		users:        make(map[uint]models.User, len(s.users)),
		wallets:      make(map[uint]models.Wallet, len(s.wallets)),
		entries:      append([]models.WalletEntry(nil), s.entries...),
		transactions: make(map[uint]models.Transaction, len(s.transactions)),
		escrows:      make(map[uint]models.Escrow, len(s.escrows)),
		disputes:     make(map[uint]models.EscrowDispute, len(s.disputes)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.escrows {
		c.escrows[k] = v
	}
	for k, v := range s.disputes {
		c.disputes[k] = v
	}
	return c
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

// Store implements repositories.Store in memory.
type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState(), now: time.Now}
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() repositories.UserRepository               { return userRepo{s} }
func (s *Store) Wallets() repositories.WalletRepository           { return walletRepo{s} }
func (s *Store) Transactions() repositories.TransactionRepository { return transactionRepo{s} }
func (s *Store) Escrows() repositories.EscrowRepository           { return escrowRepo{s} }
func (s *Store) Disputes() repositories.DisputeRepository         { return disputeRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.st.clone()
	tx := &Store{mu: s.mu, st: s.st, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// newestFirst orders by creation time then id, both descending.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) uint) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}
