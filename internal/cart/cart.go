package cart

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukerupert/grocer/internal/model"
)

// Catalog is the read-only item lookup the cart validates against.
type Catalog interface {
	FindItem(id uint64) (model.CategoryItem, bool)
}

// Store persists cart entries. Implementations are called with the service
// lock held, so they never see concurrent calls from one Service.
type Store interface {
	// List returns stored entries in insertion order.
	List() ([]model.GroceryItem, error)
	Insert(item model.GroceryItem) error
	Delete(id uint64) error
	SetCompleted(id uint64, completed bool) error
}

// Recorder receives the outcome of every mutating call.
type Recorder interface {
	RecordOperation(op string, err error)
	SetEntries(n int)
}

// Action names a successful cart mutation.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionToggled Action = "toggled"
)

// Notifier is called after a successful mutation. Calls arrive one at a
// time in mutation order, after the cart lock is released but before the
// next mutation's notification. A Notifier must not block and must not call
// back into the Service.
type Notifier func(action Action, item model.GroceryItem)

// Summary counts the entries currently in the cart.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Remaining int `json:"remaining"`
}

// Service owns the cart. A single lock serializes all mutations so that
// validation and mutation happen atomically; readers get snapshots.
type Service struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	catalog  Catalog
	store    Store
	entries  map[uint64]*model.GroceryItem
	order    []uint64
	notify   Notifier
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStore makes the service write every mutation through to st before
// applying it in memory. Existing entries in st are loaded by New.
func WithStore(st Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithNotifier registers fn to hear about every successful mutation.
func WithNotifier(fn Notifier) Option {
	return func(s *Service) {
		s.notify = fn
	}
}

// WithRecorder reports every mutating call, successful or not, to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a cart backed by catalog. If a store is configured its
// entries are replayed; entries whose id is no longer in the catalog are
// skipped.
func New(catalog Catalog, opts ...Option) (*Service, error) {
	s := &Service{
		catalog: catalog,
		entries: make(map[uint64]*model.GroceryItem),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store != nil {
		if err := s.restore(); err != nil {
			return nil, err
		}
	}
	if s.recorder != nil {
		s.recorder.SetEntries(len(s.order))
	}
	return s, nil
}

func (s *Service) restore() error {
	stored, err := s.store.List()
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}
	for _, e := range stored {
		item, ok := s.catalog.FindItem(e.ID)
		if !ok {
			s.logger.Warn("dropping stored cart entry not in catalog", "id", e.ID)
			continue
		}
		if _, dup := s.entries[e.ID]; dup {
			s.logger.Warn("dropping duplicate stored cart entry", "id", e.ID)
			continue
		}
		s.entries[e.ID] = &model.GroceryItem{
			ID:        item.ID,
			Name:      item.Name,
			Emoji:     item.Emoji,
			Completed: e.Completed,
		}
		s.order = append(s.order, e.ID)
	}
	if len(s.order) > 0 {
		s.logger.Info("restored cart", "entries", len(s.order))
	}
	return nil
}

// Add puts the catalog item id into the cart with completed=false.
func (s *Service) Add(id uint64) error {
	s.mu.Lock()
	item, err := s.add(id)
	return s.finish("add", ActionAdded, item, err)
}

func (s *Service) add(id uint64) (model.GroceryItem, error) {
	ci, ok := s.catalog.FindItem(id)
	if !ok {
		return model.GroceryItem{}, itemError(id, errNotInCatalog)
	}
	if _, exists := s.entries[id]; exists {
		return model.GroceryItem{}, itemError(id, ErrAlreadyInCart)
	}

	item := model.GroceryItem{ID: ci.ID, Name: ci.Name, Emoji: ci.Emoji}
	if s.store != nil {
		if err := s.store.Insert(item); err != nil {
			return model.GroceryItem{}, itemError(id, err)
		}
	}
	s.entries[id] = &item
	s.order = append(s.order, id)
	return item, nil
}

// Remove deletes the entry for id.
func (s *Service) Remove(id uint64) error {
	s.mu.Lock()
	item, err := s.remove(id)
	return s.finish("remove", ActionRemoved, item, err)
}

func (s *Service) remove(id uint64) (model.GroceryItem, error) {
	e, ok := s.entries[id]
	if !ok {
		return model.GroceryItem{}, itemError(id, errNotInCart)
	}
	if s.store != nil {
		if err := s.store.Delete(id); err != nil {
			return model.GroceryItem{}, itemError(id, err)
		}
	}
	item := *e
	delete(s.entries, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return item, nil
}

// Toggle flips the completed flag of the entry for id.
func (s *Service) Toggle(id uint64) error {
	s.mu.Lock()
	item, err := s.toggle(id)
	return s.finish("toggle", ActionToggled, item, err)
}

func (s *Service) toggle(id uint64) (model.GroceryItem, error) {
	e, ok := s.entries[id]
	if !ok {
		return model.GroceryItem{}, itemError(id, errNotInCart)
	}
	completed := !e.Completed
	if s.store != nil {
		if err := s.store.SetCompleted(id, completed); err != nil {
			return model.GroceryItem{}, itemError(id, err)
		}
	}
	e.Completed = completed
	return *e, nil
}

// finish is entered with s.mu held and releases it. The gauge is set under
// the lock so it always matches the last mutation; notifyMu is taken before
// the lock is dropped so notifications leave in mutation order.
func (s *Service) finish(op string, action Action, item model.GroceryItem, err error) error {
	if s.recorder != nil {
		s.recorder.RecordOperation(op, err)
		s.recorder.SetEntries(len(s.order))
	}

	if err != nil || s.notify == nil {
		s.mu.Unlock()
		if err != nil {
			s.logger.Debug("cart operation rejected", "op", op, "error", err)
		} else {
			s.logger.Debug("cart operation", "op", op, "id", item.ID)
		}
		return err
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.logger.Debug("cart operation", "op", op, "id", item.ID)
	s.notify(action, item)
	return nil
}

// Items returns the cart entries, first added first.
func (s *Service) Items() []model.GroceryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.GroceryItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, *s.entries[id])
	}
	return items
}

// Summary counts entries by completion state.
func (s *Service) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{Total: len(s.order)}
	for _, e := range s.entries {
		if e.Completed {
			sum.Completed++
		}
	}
	sum.Remaining = sum.Total - sum.Completed
	return sum
}
