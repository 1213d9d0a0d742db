// Package memory is an in-process implementation of the storage repositories.
// It returns the same sentinel errors as the Postgres repositories and emulates
// the bookings overlap constraint, so usecases behave identically on both drivers.
package memory

import (
	"sync"
	"time"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

// ProviderStats агрегаты мастера
type ProviderStats struct {
	CompletedCount  int
	CancelledCount  int
	NoShowCount     int
	LastCompletedAt *time.Time
}

// ClientReliability надёжность клиента
type ClientReliability struct {
	NoShowCount      int
	ReliabilityScore int
}

type state struct {
	providers         map[int64]domain.Provider
	workingHours      map[int64]map[time.Weekday]domain.WorkingHoursEntry
	services          map[int64]domain.Service
	bookings          map[int64]domain.Booking
	blocks            map[int64]domain.BlockedInterval
	history           []domain.BookingHistoryEntry
	outbox            []domain.OutboxEvent
	providerStats     map[int64]ProviderStats
	clientReliability map[int64]ClientReliability

	bookingSeq int64
	blockSeq   int64
	historySeq int64
	outboxSeq  int64
}

func newState() state {
	return state{
		providers:         make(map[int64]domain.Provider),
		workingHours:      make(map[int64]map[time.Weekday]domain.WorkingHoursEntry),
		services:          make(map[int64]domain.Service),
		bookings:          make(map[int64]domain.Booking),
		blocks:            make(map[int64]domain.BlockedInterval),
		providerStats:     make(map[int64]ProviderStats),
		clientReliability: make(map[int64]ClientReliability),
	}
}

// clone глубокая копия для отката транзакции
func (s *state) clone() state {
	c := *s

	c.providers = make(map[int64]domain.Provider, len(s.providers))
	for k, v := range s.providers {
		c.providers[k] = v
	}
	c.workingHours = make(map[int64]map[time.Weekday]domain.WorkingHoursEntry, len(s.workingHours))
	for k, week := range s.workingHours {
		cw := make(map[time.Weekday]domain.WorkingHoursEntry, len(week))
		for d, e := range week {
			cw[d] = e
		}
		c.workingHours[k] = cw
	}
	c.services = make(map[int64]domain.Service, len(s.services))
	for k, v := range s.services {
		c.services[k] = v
	}
	c.bookings = make(map[int64]domain.Booking, len(s.bookings))
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	c.blocks = make(map[int64]domain.BlockedInterval, len(s.blocks))
	for k, v := range s.blocks {
		c.blocks[k] = v
	}
	c.history = append([]domain.BookingHistoryEntry(nil), s.history...)
	c.outbox = append([]domain.OutboxEvent(nil), s.outbox...)
	c.providerStats = make(map[int64]ProviderStats, len(s.providerStats))
	for k, v := range s.providerStats {
		c.providerStats[k] = v
	}
	c.clientReliability = make(map[int64]ClientReliability, len(s.clientReliability))
	for k, v := range s.clientReliability {
		c.clientReliability[k] = v
	}

	return c
}

// Store общее состояние всех in-memory репозиториев
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	now  func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{data: newState(), now: time.Now}
}

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }
func (s *Store) Schedule() *ScheduleRepository { return &ScheduleRepository{s: s} }
func (s *Store) Catalog() *CatalogRepository { return &CatalogRepository{s: s} }
func (s *Store) History() *HistoryRepository { return &HistoryRepository{s: s} }
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }
func (s *Store) Stats() *StatsRepository { return &StatsRepository{s: s} }
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

// AddProvider добавляет мастера (наполнение данных и тесты)
func (s *Store) AddProvider(p domain.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.data.providers[p.ID] = p
}

// AddService добавляет услугу в каталог
func (s *Store) AddService(svc domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.services[svc.ID] = svc
}

// SetWorkingHours задает расписание мастера на день недели
func (s *Store) SetWorkingHours(entry domain.WorkingHoursEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setWorkingHoursLocked(entry)
}

func (s *Store) setWorkingHoursLocked(entry domain.WorkingHoursEntry) {
	week, ok := s.data.workingHours[entry.ProviderID]
	if !ok {
		week = make(map[time.Weekday]domain.WorkingHoursEntry)
		s.data.workingHours[entry.ProviderID] = week
	}
	week[entry.DayOfWeek] = entry
}

// ProviderStats возвращает агрегаты мастера
func (s *Store) ProviderStats(providerID int64) ProviderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.providerStats[providerID]
}

// ClientReliability возвращает надёжность клиента (100, если записей нет)
func (s *Store) ClientReliability(clientID int64) ClientReliability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.data.clientReliability[clientID]; ok {
		return r
	}
	return ClientReliability{ReliabilityScore: 100}
}

// OutboxEvents возвращает копию всех событий outbox
func (s *Store) OutboxEvents() []domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OutboxEvent(nil), s.data.outbox...)
}
