package services

import (
	"context"
	"math/rand"
	"sync"

	"github.com/canteenlab/mealqueue/internal/errors"
	"github.com/canteenlab/mealqueue/internal/logger"
	"github.com/canteenlab/mealqueue/internal/metrics"
	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/store"
)

// LedgerService owns the vote records: one per slot, candidates fixed at
// open time, winner fixed at close time. State lives in memory and is
// written through to the store inside the same critical section, so a
// failed write leaves no visible mutation.
type LedgerService struct {
	log   logger.Logger
	store store.VoteStore
	dir   DirectoryReader

	mu      sync.Mutex
	records []models.VoteRecord
	// voters maps slot key -> studentID -> menuID currently voted for,
	// making re-votes O(1) instead of a scan over every option
	voters      map[string]map[string]string
	broadcaster Broadcaster
}

// NewLedgerService creates a LedgerService, recovering persisted records
func NewLedgerService(log logger.Logger, st store.VoteStore, dir DirectoryReader) (*LedgerService, error) {
	records, err := st.LoadVotes(context.Background())
	if err != nil {
		return nil, errors.Storage(err, "recover vote ledger")
	}

	s := &LedgerService{
		log:     log,
		store:   st,
		dir:     dir,
		records: records,
		voters:  make(map[string]map[string]string),
	}
	for _, rec := range records {
		index := make(map[string]string)
		for _, opt := range rec.Menus {
			for _, id := range opt.VotedStudentIDs {
				index[id] = opt.MenuID
			}
		}
		s.voters[rec.Slot().String()] = index
	}

	if len(records) > 0 {
		log.Info("Recovered vote ledger", "records", len(records))
	}
	return s, nil
}

// SetBroadcaster wires the observer notified after ledger changes
func (s *LedgerService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// PickCandidates selects a random subset of menus to put up for vote.
// Which menus become candidates is canteen policy, not ledger semantics,
// so it stays outside OpenSlot.
func PickCandidates(menus []models.Menu, n int) []models.Menu {
	if n <= 0 || n > len(menus) {
		n = len(menus)
	}
	shuffled := append([]models.Menu{}, menus...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// OpenSlot creates the vote record for a slot. ErrAlreadyOpen covers both
// open and already-closed slots: a slot gets exactly one vote cycle, ever.
func (s *LedgerService) OpenSlot(ctx context.Context, slot models.Slot, candidates []models.Menu) (*models.VoteRecord, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	seen := make(map[string]bool, len(candidates))
	for _, menu := range candidates {
		if seen[menu.MenuID] {
			return nil, errors.Validationf("duplicate candidate menu %s", menu.MenuID)
		}
		seen[menu.MenuID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(slot) != -1 {
		return nil, ErrAlreadyOpen
	}

	options := make([]models.VoteOption, len(candidates))
	for i, menu := range candidates {
		options[i] = models.VoteOption{
			MenuID:          menu.MenuID,
			Name:            menu.Name,
			VotedStudentIDs: []string{},
		}
	}
	record := models.VoteRecord{
		Date:     slot.Date,
		Type:     slot.Type,
		Menus:    options,
		Winner:   nil,
		TotalRaw: map[string]int{},
	}

	s.records = append(s.records, record)
	if err := s.persistLocked(ctx); err != nil {
		s.records = s.records[:len(s.records)-1]
		return nil, err
	}
	s.voters[slot.String()] = make(map[string]string)

	s.log.Info("Slot opened", "slot", slot.String(), "candidates", len(candidates))
	s.notifyLocked(record)
	return &record, nil
}

// CastVote records studentID's vote for menuID within the slot. A re-vote
// replaces the student's previous choice; the last accepted call wins.
func (s *LedgerService) CastVote(ctx context.Context, slot models.Slot, studentID, menuID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(slot)
	if idx == -1 {
		return ErrSlotNotFound
	}
	record := &s.records[idx]
	if record.Closed() {
		return ErrSlotClosed
	}

	target := -1
	for i := range record.Menus {
		if record.Menus[i].MenuID == menuID {
			target = i
			break
		}
	}
	if target == -1 {
		return ErrUnknownOption
	}

	index := s.voters[slot.String()]
	prevMenuID, hadPrev := index[studentID]
	if hadPrev && prevMenuID == menuID {
		// already voted for this option; nothing to change
		return nil
	}

	prevMenus := make([]models.VoteOption, len(record.Menus))
	for i, opt := range record.Menus {
		prevMenus[i] = opt
		prevMenus[i].VotedStudentIDs = append([]string{}, opt.VotedStudentIDs...)
	}

	if hadPrev {
		for i := range record.Menus {
			if record.Menus[i].MenuID != prevMenuID {
				continue
			}
			ids := record.Menus[i].VotedStudentIDs
			for j, id := range ids {
				if id == studentID {
					record.Menus[i].VotedStudentIDs = append(ids[:j:j], ids[j+1:]...)
					break
				}
			}
		}
	}
	record.Menus[target].VotedStudentIDs = append(record.Menus[target].VotedStudentIDs, studentID)

	if err := s.persistLocked(ctx); err != nil {
		record.Menus = prevMenus
		return err
	}
	index[studentID] = menuID

	metrics.VotesCast.Inc()
	s.log.Info("Vote recorded", "slot", slot.String(), "student", studentID, "menu", menuID)
	s.notifyLocked(*record)
	return nil
}

// CloseSlot resolves the winner and aggregates raw portion weights for the
// kitchen. Highest vote count wins; a tie goes to the option listed first.
// The result is immutable: closing twice fails with ErrAlreadyClosed.
func (s *LedgerService) CloseSlot(ctx context.Context, slot models.Slot) (*models.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(slot)
	if idx == -1 {
		return nil, ErrSlotNotFound
	}
	record := &s.records[idx]
	if record.Closed() {
		return nil, ErrAlreadyClosed
	}

	winner := 0
	for i := 1; i < len(record.Menus); i++ {
		if len(record.Menus[i].VotedStudentIDs) > len(record.Menus[winner].VotedStudentIDs) {
			winner = i
		}
	}
	winnerID := record.Menus[winner].MenuID

	totalRaw, err := s.aggregatePortions(ctx, winnerID)
	if err != nil {
		return nil, err
	}

	record.Winner = &winnerID
	record.TotalRaw = totalRaw
	if err := s.persistLocked(ctx); err != nil {
		record.Winner = nil
		record.TotalRaw = map[string]int{}
		return nil, err
	}

	s.log.Info("Slot closed", "slot", slot.String(), "winner", winnerID,
		"votes", len(record.Menus[winner].VotedStudentIDs))
	s.notifyLocked(*record)
	closed := *record
	return &closed, nil
}

// aggregatePortions sums each ingredient's configured raw weight over every
// student that has a portion config for the winning menu. Students without
// one simply contribute nothing.
func (s *LedgerService) aggregatePortions(ctx context.Context, menuID string) (map[string]int, error) {
	menu, err := s.dir.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	students, err := s.dir.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	totalRaw := map[string]int{}
	for _, student := range students {
		config := student.MenuConfigs[menuID]
		if config == nil {
			continue
		}
		for _, item := range menu.Items {
			if portion, ok := config[item.ItemID]; ok {
				totalRaw[item.Name] += portion.RawWeight
			}
		}
	}
	return totalRaw, nil
}

// Get returns the vote record for a slot
func (s *LedgerService) Get(ctx context.Context, slot models.Slot) (*models.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(slot)
	if idx == -1 {
		return nil, ErrSlotNotFound
	}
	record := s.records[idx]
	return &record, nil
}

// List returns all vote records in their persisted order
func (s *LedgerService) List(ctx context.Context) ([]models.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.VoteRecord{}, s.records...), nil
}

func (s *LedgerService) findLocked(slot models.Slot) int {
	for i := range s.records {
		if s.records[i].Date == slot.Date && s.records[i].Type == slot.Type {
			return i
		}
	}
	return -1
}

func (s *LedgerService) persistLocked(ctx context.Context) error {
	if err := s.store.SaveVotes(ctx, s.records); err != nil {
		return errors.Storage(err, "persist vote ledger")
	}
	return nil
}

func (s *LedgerService) notifyLocked(record models.VoteRecord) {
	if s.broadcaster != nil {
		s.broadcaster.VoteChanged(record)
	}
}
