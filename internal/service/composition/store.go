package composition

import (
	"sort"
	"sync"
	"time"

	model "contrapunto/internal/model/composition"
)

// UnitPatch is a field-subset edit of a dialog unit. Nil fields are left
// untouched. Status, result and last error are owned by the generator and can
// never be edited through a patch.
type UnitPatch struct {
	Character  *model.Character
	Background *model.Background
	Mode       *model.GenerationMode
	Dialog     *string
}

// Store owns every live composition aggregate. All state transitions happen
// under one mutex and units are replaced whole, never mutated in place, so a
// read-modify-write can never interleave with a concurrent edit of the same
// unit. Network calls always happen outside the lock.
type Store struct {
	mu       sync.Mutex
	comps    map[string]*model.Composition
	inflight map[string]map[int]struct{} // composition id -> unit indices mid-generation
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		comps:    make(map[string]*model.Composition),
		inflight: make(map[string]map[int]struct{}),
	}
}

// Put registers an aggregate (new or loaded from persistence).
func (s *Store) Put(c *model.Composition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comps[c.ID] = c.Clone()
}

// Get returns a deep copy of the aggregate.
func (s *Store) Get(id string) (*model.Composition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comps[id]
	if !ok {
		return nil, ErrCompositionNotFound
	}
	return c.Clone(), nil
}

// Has reports whether the aggregate is loaded.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.comps[id]
	return ok
}

// List returns copies of an owner's aggregates, newest first.
func (s *Store) List(ownerID string) []*model.Composition {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Composition
	for _, c := range s.comps {
		if c.OwnerID == ownerID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Remove drops the aggregate from memory.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.comps, id)
	delete(s.inflight, id)
}

// AddUnit appends a fresh idle unit with the next sequential index and
// returns a copy of it.
func (s *Store) AddUnit(id string) (model.DialogUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return model.DialogUnit{}, ErrCompositionNotFound
	}

	if c.NextIndex < 1 {
		c.NextIndex = 1
	}
	unit := model.DialogUnit{
		Index:  c.NextIndex,
		Status: model.UnitStatusIdle,
	}
	c.NextIndex++
	c.Units = append(c.Units, unit)
	c.UpdatedAt = time.Now()

	return unit.Clone(), nil
}

// UpdateUnit applies a pure field merge. It never touches status, result or
// last error, and deliberately does not invalidate a prior result when the
// inputs change: staleness is the operator's call, matching the observed
// product behavior.
func (s *Store) UpdateUnit(id string, index int, patch UnitPatch) (model.DialogUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, pos, err := s.unitLocked(id, index)
	if err != nil {
		return model.DialogUnit{}, err
	}

	unit := c.Units[pos].Clone()
	if patch.Character != nil {
		unit.Character = *patch.Character
	}
	if patch.Background != nil {
		unit.Background = *patch.Background
	}
	if patch.Mode != nil {
		unit.Mode = *patch.Mode
	}
	if patch.Dialog != nil {
		unit.Dialog = *patch.Dialog
	}
	c.Units[pos] = unit
	c.UpdatedAt = time.Now()

	return unit.Clone(), nil
}

// AttachClip replaces the unit's source clip reference. Like any other field
// edit it leaves the generation state alone.
func (s *Store) AttachClip(id string, index int, clip model.ClipRef) (model.DialogUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, pos, err := s.unitLocked(id, index)
	if err != nil {
		return model.DialogUnit{}, err
	}

	unit := c.Units[pos].Clone()
	unit.Clip = &clip
	c.Units[pos] = unit
	c.UpdatedAt = time.Now()

	return unit.Clone(), nil
}

// RemoveUnit deletes a unit. Remaining indices keep their values; NextIndex
// never rewinds, so an index is never reused within a session.
func (s *Store) RemoveUnit(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, pos, err := s.unitLocked(id, index)
	if err != nil {
		return err
	}
	if s.isInflightLocked(id, index) {
		return ErrGenerationInFlight
	}

	c.Units = append(c.Units[:pos], c.Units[pos+1:]...)
	c.UpdatedAt = time.Now()
	return nil
}

// UnitsSorted returns copies of all units in ascending index order.
func (s *Store) UnitsSorted(id string) ([]model.DialogUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return nil, ErrCompositionNotFound
	}

	units := make([]model.DialogUnit, len(c.Units))
	for i := range c.Units {
		units[i] = c.Units[i].Clone()
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Index < units[j].Index })
	return units, nil
}

// BeginGeneration validates the unit's preconditions and, if they hold and no
// call is already in flight, transitions it to processing and clears the last
// error. Validation failures leave the unit untouched and cause no network
// call. Returns a snapshot of the unit as it entered processing.
func (s *Store) BeginGeneration(id string, index int, requireBackground bool) (model.DialogUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, pos, err := s.unitLocked(id, index)
	if err != nil {
		return model.DialogUnit{}, err
	}
	if s.isInflightLocked(id, index) {
		return model.DialogUnit{}, ErrGenerationInFlight
	}

	unit := c.Units[pos].Clone()
	if err := unit.ValidateForGeneration(requireBackground); err != nil {
		return model.DialogUnit{}, err
	}

	unit.Status = model.UnitStatusProcessing
	unit.LastError = ""
	c.Units[pos] = unit
	c.UpdatedAt = time.Now()

	if s.inflight[id] == nil {
		s.inflight[id] = make(map[int]struct{})
	}
	s.inflight[id][index] = struct{}{}

	return unit.Clone(), nil
}

// CompleteGeneration folds a successful result back into the unit. Only the
// generation-owned fields are written, so edits made while the call was in
// flight survive.
func (s *Store) CompleteGeneration(id string, index int, ref model.ArtifactRef) (model.DialogUnit, error) {
	return s.endGeneration(id, index, func(unit *model.DialogUnit) {
		unit.Status = model.UnitStatusReady
		unit.Result = &ref
		unit.LastError = ""
	})
}

// FailGeneration records a failed attempt. The previous result, if any, is
// left in place so the operator can still fall back to it.
func (s *Store) FailGeneration(id string, index int, msg string) (model.DialogUnit, error) {
	return s.endGeneration(id, index, func(unit *model.DialogUnit) {
		unit.Status = model.UnitStatusFailed
		unit.LastError = msg
	})
}

func (s *Store) endGeneration(id string, index int, apply func(*model.DialogUnit)) (model.DialogUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fl := s.inflight[id]; fl != nil {
		delete(fl, index)
	}

	c, pos, err := s.unitLocked(id, index)
	if err != nil {
		return model.DialogUnit{}, err
	}

	unit := c.Units[pos].Clone()
	apply(&unit)
	c.Units[pos] = unit
	c.UpdatedAt = time.Now()

	return unit.Clone(), nil
}

// BeginMerge marks a new merge attempt: merging status, previous merged URL
// and segments dropped, and the publish record reset because the composite it
// referred to is being replaced.
func (s *Store) BeginMerge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return ErrCompositionNotFound
	}

	c.Merge = model.CompositeResult{Status: model.MergeStatusMerging}
	c.Publish = model.PublishRecord{Status: model.PublishStatusIdle}
	c.UpdatedAt = time.Now()
	return nil
}

// CompleteMerge records a successful merge.
func (s *Store) CompleteMerge(id string, segments []model.Segment, mergedURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return ErrCompositionNotFound
	}

	c.Merge = model.CompositeResult{
		Segments:  append([]model.Segment(nil), segments...),
		MergedURL: mergedURL,
		Status:    model.MergeStatusReady,
	}
	c.UpdatedAt = time.Now()
	return nil
}

// FailMerge records a failed merge. The previous merged URL stays cleared.
func (s *Store) FailMerge(id string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return ErrCompositionNotFound
	}

	c.Merge = model.CompositeResult{
		Status:    model.MergeStatusFailed,
		LastError: msg,
	}
	c.UpdatedAt = time.Now()
	return nil
}

// BeginPublish marks a new publish attempt and returns what the call needs.
func (s *Store) BeginPublish(id string) (mergedURL, title, summary string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return "", "", "", ErrCompositionNotFound
	}
	if c.Merge.Status != model.MergeStatusReady || c.Merge.MergedURL == "" {
		return "", "", "", ErrMergeNotReady
	}

	c.Publish = model.PublishRecord{Status: model.PublishStatusPublishing}
	c.UpdatedAt = time.Now()
	return c.Merge.MergedURL, c.Title, c.Summary, nil
}

// CompletePublish records the external-facing URL.
func (s *Store) CompletePublish(id, publishedURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return ErrCompositionNotFound
	}

	c.Publish = model.PublishRecord{
		PublishedURL: publishedURL,
		Status:       model.PublishStatusReady,
	}
	c.UpdatedAt = time.Now()
	return nil
}

// FailPublish records a failed publish.
func (s *Store) FailPublish(id, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return ErrCompositionNotFound
	}

	c.Publish = model.PublishRecord{
		Status:    model.PublishStatusFailed,
		LastError: msg,
	}
	c.UpdatedAt = time.Now()
	return nil
}

// ApplyScript replaces the unit list with freshly imported units and sets the
// composition's title and summary. All derived state is reset: the imported
// units are a new composition in everything but identity.
func (s *Store) ApplyScript(id, title, summary string, units []model.DialogUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return ErrCompositionNotFound
	}

	maxIndex := 0
	for i := range units {
		if units[i].Index > maxIndex {
			maxIndex = units[i].Index
		}
	}

	c.Title = title
	c.Summary = summary
	c.Units = units
	c.NextIndex = maxIndex + 1
	c.Merge = model.CompositeResult{Status: model.MergeStatusIdle}
	c.Publish = model.PublishRecord{Status: model.PublishStatusIdle}
	c.UpdatedAt = time.Now()
	return nil
}

func (s *Store) unitLocked(id string, index int) (*model.Composition, int, error) {
	c, ok := s.comps[id]
	if !ok {
		return nil, -1, ErrCompositionNotFound
	}
	pos, ok := c.UnitPos(index)
	if !ok {
		return nil, -1, ErrUnitNotFound
	}
	return c, pos, nil
}

func (s *Store) isInflightLocked(id string, index int) bool {
	fl, ok := s.inflight[id]
	if !ok {
		return false
	}
	_, in := fl[index]
	return in
}
