package prefs

import (
	"fmt"
	"strings"

	apperrors "planilhas/errors"
	"planilhas/types"
	"planilhas/utils"
)

// DefaultSlotCount is used on first load.
const DefaultSlotCount = 2

// ClampSlotCount snaps n into [MinSlots, MaxSlots].
func ClampSlotCount(n int) int {
	if n < types.MinSlots {
		return types.MinSlots
	}
	if n > types.MaxSlots {
		return types.MaxSlots
	}
	return n
}

// SlotCount returns the desired number of upload slots.
func (s *Store) SlotCount() (int, error) {
	n, err := Get(s, KeySlotCount, DefaultSlotCount)
	return ClampSlotCount(n), err
}

// Slots returns one definition per slot, sized to SlotCount.
func (s *Store) Slots() ([]types.SlotDefinition, error) {
	n, err := s.SlotCount()
	if err != nil {
		return nil, err
	}
	defs, err := Get(s, KeySlots, make([]types.SlotDefinition, n))
	if err != nil {
		return nil, err
	}
	if len(defs) != n {
		defs = resize(defs, n)
		if err := s.Set(KeySlots, defs); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// UploadSlots resolves the persisted definitions into upload slots.
func (s *Store) UploadSlots() ([]types.UploadSlot, error) {
	defs, err := s.Slots()
	if err != nil {
		return nil, err
	}
	slots := make([]types.UploadSlot, len(defs))
	for i, d := range defs {
		slots[i] = d.UploadSlot()
	}
	return slots, nil
}

// SetSlotCount clamps n, truncates or grows the slot list and returns the
// count actually stored.
func (s *Store) SetSlotCount(n int) (int, error) {
	n = ClampSlotCount(n)
	defs, err := s.Slots()
	if err != nil {
		return 0, err
	}
	if err := s.Set(KeySlotCount, n); err != nil {
		return 0, err
	}
	if err := s.Set(KeySlots, resize(defs, n)); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateSlot applies fn to slot i (zero-based) and persists the result.
func (s *Store) UpdateSlot(i int, fn func(*types.SlotDefinition)) error {
	defs, err := s.Slots()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(defs) {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "slot %d out of range 1..%d", i+1, len(defs))
	}
	fn(&defs[i])
	return s.Set(KeySlots, defs)
}

// AttachFile sets the file of slot i. Unsupported extensions are rejected
// with a *FileTypeError and the slot's file is left empty.
func (s *Store) AttachFile(i int, path string) error {
	path = strings.TrimSpace(path)
	if path != "" && !utils.SupportedSpreadsheet(path) {
		if err := s.UpdateSlot(i, func(d *types.SlotDefinition) { d.Path = "" }); err != nil {
			return err
		}
		name := types.LocalFile{Path: path}.Name()
		return &apperrors.FileTypeError{Filename: name, Ext: utils.FileExt(name)}
	}
	return s.UpdateSlot(i, func(d *types.SlotDefinition) { d.Path = path })
}

// ClearFile detaches the file from slot i, keeping alias and sheet.
func (s *Store) ClearFile(i int) error {
	return s.UpdateSlot(i, func(d *types.SlotDefinition) { d.Path = "" })
}

// SetAlias sets the alias of slot i.
func (s *Store) SetAlias(i int, alias string) error {
	return s.UpdateSlot(i, func(d *types.SlotDefinition) { d.Alias = strings.TrimSpace(alias) })
}

// SetSheet sets the sheet selector of slot i; a blank name clears it.
func (s *Store) SetSheet(i int, sheet string) error {
	return s.UpdateSlot(i, func(d *types.SlotDefinition) {
		sheet = strings.TrimSpace(sheet)
		if sheet == "" {
			d.Sheet = nil
			return
		}
		d.Sheet = &sheet
	})
}

// AutoDownload reports whether binary results are saved automatically.
func (s *Store) AutoDownload() (bool, error) {
	return Get(s, KeyAutoDownload, true)
}

func (s *Store) SetAutoDownload(on bool) error {
	return s.Set(KeyAutoDownload, on)
}

// Draft returns the unsent instruction text.
func (s *Store) Draft() (string, error) {
	return Get(s, KeyDraft, "")
}

func (s *Store) SetDraft(text string) error {
	return s.Set(KeyDraft, text)
}

// Wipe drops every preference and restores the first-load defaults.
func (s *Store) Wipe() error {
	s.mu.Lock()
	for key := range s.values {
		if strings.HasPrefix(key, Prefix) {
			delete(s.values, key)
		}
	}
	err := s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("wiping preferences: %w", err)
	}
	_, err = s.Slots()
	return err
}

func resize(defs []types.SlotDefinition, n int) []types.SlotDefinition {
	out := make([]types.SlotDefinition, n)
	copy(out, defs)
	return out
}
