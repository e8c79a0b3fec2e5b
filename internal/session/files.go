package session

import (
	"fmt"

	"formspec-backend/internal/schema"
)

// Attachment is one selected file plus an optional release hook for whatever
// preview resource the host created for it (an object URL, a temp file).
// Release runs exactly once, when the attachment leaves the selection.
type Attachment struct {
	Info    schema.FileInfo
	release func()
}

// NewAttachment wraps a file descriptor. release may be nil.
func NewAttachment(info schema.FileInfo, release func()) Attachment {
	return Attachment{Info: info, release: release}
}

// FileSelection is the live value of a file field. Files accumulate: newly
// added files append to the existing selection, they never replace it.
type FileSelection struct {
	items    []Attachment
	maxFiles int // 0 means unlimited
}

// NewFileSelection creates an empty selection for a field, honoring its
// maxFiles setting.
func NewFileSelection(f *schema.FieldDescriptor) *FileSelection {
	sel := &FileSelection{}
	if f != nil && f.MaxFiles != nil {
		sel.maxFiles = *f.MaxFiles
	}
	return sel
}

// Add appends attachments up to the maxFiles limit. Files beyond the limit
// are rejected outright — their release hooks run immediately and the stored
// selection keeps what it had — and the returned error names the rejection.
// Attachments that still fit are accepted.
func (s *FileSelection) Add(atts ...Attachment) error {
	var rejected int
	for _, att := range atts {
		if s.maxFiles > 0 && len(s.items) >= s.maxFiles {
			if att.release != nil {
				att.release()
			}
			rejected++
			continue
		}
		s.items = append(s.items, att)
	}
	if rejected > 0 {
		return fmt.Errorf("at most %d file(s) allowed; %d file(s) not added", s.maxFiles, rejected)
	}
	return nil
}

// Remove drops the attachment at index, preserving the relative order of the
// remainder, and runs its release hook.
func (s *FileSelection) Remove(index int) {
	if index < 0 || index >= len(s.items) {
		return
	}
	att := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	if att.release != nil {
		att.release()
	}
}

// Clear releases every attachment. Called when the owning session unbinds or
// the field's value is torn down.
func (s *FileSelection) Clear() {
	for _, att := range s.items {
		if att.release != nil {
			att.release()
		}
	}
	s.items = nil
}

// Len returns the number of selected files.
func (s *FileSelection) Len() int {
	return len(s.items)
}

// Files returns the selection as plain descriptors, in selection order.
func (s *FileSelection) Files() []schema.FileInfo {
	out := make([]schema.FileInfo, len(s.items))
	for i, att := range s.items {
		out[i] = att.Info
	}
	return out
}
