package assistant

import (
	"fmt"
	"log"
	"strings"

	"github.com/hal9000y/gmail-drafter/internal/store"
	"github.com/hal9000y/gmail-drafter/internal/style"
)

// Learned is the outcome of Learn.
type Learned struct {
	Profile   style.Profile `json:"profile" jsonschema:"the updated sender profile"`
	EditDelta int           `json:"edit_delta" jsonschema:"edit distance between original and edited text"`
}

// Learn records how the user edited a draft for sender and folds the edited
// text into the sender's style profile.
func (s *Service) Learn(sender, original, edited string) (Learned, error) {
	if strings.TrimSpace(sender) == "" || strings.TrimSpace(edited) == "" {
		return Learned{}, fmt.Errorf("%w: sender and edited required", ErrValidation)
	}

	key := style.NormalizeKey(sender)
	delta := style.EditDistance(original, edited)

	ex, err := s.profiles.LogExample(store.Example{
		Sender:    key,
		Original:  original,
		Edited:    edited,
		EditDelta: delta,
	})
	if err != nil {
		return Learned{}, fmt.Errorf("profiles.LogExample failed: %w", err)
	}
	log.Printf("assistant: logged example %s for %s, edit delta %d", ex.ID, key, delta)

	signals := style.ExtractSignals(edited)
	p, err := s.profiles.Upsert(key, func(existing *style.Profile) style.Profile {
		return style.Merge(existing, key, signals)
	})
	if err != nil {
		return Learned{}, fmt.Errorf("profiles.Upsert failed: %w", err)
	}

	return Learned{Profile: p, EditDelta: delta}, nil
}

// Examples lists the edits learned for sender, oldest first.
func (s *Service) Examples(sender string) ([]store.Example, error) {
	if strings.TrimSpace(sender) == "" {
		return nil, fmt.Errorf("%w: sender required", ErrValidation)
	}

	out, err := s.profiles.Examples(sender)
	if err != nil {
		return nil, fmt.Errorf("profiles.Examples failed: %w", err)
	}
	return out, nil
}
