package assistant

import (
	"context"

	"google.golang.org/api/gmail/v1"
)

// Label is a Gmail label.
type Label struct {
	ID   string `json:"id" jsonschema:"label ID"`
	Name string `json:"name" jsonschema:"label name"`
}

// EnsureLabel returns the configured label, creating it when missing.
func (s *Service) EnsureLabel(ctx context.Context) (Label, error) {
	if err := s.mail.Connected(ctx); err != nil {
		return Label{}, upstream("mail.Connected", err)
	}

	l, err := s.findOrCreateLabel(ctx)
	if err != nil {
		return Label{}, err
	}

	return Label{ID: l.Id, Name: l.Name}, nil
}

func (s *Service) labelMessage(ctx context.Context, messageID string) error {
	l, err := s.findOrCreateLabel(ctx)
	if err != nil {
		return err
	}

	if err := s.mail.AddLabels(ctx, messageID, l.Id); err != nil {
		return upstream("mail.AddLabels", err)
	}

	return nil
}

func (s *Service) findOrCreateLabel(ctx context.Context) (*gmail.Label, error) {
	labels, err := s.mail.ListLabels(ctx)
	if err != nil {
		return nil, upstream("mail.ListLabels", err)
	}

	for _, l := range labels {
		if l.Name == s.cfg.Label {
			return l, nil
		}
	}

	l, err := s.mail.CreateLabel(ctx, s.cfg.Label)
	if err != nil {
		return nil, upstream("mail.CreateLabel", err)
	}

	return l, nil
}
