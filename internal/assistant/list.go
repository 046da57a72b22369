package assistant

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ListRecent lists messages matching query (the configured query when empty)
// with their metadata, in the order Gmail returned them.
func (s *Service) ListRecent(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	if err := s.mail.Connected(ctx); err != nil {
		return nil, upstream("mail.Connected", err)
	}

	if query == "" {
		query = s.cfg.ListQuery
	}
	maxResults = s.normalizeMaxResults(maxResults)

	result, err := s.mail.ListMessages(ctx, query, "", maxResults)
	if err != nil {
		return nil, upstream("mail.ListMessages", err)
	}

	messages := make([]MessageSummary, len(result.Messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataConcurrency)
	for i, m := range result.Messages {
		g.Go(func() error {
			msg, err := s.mail.GetMessageMetadata(gctx, m.Id)
			if err != nil {
				return upstream("mail.GetMessageMetadata "+m.Id, err)
			}
			messages[i] = extractMessageSummary(msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (s *Service) normalizeMaxResults(maxResults int64) int64 {
	if maxResults <= 0 {
		return s.cfg.ListMax
	}
	if maxResults > maxListMax {
		return maxListMax
	}
	return maxResults
}
