package store_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-drafter/internal/store"
	"github.com/hal9000y/gmail-drafter/internal/style"
)

func openStore(t *testing.T) *store.Store {
	s, err := store.Open(filepath.Join(t.TempDir(), "data", "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func learn(t *testing.T, s *store.Store, sender, edited string) style.Profile {
	p, err := s.Upsert(sender, func(existing *style.Profile) style.Profile {
		return style.Merge(existing, sender, style.ExtractSignals(edited))
	})
	require.NoError(t, err)
	return p
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	p, err := s.Get("nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, p)
}

func TestUpsertCreatesAndMerges(t *testing.T) {
	s := openStore(t)

	first := learn(t, s, "A <A@B.com>", "Hi, thanks so much! Best, A")
	assert.Equal(t, "a@b.com", first.SenderKey)
	assert.Equal(t, 1, first.EditCount)
	assert.Equal(t, "Thanks", first.MustUseTerms)
	assert.False(t, first.UpdatedAt.IsZero())

	second := learn(t, s, "a@b.com", "Hello team,\nplease see the attached notes.\nRegards, A")
	assert.Equal(t, 2, second.EditCount)
	assert.Equal(t, "Thanks", second.MustUseTerms)

	got, err := s.Get("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, second.EditCount, got.EditCount)
	assert.Equal(t, second.PreferredTone, got.PreferredTone)
	assert.Contains(t, got.PreferredTone, "polite")
}

func TestUpsertConcurrent(t *testing.T) {
	s := openStore(t)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Upsert("c@d.com", func(existing *style.Profile) style.Profile {
				return style.Merge(existing, "c@d.com", style.ExtractSignals("Thanks for the update."))
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get("c@d.com")
	require.NoError(t, err)
	assert.Equal(t, 10, got.EditCount)
}

func TestExamples(t *testing.T) {
	s := openStore(t)

	ex, err := s.LogExample(store.Example{Sender: "A@B.com", Original: "draft", Edited: "edited", EditDelta: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, "a@b.com", ex.Sender)

	_, err = s.LogExample(store.Example{Sender: "x@y.com", Edited: "other"})
	require.NoError(t, err)
	_, err = s.LogExample(store.Example{Sender: "a@b.com", Edited: "second"})
	require.NoError(t, err)

	got, err := s.Examples("a@b.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "edited", got[0].Edited)
	assert.Equal(t, 3, got[0].EditDelta)
	assert.Equal(t, "second", got[1].Edited)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	learn(t, s, "a@b.com", "Thanks!")
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 1, got.EditCount)
}
