package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type cannedCompleter struct {
	out   string
	err   error
	calls int
}

func (c *cannedCompleter) Complete(_ context.Context, _, _ string, _ float64, _ int) (string, error) {
	c.calls++
	return c.out, c.err
}

func TestFamilySummarize(t *testing.T) {
	ctx := context.Background()
	posts := newFakePosts()
	_, err := posts.Create(ctx, 1, 10, "made pancakes for everyone")
	require.NoError(t, err)
	_, err = posts.Create(ctx, 2, 10, "soccer practice went well")
	require.NoError(t, err)
	_, err = posts.Create(ctx, 1, 10, "movie night later")
	require.NoError(t, err)

	comp := &cannedCompleter{out: "A lovely, busy day."}
	svc := NewSummaryService(posts, newFakeUsers(), newFakeMessages(nil), comp)

	t.Run("counts posts and distinct active members", func(t *testing.T) {
		sum, err := svc.Summarize(ctx, "key", 10, "2026-03-01")
		require.NoError(t, err)
		require.Equal(t, "A lovely, busy day.", sum.Summary)
		require.Equal(t, 3, sum.PostsCount)
		require.Equal(t, 2, sum.UsersActive)
		require.Equal(t, 1, comp.calls)
	})

	t.Run("no posts short-circuits without a backend call", func(t *testing.T) {
		before := comp.calls
		sum, err := svc.Summarize(ctx, "key", 11, "2026-03-01")
		require.NoError(t, err)
		require.Equal(t, "No posts were shared by the family today.", sum.Summary)
		require.Zero(t, sum.PostsCount)
		require.Zero(t, sum.UsersActive)
		require.Equal(t, before, comp.calls)
	})

	t.Run("missing api key rejected", func(t *testing.T) {
		_, err := svc.Summarize(ctx, "  ", 10, "")
		var ve ValidationError
		require.ErrorAs(t, err, &ve)
	})
}

func TestParseMemberCompletion(t *testing.T) {
	t.Run("labeled response", func(t *testing.T) {
		sum, sent := parseMemberCompletion("POST_SUMMARY: Shared photos from the hike.\nSENTIMENT: seems happy and energetic", 2)
		require.Equal(t, "Shared photos from the hike.", sum)
		require.Equal(t, "seems happy and energetic", sent)
	})

	t.Run("summary label only", func(t *testing.T) {
		sum, sent := parseMemberCompletion("POST_SUMMARY: A quiet day with one short update.", 1)
		require.Equal(t, "A quiet day with one short update.", sum)
		require.Equal(t, "Unable to determine sentiment from available content.", sent)
	})

	t.Run("sentiment label only", func(t *testing.T) {
		sum, sent := parseMemberCompletion("They wrote about dinner plans.\nSENTIMENT: appears thoughtful", 1)
		require.Equal(t, "They wrote about dinner plans.", sum)
		require.Equal(t, "appears thoughtful", sent)
	})

	t.Run("unlabeled response splits on lines", func(t *testing.T) {
		sum, sent := parseMemberCompletion("First line recap.\nSecond line mood.", 1)
		require.Equal(t, "First line recap.", sum)
		require.Equal(t, "Second line mood.", sent)
	})

	t.Run("empty summary falls back to post count", func(t *testing.T) {
		sum, _ := parseMemberCompletion("POST_SUMMARY:\nSENTIMENT: calm", 3)
		require.Equal(t, "Shared 3 posts today covering various topics.", sum)
	})
}

func TestDayWindow(t *testing.T) {
	t.Run("explicit day spans to the next midnight", func(t *testing.T) {
		date, from, to, err := dayWindow("2026-03-01")
		require.NoError(t, err)
		require.Equal(t, "2026-03-01", date)
		require.Equal(t, "2026-03-01 00:00:00", from)
		// Exclusive upper bound; a row stamped 23:59:59 is still inside.
		require.Equal(t, "2026-03-02 00:00:00", to)
	})

	t.Run("bad format", func(t *testing.T) {
		_, _, _, err := dayWindow("01/03/2026")
		var ve ValidationError
		require.ErrorAs(t, err, &ve)
	})
}
