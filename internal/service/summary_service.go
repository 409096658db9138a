package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"famlink/internal/model"
)

// Completer produces a chat completion for a prompt. Implemented by the
// summary package's HTTP client; tests plug in a canned completer.
type Completer interface {
	Complete(ctx context.Context, apiKey, prompt string, temperature float64, maxTokens int) (string, error)
}

// SummaryService generates AI digests of a day's family activity. The
// API key comes from the caller on every request and is forwarded to the
// completion backend, never persisted.
type SummaryService struct {
	posts     PostStore
	users     UserStore
	messages  MessageStore
	completer Completer
}

func NewSummaryService(posts PostStore, users UserStore, messages MessageStore, completer Completer) *SummaryService {
	return &SummaryService{posts: posts, users: users, messages: messages, completer: completer}
}

// FamilySummary is the digest of everything posted in a family on a day.
// UsersActive counts the distinct members who posted.
type FamilySummary struct {
	Summary     string `json:"summary"`
	Date        string `json:"date"`
	PostsCount  int    `json:"posts_count"`
	UsersActive int    `json:"users_active"`
}

// MemberSummary is the digest of one member's activity on a day, as seen
// by the viewer. Sentiment is a free-text mood description, not a score.
// MessagesWithYou is set only when the viewer and the member exchanged
// messages that day.
type MemberSummary struct {
	UserID          uint64           `json:"user_id"`
	Username        string           `json:"username"`
	Date            string           `json:"date"`
	PostSummary     string           `json:"post_summary"`
	Sentiment       string           `json:"sentiment"`
	PostsCount      int              `json:"posts_count"`
	MessagesWithYou *MessageActivity `json:"messages_with_you,omitempty"`
}

// MessageActivity notes the direct-message volume between the viewer and
// the summarized member.
type MessageActivity struct {
	Count   int    `json:"count"`
	Summary string `json:"summary"`
}

// Summarize generates the family digest for the given day (YYYY-MM-DD,
// empty means today). A day without posts short-circuits with a fixed
// message and no backend call.
func (s *SummaryService) Summarize(ctx context.Context, apiKey string, familyID uint64, day string) (FamilySummary, error) {
	if strings.TrimSpace(apiKey) == "" {
		return FamilySummary{}, ValidationError("api key is required")
	}
	date, from, to, err := dayWindow(day)
	if err != nil {
		return FamilySummary{}, err
	}
	posts, err := s.posts.ListByFamilyInWindow(ctx, familyID, from, to)
	if err != nil {
		return FamilySummary{}, err
	}
	authors := map[uint64]struct{}{}
	for _, p := range posts {
		authors[p.UserID] = struct{}{}
	}
	out := FamilySummary{Date: date, PostsCount: len(posts), UsersActive: len(authors)}
	if len(posts) == 0 {
		out.Summary = "No posts were shared by the family today."
		return out, nil
	}

	var b strings.Builder
	b.WriteString("You are a helpful family assistant. Summarize the family's activity today in a warm, engaging way.\n\n")
	b.WriteString("Today's posts:\n")
	writePostLines(&b, posts)
	b.WriteString("\nCreate a brief, friendly summary (2-3 sentences) highlighting:\n")
	b.WriteString("1. Who was active today\n")
	b.WriteString("2. The overall mood of the family\n")
	b.WriteString("3. Any notable moments or updates\n")

	out.Summary, err = s.completer.Complete(ctx, apiKey, b.String(), 0.7, 300)
	if err != nil {
		return FamilySummary{}, err
	}
	return out, nil
}

// SummarizeMember digests one member's posts for the day plus the
// direct messages they exchanged with the viewer, and describes their
// mood. A day with no posts and no messages short-circuits without a
// backend call.
func (s *SummaryService) SummarizeMember(ctx context.Context, apiKey string, viewerID, userID uint64, day string) (MemberSummary, error) {
	if strings.TrimSpace(apiKey) == "" {
		return MemberSummary{}, ValidationError("api key is required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return MemberSummary{}, err
	}
	date, from, to, err := dayWindow(day)
	if err != nil {
		return MemberSummary{}, err
	}

	posts, err := s.posts.ListByUserInWindow(ctx, userID, from, to)
	if err != nil {
		return MemberSummary{}, err
	}
	msgs, err := s.messages.ListBetweenInWindow(ctx, viewerID, userID, from, to)
	if err != nil {
		return MemberSummary{}, err
	}

	out := MemberSummary{UserID: u.ID, Username: u.Username, Date: date, PostsCount: len(posts)}
	if len(msgs) > 0 {
		out.MessagesWithYou = &MessageActivity{
			Count:   len(msgs),
			Summary: fmt.Sprintf("You exchanged %d messages today.", len(msgs)),
		}
	}
	if len(posts) == 0 && len(msgs) == 0 {
		out.PostSummary = "No activity today."
		out.Sentiment = "No posts or messages to analyze today."
		return out, nil
	}

	var b strings.Builder
	b.WriteString("Analyze this person's activity today and provide:\n")
	b.WriteString("1. A brief summary of their posts (2-3 sentences)\n")
	b.WriteString("2. Their overall sentiment/mood for the day as a natural description of how they seem to be feeling\n\n")
	b.WriteString("Today's Posts:\n")
	for _, p := range posts {
		fmt.Fprintf(&b, "- %s\n", clip(p.Content, 200))
	}
	b.WriteString("\nRecent Messages:\n")
	for i, m := range msgs {
		if i == 20 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", clip(m.Content, 150))
	}
	b.WriteString("\nRespond in this format:\n")
	b.WriteString("POST_SUMMARY: [summary text here]\n")
	b.WriteString("SENTIMENT: [free-flowing description of their mood today, like \"seems happy and energetic\"]\n\n")
	b.WriteString("Keep the sentiment description warm, empathetic, and family-friendly.")

	raw, err := s.completer.Complete(ctx, apiKey, b.String(), 0.5, 400)
	if err != nil {
		return MemberSummary{}, err
	}
	out.PostSummary, out.Sentiment = parseMemberCompletion(raw, len(posts))
	return out, nil
}

// parseMemberCompletion extracts the POST_SUMMARY and SENTIMENT sections
// from a completion. Models do not always honor the format, so missing
// labels degrade to line-based splitting and fixed fallbacks.
func parseMemberCompletion(raw string, postCount int) (summary, sentiment string) {
	switch {
	case strings.Contains(raw, "POST_SUMMARY:"):
		rest := strings.SplitN(raw, "POST_SUMMARY:", 2)[1]
		if strings.Contains(rest, "SENTIMENT:") {
			parts := strings.SplitN(rest, "SENTIMENT:", 2)
			summary = strings.TrimSpace(parts[0])
			sentiment = strings.TrimSpace(parts[1])
		} else {
			summary = strings.TrimSpace(rest)
		}
	case strings.Contains(raw, "SENTIMENT:"):
		parts := strings.SplitN(raw, "SENTIMENT:", 2)
		summary = strings.TrimSpace(parts[0])
		sentiment = strings.TrimSpace(parts[1])
	default:
		lines := strings.Split(strings.TrimSpace(raw), "\n")
		summary = strings.TrimSpace(lines[0])
		if len(lines) > 1 {
			sentiment = strings.TrimSpace(strings.Join(lines[1:], " "))
		}
	}
	if summary == "" {
		switch postCount {
		case 0:
			summary = "No posts shared today."
		case 1:
			summary = "Shared 1 post today."
		default:
			summary = fmt.Sprintf("Shared %d posts today covering various topics.", postCount)
		}
	}
	if sentiment == "" {
		sentiment = "Unable to determine sentiment from available content."
	}
	return summary, sentiment
}

func writePostLines(b *strings.Builder, posts []model.Post) {
	for _, p := range posts {
		fmt.Fprintf(b, "- %s: %s\n", p.AuthorUsername, clip(p.Content, 200))
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// dayWindow resolves a YYYY-MM-DD day (empty means today, UTC) into the
// canonical date plus half-open [from, to) DATETIME bounds for range
// queries; to is the next midnight so 23:59:59 rows stay inside the day.
func dayWindow(day string) (date, from, to string, err error) {
	var start time.Time
	if strings.TrimSpace(day) == "" {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		start, err = time.Parse("2006-01-02", strings.TrimSpace(day))
		if err != nil {
			return "", "", "", ValidationError("date must be YYYY-MM-DD")
		}
	}
	return start.Format("2006-01-02"),
		start.Format("2006-01-02 15:04:05"),
		start.Add(24*time.Hour).Format("2006-01-02 15:04:05"),
		nil
}
