package merge

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/live627/elkarte.net/internal/app/message"
)

const (
	maxSubjectLength = 100
	startPlaceholder = "{start}"
)

// ComputeBounds derives the message range of the merged topic from the
// per-approval aggregates, approved bucket first.
func ComputeBounds(buckets []message.ApprovalBucket) Bounds {
	b := Bounds{Approved: true}
	seen := false
	for _, row := range buckets {
		if row.Approved || !seen {
			b.FirstMsg = row.FirstMsg
			b.LastMsg = row.LastMsg
			if row.Approved {
				b.NumReplies = row.MessageCount - 1
				b.NumUnapproved = 0
			} else {
				b.Approved = false
				b.NumReplies = 0
				b.NumUnapproved = row.MessageCount
			}
			seen = true
			continue
		}

		// An unapproved message older than every approved one becomes the
		// first message, and the topic is unapproved.
		if b.FirstMsg > row.FirstMsg {
			b.FirstMsg = row.FirstMsg
			b.NumReplies++
			b.Approved = false
		}
		b.NumUnapproved = row.MessageCount
	}
	return b
}

// NormalizeTopics drops zero ids and duplicates, keeping the first
// occurrence order.
func NormalizeTopics(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ParseIDs converts form values to ids. Values that are not numbers map to 0.
func ParseIDs(values []string) []uint64 {
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			id = 0
		}
		ids = append(ids, id)
	}
	return ids
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []uint64, drop ...uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !contains(drop, id) {
			out = append(out, id)
		}
	}
	return out
}

// intersect keeps the ids of a that are also in b, in a's order.
func intersect(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a))
	for _, id := range a {
		if contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}

func minID(ids []uint64) uint64 {
	var m uint64
	for i, id := range ids {
		if i == 0 || id < m {
			m = id
		}
	}
	return m
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

var (
	specialChars   = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
	numericEntity  = regexp.MustCompile(`&amp;#(\d{1,7}|x[0-9a-fA-F]{1,6});`)
	entityOrRune   = regexp.MustCompile(`&(?:#\d{1,7}|#x[0-9a-fA-F]{1,6}|quot|amp|lt|gt|nbsp);|(?s:.)`)
	leadingSpaces  = regexp.MustCompile(`^(?:\s|&nbsp;|&#160;|\x{00A0})+`)
	trailingSpaces = regexp.MustCompile(`(?:\s|&nbsp;|&#160;|\x{00A0})+$`)
	controlChars   = strings.NewReplacer("\r", "", "\n", "", "\t", "")
)

// EscapeSpecialChars escapes markup while keeping numeric entities intact.
func EscapeSpecialChars(s string) string {
	return numericEntity.ReplaceAllString(specialChars.Replace(s), "&#$1;")
}

func htmlTrim(s string) string {
	return trailingSpaces.ReplaceAllString(leadingSpaces.ReplaceAllString(s, ""), "")
}

// truncateEntities cuts s to n characters, counting an entity as one.
func truncateEntities(s string, n int) string {
	tokens := entityOrRune.FindAllStringIndex(s, n+1)
	if len(tokens) <= n {
		return s
	}
	return s[:tokens[n][0]]
}

// CleanCustomSubject escapes and trims a typed subject, strips line breaks
// and tabs, and limits it to 100 characters.
func CleanCustomSubject(raw string) string {
	s := htmlTrim(EscapeSpecialChars(raw))
	s = controlChars.Replace(s)
	return truncateEntities(s, maxSubjectLength)
}

// ResolveSubject picks the subject of the merged topic: a custom subject
// when no topic was chosen, else the chosen topic's subject, else the
// subject of fallback.
func ResolveSubject(p ExecuteParams, set *mergeSet) string {
	fallback := ""
	if first, ok := set.byID[set.firstTopic]; ok {
		fallback = first.Subject
	}

	if p.Subject == 0 {
		if p.HasCustomSubject && p.CustomSubject != "" {
			if s := CleanCustomSubject(p.CustomSubject); s != "" {
				return s
			}
		}
		return fallback
	}

	if row, ok := set.byID[p.Subject]; ok && row.Subject != "" {
		return row.Subject
	}
	return fallback
}

// BuildPageIndex returns the page links of a list and the start offset
// clamped to a page boundary. baseURL carries {start} where the offset goes.
func BuildPageIndex(baseURL string, start, total, perPage int) ([]PageLink, int) {
	if perPage < 1 {
		perPage = 20
	}
	if start < 0 || total <= 0 {
		start = 0
	}
	if total > 0 && start >= total {
		start = total - 1
	}
	start -= start % perPage

	pages := (total + perPage - 1) / perPage
	if pages <= 1 {
		return nil, start
	}

	links := make([]PageLink, 0, pages)
	for i := 0; i < pages; i++ {
		offset := i * perPage
		links = append(links, PageLink{
			Number:  i + 1,
			URL:     strings.Replace(baseURL, startPlaceholder, strconv.Itoa(offset), 1),
			Current: offset == start,
		})
	}
	return links, start
}
