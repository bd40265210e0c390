package merge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/live627/elkarte.net/internal/app/message"
	"github.com/live627/elkarte.net/internal/app/topic"
	"github.com/stretchr/testify/assert"
)

func TestParseSubAction(t *testing.T) {
	cases := map[string]SubAction{
		"":        SubActionIndex,
		"index":   SubActionIndex,
		"bogus":   SubActionIndex,
		"options": SubActionOptions,
		"execute": SubActionExecute,
		"done":    SubActionDone,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseSubAction(in), in)
	}
	assert.Equal(t, "execute", SubActionExecute.String())
}

func TestComputeBounds(t *testing.T) {
	t.Run("all approved", func(t *testing.T) {
		b := ComputeBounds([]message.ApprovalBucket{
			{Approved: true, FirstMsg: 100, LastMsg: 110, MessageCount: 6},
		})
		assert.Equal(t, Bounds{FirstMsg: 100, LastMsg: 110, NumReplies: 5, Approved: true}, b)
	})

	t.Run("unapproved replies after the first message", func(t *testing.T) {
		b := ComputeBounds([]message.ApprovalBucket{
			{Approved: true, FirstMsg: 100, LastMsg: 110, MessageCount: 6},
			{Approved: false, FirstMsg: 105, LastMsg: 120, MessageCount: 2},
		})
		assert.Equal(t, Bounds{FirstMsg: 100, LastMsg: 110, NumReplies: 5, NumUnapproved: 2, Approved: true}, b)
	})

	t.Run("unapproved message older than every approved one", func(t *testing.T) {
		b := ComputeBounds([]message.ApprovalBucket{
			{Approved: true, FirstMsg: 100, LastMsg: 110, MessageCount: 6},
			{Approved: false, FirstMsg: 50, LastMsg: 50, MessageCount: 1},
		})
		assert.Equal(t, Bounds{FirstMsg: 50, LastMsg: 110, NumReplies: 6, NumUnapproved: 1, Approved: false}, b)
	})

	t.Run("fully unapproved", func(t *testing.T) {
		b := ComputeBounds([]message.ApprovalBucket{
			{Approved: false, FirstMsg: 7, LastMsg: 9, MessageCount: 3},
		})
		assert.Equal(t, Bounds{FirstMsg: 7, LastMsg: 9, NumReplies: 0, NumUnapproved: 3, Approved: false}, b)
	})
}

func TestNormalizeTopics(t *testing.T) {
	assert.Equal(t, []uint64{10, 3, 7}, NormalizeTopics([]uint64{10, 0, 3, 10, 7, 3}))
	assert.Empty(t, NormalizeTopics([]uint64{0, 0}))
	assert.Equal(t, []uint64{4, 0, 9}, ParseIDs([]string{"4", "x", " 9 "}))
}

func TestCleanCustomSubject(t *testing.T) {
	assert.Equal(t, "Fish &amp; &quot;chips&quot; &lt;b&gt;", CleanCustomSubject("  Fish & \"chips\" <b>\t\n"))
	assert.Equal(t, "Two lines", CleanCustomSubject("Two\r\n lines"))
	assert.Equal(t, "&#8364; kept", CleanCustomSubject("&#8364; kept"))
	assert.Equal(t, "", CleanCustomSubject("\u00a0 \t"))

	long := strings.Repeat("é", 150)
	got := CleanCustomSubject(long)
	assert.Equal(t, 100, utf8.RuneCountInString(got))

	// Entities count as one character.
	withEntities := strings.Repeat("&", 150)
	got = CleanCustomSubject(withEntities)
	assert.Equal(t, strings.Repeat("&amp;", 100), got)
}

func TestResolveSubject(t *testing.T) {
	set := &mergeSet{
		firstTopic: 3,
		byID: map[uint64]*topic.MergeCandidate{
			3: {ID: 3, Subject: "Oldest"},
			8: {ID: 8, Subject: "Newer"},
			9: {ID: 9, Subject: ""},
		},
	}

	assert.Equal(t, "Oldest", ResolveSubject(ExecuteParams{}, set))
	assert.Equal(t, "Custom", ResolveSubject(ExecuteParams{CustomSubject: " Custom ", HasCustomSubject: true}, set))
	assert.Equal(t, "Oldest", ResolveSubject(ExecuteParams{CustomSubject: "   ", HasCustomSubject: true}, set))
	assert.Equal(t, "Newer", ResolveSubject(ExecuteParams{Subject: 8, CustomSubject: "ignored", HasCustomSubject: true}, set))
	assert.Equal(t, "Oldest", ResolveSubject(ExecuteParams{Subject: 9}, set))
	assert.Equal(t, "Oldest", ResolveSubject(ExecuteParams{Subject: 42}, set))
}

func TestBuildPageIndex(t *testing.T) {
	links, start := BuildPageIndex("/p?start={start}", 25, 45, 20)
	assert.Equal(t, 20, start)
	assert.Equal(t, []PageLink{
		{Number: 1, URL: "/p?start=0"},
		{Number: 2, URL: "/p?start=20", Current: true},
		{Number: 3, URL: "/p?start=40"},
	}, links)

	links, start = BuildPageIndex("/p?start={start}", 500, 45, 20)
	assert.Equal(t, 40, start)
	assert.True(t, links[2].Current)

	links, start = BuildPageIndex("/p?start={start}", -5, 10, 20)
	assert.Nil(t, links)
	assert.Equal(t, 0, start)
}
