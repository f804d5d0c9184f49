// Package engagement records and aggregates views, shares and reactions
// per content slug, and serves them over HTTP.
package engagement

import "time"

// ContentType classifies a content item.
type ContentType string

const (
	ContentPost    ContentType = "POST"
	ContentProject ContentType = "PROJECT"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentPost || t == ContentProject
}

// ShareType is the channel a share went through.
type ShareType string

const (
	ShareClipboard ShareType = "CLIPBOARD"
	ShareTwitter   ShareType = "TWITTER"
	ShareFacebook  ShareType = "FACEBOOK"
	ShareLinkedIn  ShareType = "LINKEDIN"
	ShareOthers    ShareType = "OTHERS"
)

// Valid reports whether t is a known share channel.
func (t ShareType) Valid() bool {
	switch t {
	case ShareClipboard, ShareTwitter, ShareFacebook, ShareLinkedIn, ShareOthers:
		return true
	}
	return false
}

// ReactionType is a kind of reaction.
type ReactionType string

const (
	ReactionClapping ReactionType = "CLAPPING"
	ReactionThinking ReactionType = "THINKING"
	ReactionAmazed   ReactionType = "AMAZED"
)

// ReactionTypes lists every reaction type.
var ReactionTypes = []ReactionType{ReactionClapping, ReactionThinking, ReactionAmazed}

// Valid reports whether t is a known reaction type.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionClapping, ReactionThinking, ReactionAmazed:
		return true
	}
	return false
}

// ReactionsDetail counts reactions per type.
type ReactionsDetail struct {
	Clapping int `json:"CLAPPING"`
	Thinking int `json:"THINKING"`
	Amazed   int `json:"AMAZED"`
}

// Add adds n reactions of type t. Unknown types are ignored.
func (d *ReactionsDetail) Add(t ReactionType, n int) {
	switch t {
	case ReactionClapping:
		d.Clapping += n
	case ReactionThinking:
		d.Thinking += n
	case ReactionAmazed:
		d.Amazed += n
	}
}

// Get returns the count for t.
func (d ReactionsDetail) Get(t ReactionType) int {
	switch t {
	case ReactionClapping:
		return d.Clapping
	case ReactionThinking:
		return d.Thinking
	case ReactionAmazed:
		return d.Amazed
	}
	return 0
}

// Total returns the sum over all types.
func (d ReactionsDetail) Total() int {
	return d.Clapping + d.Thinking + d.Amazed
}

// Content identifies the content item an event belongs to. Type and Title
// are only used when the item is seen for the first time.
type Content struct {
	Slug  string
	Type  ContentType
	Title string
}

// MaxBatchCount is the largest reaction count one write may carry.
const MaxBatchCount = 100

// Reaction is one batched reaction write.
type Reaction struct {
	Type      ReactionType
	Count     int
	Section   string
	SessionID string
}

// Counts holds the view and share totals of one content item.
type Counts struct {
	Views  int `json:"views"`
	Shares int `json:"shares"`
}

// Meta is the aggregate of one content item.
type Meta struct {
	Views           int             `json:"views"`
	Shares          int             `json:"shares"`
	Reactions       int             `json:"reactions"`
	ReactionsDetail ReactionsDetail `json:"reactionsDetail"`
}

// UserMeta is the share of the aggregate contributed by one session.
type UserMeta struct {
	Views           int             `json:"views"`
	Shares          int             `json:"shares"`
	ReactionsDetail ReactionsDetail `json:"reactionsDetail"`
}

// SectionMeta holds the reactions given to one section of a document.
type SectionMeta struct {
	ReactionsDetail ReactionsDetail `json:"reactionsDetail"`
}

// ContentDetail is everything a page needs to show engagement counters.
type ContentDetail struct {
	Meta        Meta                   `json:"meta"`
	MetaUser    UserMeta               `json:"metaUser"`
	MetaSection map[string]SectionMeta `json:"metaSection"`
}

// ActivityType tells reactions and shares apart in the activity feed.
type ActivityType string

const (
	ActivityReaction ActivityType = "REACTION"
	ActivityShare    ActivityType = "SHARE"
)

// Activity is one recent reaction or share.
type Activity struct {
	ActivityType ActivityType `json:"activityType"`
	Type         string       `json:"type"`
	Count        int          `json:"count"`
	Section      string       `json:"section,omitempty"`
	Slug         string       `json:"slug"`
	ContentType  ContentType  `json:"contentType"`
	Title        string       `json:"title"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ContentRef describes a content item.
type ContentRef struct {
	Slug      string      `json:"slug"`
	Type      ContentType `json:"type"`
	Title     string      `json:"title"`
	CreatedAt time.Time   `json:"createdAt"`
}
