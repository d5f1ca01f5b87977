package state

import (
	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/pubsub"
)

const commentUpdateBufferSize = 32

// assetComments is the per-asset comment ring plus its live-update topic.
type assetComments struct {
	comments []Comment
	updates  *pubsub.Topic[Comment]
}

// CommentsComponent is the standalone per-asset comment ledger, grounded
// on original_source/state/components/comments.rs (the authoritative
// implementation; games.rs's inline copy is not used — see SPEC_FULL.md).
type CommentsComponent struct {
	byAsset map[event.Public]*assetComments
}

// NewCommentsComponent builds an empty comment ledger.
func NewCommentsComponent() *CommentsComponent {
	return &CommentsComponent{byAsset: make(map[event.Public]*assetComments)}
}

// OnEvent applies a CommentEvent, dropping comments posted against a
// hidden game or sync address. Returns true if consumed.
func (c *CommentsComponent) OnEvent(evt event.Event) bool {
	data, ok := evt.Data.(event.CommentEvent)
	if !ok {
		return false
	}
	if isHidden(HiddenGames, data.Game) || isHidden(HiddenSyncs, data.Game) {
		return true
	}

	bucket := c.byAsset[data.Game]
	if bucket == nil {
		bucket = &assetComments{updates: pubsub.NewTopic[Comment](commentUpdateBufferSize)}
		c.byAsset[data.Game] = bucket
	}

	comment := Comment{
		Index:     data.CommentIndex,
		User:      data.User,
		Timestamp: data.Timestamp,
		Text:      data.Text,
	}
	bucket.comments = append(bucket.comments, comment)
	bucket.updates.Publish(comment)
	return true
}

// Subscribe returns a live stream of new comments on a given asset.
func (c *CommentsComponent) Subscribe(asset event.Public) (<-chan Comment, func()) {
	bucket := c.byAsset[asset]
	if bucket == nil {
		bucket = &assetComments{updates: pubsub.NewTopic[Comment](commentUpdateBufferSize)}
		c.byAsset[asset] = bucket
	}
	return bucket.updates.Subscribe()
}

// GetCommentInfo pages an asset's comments, newest-last by default or
// newest-first when reverse is true, alongside the asset's total count.
func (c *CommentsComponent) GetCommentInfo(asset event.Public, count, skip int, reverse bool) CommentInfo {
	bucket := c.byAsset[asset]
	if bucket == nil {
		return CommentInfo{}
	}

	total := len(bucket.comments)
	if skip >= total || count <= 0 {
		return CommentInfo{Total: total}
	}

	if reverse {
		end := total - skip
		start := end - count
		if start < 0 {
			start = 0
		}
		page := append([]Comment(nil), bucket.comments[start:end]...)
		reverseComments(page)
		return CommentInfo{Total: total, Comments: page}
	}

	end := skip + count
	if end > total {
		end = total
	}
	return CommentInfo{Total: total, Comments: append([]Comment(nil), bucket.comments[skip:end]...)}
}

func reverseComments(c []Comment) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}
