package state

import (
	"testing"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
)

func TestCommentsComponentAppendsAndPages(t *testing.T) {
	c := NewCommentsComponent()
	asset := event.Public{1}

	for i := uint64(0); i < 3; i++ {
		consumed := c.OnEvent(event.Event{Data: event.CommentEvent{
			Game:         asset,
			CommentIndex: i,
			User:         event.Public{byte(i + 1)},
			Timestamp:    i,
			Text:         "hello",
		}})
		if !consumed {
			t.Fatalf("comment %d: expected consumed", i)
		}
	}

	info := c.GetCommentInfo(asset, 10, 0, false)
	if info.Total != 3 {
		t.Fatalf("Total = %d, want 3", info.Total)
	}
	if len(info.Comments) != 3 || info.Comments[0].Index != 0 || info.Comments[2].Index != 2 {
		t.Fatalf("unexpected comment order: %+v", info.Comments)
	}

	reversed := c.GetCommentInfo(asset, 10, 0, true)
	if len(reversed.Comments) != 3 || reversed.Comments[0].Index != 2 {
		t.Fatalf("reverse order wrong: %+v", reversed.Comments)
	}
}

func TestCommentsComponentDropsHiddenGame(t *testing.T) {
	c := NewCommentsComponent()
	hidden := event.Public{0xAB}
	HiddenGames[hidden] = struct{}{}
	defer delete(HiddenGames, hidden)

	consumed := c.OnEvent(event.Event{Data: event.CommentEvent{Game: hidden, Text: "spam"}})
	if !consumed {
		t.Fatal("expected hidden-game comment to report consumed")
	}
	if info := c.GetCommentInfo(hidden, 10, 0, false); info.Total != 0 {
		t.Fatalf("expected no comments recorded for a hidden game, got %d", info.Total)
	}
}

func TestCommentsComponentSubscribeReceivesNewComment(t *testing.T) {
	c := NewCommentsComponent()
	asset := event.Public{3}

	ch, cancel := c.Subscribe(asset)
	defer cancel()

	c.OnEvent(event.Event{Data: event.CommentEvent{Game: asset, Text: "gm"}})

	select {
	case got := <-ch:
		if got.Text != "gm" {
			t.Fatalf("Text = %q, want gm", got.Text)
		}
	default:
		t.Fatal("expected a comment to be published to the subscriber")
	}
}
