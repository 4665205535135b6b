package api

import (
	"testing"

	"github.com/lanekit/lanekeeper/pkg/lanedto"
)

func TestFeedPublishFansOut(t *testing.T) {
	f := NewFeed()
	a := f.add("p1")
	b := f.add("p1")
	other := f.add("p2")

	f.Publish("p1", lanedto.Scorecard{GameID: "g1"})

	for _, ch := range []chan lanedto.Scorecard{a, b} {
		select {
		case card := <-ch:
			if card.GameID != "g1" {
				t.Fatalf("got %s, want g1", card.GameID)
			}
		default:
			t.Fatalf("subscriber missed the snapshot")
		}
	}
	select {
	case <-other:
		t.Fatalf("p2 subscriber must not see p1 updates")
	default:
	}
}

func TestFeedPublishNeverBlocks(t *testing.T) {
	f := NewFeed()
	ch := f.add("p1")
	for i := 0; i < cap(ch)+5; i++ {
		f.Publish("p1", lanedto.Scorecard{GameID: "g1"})
	}
	// extra snapshots were dropped, not queued
	if len(ch) != cap(ch) {
		t.Fatalf("channel len = %d, want %d", len(ch), cap(ch))
	}
}

func TestFeedRemove(t *testing.T) {
	f := NewFeed()
	ch := f.add("p1")
	f.remove("p1", ch)
	f.Publish("p1", lanedto.Scorecard{GameID: "g1"})
	if len(ch) != 0 {
		t.Fatalf("removed subscriber must not receive")
	}
}
