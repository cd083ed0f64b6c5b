package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

func TestQueueService_Add(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		results    []ports.FetchResult
		fetchErr   error
		wantErr    bool
		wantQueued []string
		wantFailed int
	}{
		{
			name:       "single track",
			url:        "https://example.com/one",
			results:    []ports.FetchResult{resolved(mockTrack("1"))},
			wantQueued: []string{"1"},
		},
		{
			name: "playlist keeps resolver order",
			url:  "https://example.com/list",
			results: []ports.FetchResult{
				resolved(mockTrack("1")),
				resolved(mockTrack("2")),
				resolved(mockTrack("3")),
			},
			wantQueued: []string{"1", "2", "3"},
		},
		{
			name: "malformed lines are skipped and reported once each",
			url:  "https://example.com/list",
			results: []ports.FetchResult{
				resolved(mockTrack("1")),
				malformed("unexpected end of JSON input"),
				resolved(mockTrack("2")),
				malformed("missing duration"),
				resolved(mockTrack("3")),
			},
			wantQueued: []string{"1", "2", "3"},
			wantFailed: 2,
		},
		{
			name: "invalid track is reported",
			url:  "https://example.com/list",
			results: []ports.FetchResult{
				resolved(&domain.Track{ID: "no-url", Title: "No URL"}),
				resolved(mockTrack("1")),
			},
			wantQueued: []string{"1"},
			wantFailed: 1,
		},
		{
			name:    "missing url",
			url:     "",
			wantErr: true,
		},
		{
			name:    "flag instead of url",
			url:     "--exec whoami",
			wantErr: true,
		},
		{
			name:     "resolver fails to start",
			url:      "https://example.com/one",
			fetchErr: errors.New("executable not found"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.metadata.results = tt.results
			f.metadata.fetchErr = tt.fetchErr

			_, err := f.queueSvc.Add(context.Background(), QueueAddInput{
				GuildID:        testGuildID,
				URL:            tt.url,
				ReplyChannelID: testReplyChannelID,
			})
			f.resolver.Wait()

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if f.queue.Len(testGuildID) != 0 {
					t.Error("expected nothing queued on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			queued := f.queue.List(testGuildID)
			if len(queued) != len(tt.wantQueued) {
				t.Fatalf("expected %d queued, got %d", len(tt.wantQueued), len(queued))
			}
			for i, id := range tt.wantQueued {
				if string(queued[i].ID) != id {
					t.Errorf("position %d: expected %s, got %s", i+1, id, queued[i].ID)
				}
				if f.notifier.count(fmt.Sprintf(msgQueued, queued[i].Title)) != 1 {
					t.Errorf("expected one announcement for %s", queued[i].Title)
				}
			}

			if got := f.notifier.count(msgItemFailed); got != tt.wantFailed {
				t.Errorf("expected %d failure notifications, got %d", tt.wantFailed, got)
			}

			if _, ok := f.slots.Get(testGuildID); ok {
				t.Error("expected add not to touch the current slot")
			}
		})
	}
}

func TestQueueService_AddAfterStopIsDropped(t *testing.T) {
	f := newFixture()
	stream := make(chan ports.FetchResult)
	f.metadata.stream = stream

	if _, err := f.queueSvc.Add(context.Background(), QueueAddInput{
		GuildID:        testGuildID,
		URL:            "https://example.com/list",
		ReplyChannelID: testReplyChannelID,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream <- resolved(mockTrack("1"))
	// The second send only completes once the first track has been pushed.
	stream <- malformed("bad json")

	if _, err := f.playback.Stop(context.Background(), StopInput{GuildID: testGuildID}); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	stream <- resolved(mockTrack("2"))
	close(stream)
	f.resolver.Wait()

	if got := f.queue.Len(testGuildID); got != 0 {
		t.Errorf("expected tracks resolved after stop to be dropped, got %d queued", got)
	}
	if f.notifier.count(fmt.Sprintf(msgQueued, "Track 2")) != 0 {
		t.Error("expected no announcement for a dropped track")
	}
}

func TestQueueService_List(t *testing.T) {
	tests := []struct {
		name        string
		queued      int
		current     bool
		page        int
		pageSize    int
		wantTracks  int
		wantPage    int
		wantPages   int
		wantStart   int
		wantEmpty   bool
		wantCurrent bool
	}{
		{name: "empty guild", wantTracks: 0, wantPage: 1, wantPages: 1, wantStart: 1, wantEmpty: true},
		{name: "current only", current: true, wantPage: 1, wantPages: 1, wantStart: 1, wantCurrent: true},
		{name: "first page", queued: 15, current: true, page: 1, wantTracks: 10, wantPage: 1, wantPages: 2, wantStart: 1, wantCurrent: true},
		{name: "second page", queued: 15, page: 2, wantTracks: 5, wantPage: 2, wantPages: 2, wantStart: 11},
		{name: "page clamped", queued: 15, page: 9, wantTracks: 5, wantPage: 2, wantPages: 2, wantStart: 11},
		{name: "custom page size", queued: 7, page: 2, pageSize: 3, wantTracks: 3, wantPage: 2, wantPages: 3, wantStart: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.current {
				f.slots.SetCurrent(testGuildID, mockTrack("current"), domain.Paused())
			}
			for i := range tt.queued {
				f.queue.push(testGuildID, mockTrack(fmt.Sprintf("%d", i+1)))
			}

			output, err := f.queueSvc.List(QueueListInput{
				GuildID:  testGuildID,
				Page:     tt.page,
				PageSize: tt.pageSize,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(output.Tracks) != tt.wantTracks {
				t.Errorf("expected %d tracks, got %d", tt.wantTracks, len(output.Tracks))
			}
			if output.CurrentPage != tt.wantPage {
				t.Errorf("expected page %d, got %d", tt.wantPage, output.CurrentPage)
			}
			if output.TotalPages != tt.wantPages {
				t.Errorf("expected %d pages, got %d", tt.wantPages, output.TotalPages)
			}
			if output.StartIndex != tt.wantStart {
				t.Errorf("expected start index %d, got %d", tt.wantStart, output.StartIndex)
			}
			if output.TotalTracks != tt.queued {
				t.Errorf("expected %d total, got %d", tt.queued, output.TotalTracks)
			}
			if output.IsEmpty() != tt.wantEmpty {
				t.Errorf("expected IsEmpty() = %v", tt.wantEmpty)
			}
			if (output.CurrentTrack != nil) != tt.wantCurrent {
				t.Errorf("expected current present = %v", tt.wantCurrent)
			}
			if tt.current && !output.Paused {
				t.Error("expected Paused flag for paused slot")
			}
			if len(output.Tracks) > 0 {
				want := fmt.Sprintf("%d", output.StartIndex)
				if string(output.Tracks[0].ID) != want {
					t.Errorf("expected first track on page to be %s, got %s", want, output.Tracks[0].ID)
				}
			}
		})
	}
}
