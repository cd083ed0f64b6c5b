package usecases

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:             domain.TrackID(id),
		Title:          "Track " + id,
		Duration:       3 * time.Minute,
		StreamURL:      "https://media.example.com/" + id,
		ReplyChannelID: snowflake.ID(3),
	}
}

func resolved(track *domain.Track) ports.FetchResult {
	return ports.FetchResult{Track: track}
}

func malformed(msg string) ports.FetchResult {
	return ports.FetchResult{Err: errors.New(msg)}
}

type mockQueueStore struct {
	mu          sync.Mutex
	queues      map[snowflake.ID]*domain.Queue
	generations map[snowflake.ID]uint64
}

func newMockQueueStore() *mockQueueStore {
	return &mockQueueStore{
		queues:      make(map[snowflake.ID]*domain.Queue),
		generations: make(map[snowflake.ID]uint64),
	}
}

func (m *mockQueueStore) queue(guildID snowflake.ID) *domain.Queue {
	q, ok := m.queues[guildID]
	if !ok {
		q = domain.NewQueue()
		m.queues[guildID] = q
	}
	return q
}

func (m *mockQueueStore) PushBack(
	guildID snowflake.ID,
	generation uint64,
	tracks ...*domain.Track,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[guildID] != generation {
		return domain.ErrStaleGeneration
	}
	m.queue(guildID).PushBack(tracks...)
	return nil
}

func (m *mockQueueStore) PopFront(guildID snowflake.ID) *domain.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue(guildID).PopFront()
}

func (m *mockQueueStore) DropFirst(guildID snowflake.ID, n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue(guildID).DropFirst(n)
}

func (m *mockQueueStore) Len(guildID snowflake.ID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue(guildID).Len()
}

func (m *mockQueueStore) List(guildID snowflake.ID) []*domain.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue(guildID).List()
}

func (m *mockQueueStore) Clear(guildID snowflake.ID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, guildID)
	m.generations[guildID]++
	return m.generations[guildID]
}

func (m *mockQueueStore) Generation(guildID snowflake.ID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[guildID]
}

// push appends tracks at the current generation.
func (m *mockQueueStore) push(guildID snowflake.ID, tracks ...*domain.Track) {
	_ = m.PushBack(guildID, m.Generation(guildID), tracks...)
}

type mockPlaybackStore struct {
	mu    sync.Mutex
	slots map[snowflake.ID]domain.Slot
}

func newMockPlaybackStore() *mockPlaybackStore {
	return &mockPlaybackStore{
		slots: make(map[snowflake.ID]domain.Slot),
	}
}

func (m *mockPlaybackStore) Get(guildID snowflake.ID) (domain.Slot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[guildID]
	return slot, ok
}

func (m *mockPlaybackStore) SetCurrent(
	guildID snowflake.ID,
	track *domain.Track,
	state domain.PlaybackState,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[guildID] = domain.Slot{GuildID: guildID, Current: track, State: state}
}

func (m *mockPlaybackStore) SetState(guildID snowflake.ID, state domain.PlaybackState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[guildID]
	if !ok {
		return false
	}
	slot.State = state
	m.slots[guildID] = slot
	return true
}

func (m *mockPlaybackStore) ClearCurrent(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, guildID)
}

func (m *mockPlaybackStore) Playing() []domain.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Slot
	for _, slot := range m.slots {
		if slot.State.IsPlaying() {
			result = append(result, slot)
		}
	}
	return result
}

type mockVoiceSink struct {
	connected map[snowflake.ID]bool
	joined    []snowflake.ID // channel IDs
	played    int
	stopped   int
	left      int
	joinErr   error
	playErr   error
	leaveErr  error
}

func newMockVoiceSink() *mockVoiceSink {
	return &mockVoiceSink{
		connected: make(map[snowflake.ID]bool),
	}
}

func (m *mockVoiceSink) Join(_ context.Context, guildID, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	m.connected[guildID] = true
	return nil
}

func (m *mockVoiceSink) Play(_ snowflake.ID, stream io.ReadCloser) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played++
	return stream.Close()
}

func (m *mockVoiceSink) Stop(_ snowflake.ID) {
	m.stopped++
}

func (m *mockVoiceSink) Leave(_ context.Context, guildID snowflake.ID) error {
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.left++
	delete(m.connected, guildID)
	return nil
}

func (m *mockVoiceSink) IsConnected(guildID snowflake.ID) bool {
	return m.connected[guildID]
}

type mockAudioSource struct {
	opened  []*domain.Track
	openErr error
	failFor map[domain.TrackID]bool
}

func (m *mockAudioSource) Open(_ context.Context, track *domain.Track) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	if m.failFor[track.ID] {
		return nil, errors.New("transcoder failed")
	}
	m.opened = append(m.opened, track)
	return io.NopCloser(strings.NewReader("pcm")), nil
}

type mockMetadataSource struct {
	results  []ports.FetchResult
	stream   chan ports.FetchResult // used instead of results when set
	fetched  chan struct{}          // signalled once per Fetch when set
	fetchErr error
	urls     []string
}

func (m *mockMetadataSource) Fetch(
	_ context.Context,
	url string,
	_ snowflake.ID,
) (<-chan ports.FetchResult, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	m.urls = append(m.urls, url)
	if m.fetched != nil {
		m.fetched <- struct{}{}
	}
	if m.stream != nil {
		return m.stream, nil
	}

	ch := make(chan ports.FetchResult, len(m.results))
	for _, result := range m.results {
		ch <- result
	}
	close(ch)
	return ch, nil
}

type notification struct {
	channelID snowflake.ID
	text      string
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (m *mockNotifier) Notify(channelID snowflake.ID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, notification{channelID: channelID, text: text})
}

func (m *mockNotifier) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, len(m.sent))
	for i, n := range m.sent {
		texts[i] = n.text
	}
	return texts
}

func (m *mockNotifier) count(text string) int {
	n := 0
	for _, t := range m.texts() {
		if t == text {
			n++
		}
	}
	return n
}

type mockVoiceLocator struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceLocator) UserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	channelID, ok := m.channels[userID]
	if !ok {
		return 0, domain.ErrUserNotInVoice
	}
	return channelID, nil
}

// fixture wires a PlaybackService and QueueService around mocks.
type fixture struct {
	slots    *mockPlaybackStore
	queue    *mockQueueStore
	voice    *mockVoiceSink
	locator  *mockVoiceLocator
	audio    *mockAudioSource
	metadata *mockMetadataSource
	notifier *mockNotifier
	resolver *TrackResolver
	playback *PlaybackService
	queueSvc *QueueService
}

const (
	testGuildID        = snowflake.ID(1)
	testUserID         = snowflake.ID(2)
	testReplyChannelID = snowflake.ID(3)
	testVoiceChannelID = snowflake.ID(4)
)

func newFixture() *fixture {
	f := &fixture{
		slots: newMockPlaybackStore(),
		queue: newMockQueueStore(),
		voice: newMockVoiceSink(),
		locator: &mockVoiceLocator{
			channels: map[snowflake.ID]snowflake.ID{testUserID: testVoiceChannelID},
		},
		audio:    &mockAudioSource{failFor: make(map[domain.TrackID]bool)},
		metadata: &mockMetadataSource{},
		notifier: &mockNotifier{},
	}

	f.resolver = NewTrackResolver(f.metadata, f.queue, f.notifier)
	f.playback = NewPlaybackService(
		f.slots,
		f.queue,
		f.voice,
		f.locator,
		NewTrackStarter(f.audio, f.voice),
		f.resolver,
		f.notifier,
		NewGuildLocks(),
	)
	f.playback.now = func() time.Time { return testNow }
	f.queueSvc = NewQueueService(f.queue, f.slots, f.resolver)
	return f
}

func (f *fixture) connect() {
	f.voice.connected[testGuildID] = true
}
