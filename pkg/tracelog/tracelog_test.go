package tracelog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent(session string, cat Category) Event {
	ev := Event{
		Timestamp: time.Now(),
		SessionID: session,
		Path:      "Profile.arkprofile",
		Direction: DirectionDecode,
		Category:  cat,
	}
	switch cat {
	case CategoryProperty:
		ev.Property = &PropertyEvent{
			Name:   "ArkItems",
			Type:   "ArrayProperty",
			Offset: 128,
			Size:   610,
		}
	case CategoryFinding:
		ev.Finding = &FindingEvent{
			Kind:   "UnknownType",
			Name:   "Mystery",
			Offset: 64,
			Detail: "unknown property type \"FakeProperty\"",
		}
	case CategoryError:
		ev.Error = &ErrorEvent{Message: "truncated input", Offset: 512}
	}
	return ev
}

func TestEventCBORRoundTrip(t *testing.T) {
	ev := sampleEvent("s1", CategoryProperty)
	count := int32(5)
	ev.Property.Count = &count

	data, err := EncodeEvent(ev)
	require.NoError(t, err)

	got, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.Equal(t, ev.SessionID, got.SessionID)
	assert.Equal(t, ev.Direction, got.Direction)
	assert.Equal(t, ev.Category, got.Category)
	require.NotNil(t, got.Property)
	assert.Equal(t, "ArkItems", got.Property.Name)
	assert.Equal(t, int32(610), got.Property.Size)
	require.NotNil(t, got.Property.Count)
	assert.Equal(t, int32(5), *got.Property.Count)
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aptrace")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	logger.Log(sampleEvent("s1", CategoryProperty))
	logger.Log(sampleEvent("s2", CategoryFinding))
	logger.Log(sampleEvent("s1", CategoryError))
	require.NoError(t, logger.Close())

	// Close is idempotent and logging after close is a no-op.
	require.NoError(t, logger.Close())
	logger.Log(sampleEvent("s1", CategoryProperty))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	events, err := r.All()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, CategoryProperty, events[0].Category)
	assert.Equal(t, CategoryFinding, events[1].Category)
	assert.Equal(t, CategoryError, events[2].Category)
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.aptrace")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	logger.Log(sampleEvent("s1", CategoryProperty))
	logger.Log(sampleEvent("s2", CategoryProperty))
	logger.Log(sampleEvent("s1", CategoryFinding))
	require.NoError(t, logger.Close())

	cat := CategoryProperty
	r, err := NewFilteredReader(path, Filter{SessionID: "s1", Category: &cat})
	require.NoError(t, err)
	defer r.Close()

	events, err := r.All()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "s1", events[0].SessionID)
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.aptrace")

	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Log(sampleEvent("s1", CategoryProperty))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, logger.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	events, err := r.All()
	require.NoError(t, err)
	assert.Len(t, events, 8*50)
}

func TestReaderEOFOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.aptrace")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSlogAdapter(t *testing.T) {
	// Smoke test: the adapter must not panic on any event shape.
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.Log(sampleEvent("s1", CategoryProperty))
	adapter.Log(sampleEvent("s1", CategoryFinding))
	adapter.Log(sampleEvent("s1", CategoryError))
	adapter.Log(Event{Header: &HeaderEvent{Version: 1, Name: "Survivor"}})
}
