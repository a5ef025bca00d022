package canvas

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

type slowBoards struct {
	creates int32
	gets    int32
	release chan struct{}
}

func (b *slowBoards) GetBoard(ctx context.Context, boardID string) (*domain.Board, error) {
	atomic.AddInt32(&b.gets, 1)
	if boardID == "missing" {
		return nil, domain.ErrBoardNotFound
	}
	return &domain.Board{ID: boardID}, nil
}

func (b *slowBoards) CreateBoard(ctx context.Context, title string) (*domain.Board, error) {
	n := atomic.AddInt32(&b.creates, 1)
	<-b.release
	return &domain.Board{ID: "board-" + string(rune('0'+n)), Title: title}, nil
}

func TestResolveCreatesOnce(t *testing.T) {
	gw := &slowBoards{release: make(chan struct{})}
	r := NewResolver(gw)

	var wg sync.WaitGroup
	results := make([]*domain.Board, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := r.Resolve(context.Background(), "", "Untitled")
			assert.NoError(t, err)
			results[i] = b
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&gw.creates) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gw.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&gw.creates))
	require.NotNil(t, results[0])
	assert.Equal(t, results[0].ID, results[1].ID)

	again, err := r.Resolve(context.Background(), "", "Other")
	require.NoError(t, err)
	assert.Equal(t, results[0].ID, again.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gw.creates))
}

func TestResolveExistingBoard(t *testing.T) {
	gw := &slowBoards{release: make(chan struct{})}
	r := NewResolver(gw)

	b, err := r.Resolve(context.Background(), "42", "")
	require.NoError(t, err)
	assert.Equal(t, "42", b.ID)

	_, err = r.Resolve(context.Background(), "missing", "")
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
	assert.Equal(t, int32(0), atomic.LoadInt32(&gw.creates))
}
