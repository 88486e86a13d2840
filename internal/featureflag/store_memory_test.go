package featureflag

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"chainsync/pkg/requestcontext"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestUnknownFlagResolvesClosed() {
	flag, err := s.store.Get(context.Background(), "never_configured")
	s.NoError(err)
	s.False(flag.Enabled)

	snap, err := s.store.Snapshot(context.Background())
	s.NoError(err)
	s.False(snap.Enabled("never_configured"))
}

func (s *InMemoryStoreSuite) TestSetIsVisibleToNextGet() {
	ctx := context.Background()

	_, err := s.store.Set(ctx, FlagAI, true, "admin")
	s.NoError(err)

	flag, err := s.store.Get(ctx, FlagAI)
	s.NoError(err)
	s.True(flag.Enabled)

	_, err = s.store.Set(ctx, FlagAI, false, "admin")
	s.NoError(err)

	flag, err = s.store.Get(ctx, FlagAI)
	s.NoError(err)
	s.False(flag.Enabled)
}

func (s *InMemoryStoreSuite) TestSetRecordsAudit() {
	fixedTime := time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixedTime)

	flag, err := s.store.Set(ctx, FlagAI, true, "admin")
	s.NoError(err)
	s.Equal(fixedTime, flag.UpdatedAt)
	s.Equal("admin", flag.UpdatedBy)
}

func (s *InMemoryStoreSuite) TestIdempotentToggle() {
	ctx := context.Background()

	_, err := s.store.Set(ctx, FlagAI, true, "admin")
	s.NoError(err)
	once, err := s.store.Get(ctx, FlagAI)
	s.NoError(err)

	_, err = s.store.Set(ctx, FlagAI, true, "admin")
	s.NoError(err)
	twice, err := s.store.Get(ctx, FlagAI)
	s.NoError(err)

	s.Equal(once.Enabled, twice.Enabled)
}

func (s *InMemoryStoreSuite) TestEmptyNameRejected() {
	_, err := s.store.Set(context.Background(), "", true, "admin")
	s.Error(err)
}

func (s *InMemoryStoreSuite) TestSnapshotIsImmutableView() {
	ctx := context.Background()

	_, err := s.store.Set(ctx, FlagAI, true, "admin")
	s.NoError(err)

	snap, err := s.store.Snapshot(ctx)
	s.NoError(err)
	s.True(snap.Enabled(FlagAI))

	// A later toggle must not alter the snapshot already handed out.
	_, err = s.store.Set(ctx, FlagAI, false, "admin")
	s.NoError(err)
	s.True(snap.Enabled(FlagAI))

	fresh, err := s.store.Snapshot(ctx)
	s.NoError(err)
	s.False(fresh.Enabled(FlagAI))
}

func TestInMemoryStoreConcurrentGetsDuringSets(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, err := store.Set(ctx, FlagAI, i%2 == 0, "writer")
			require.NoError(t, err)
		}
		close(stop)
	}()

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, err := store.Get(ctx, FlagAI)
					require.NoError(t, err)
				}
			}
		}()
	}
	wg.Wait()
}
