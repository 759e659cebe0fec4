package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollster/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollster/internal/core/domain"
	"github.com/vncsmyrnk/pollster/internal/core/ports"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *recordingBroadcaster) Publish(_ context.Context, event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) Events() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Event(nil), b.events...)
}

func (b *recordingBroadcaster) Last() domain.Event {
	events := b.Events()
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

// barrierRepository holds the first n loads until all of them have happened,
// forcing those callers to work from the same version.
type barrierRepository struct {
	ports.PollRepository
	n       int32
	loads   atomic.Int32
	arrived sync.WaitGroup
}

func newBarrierRepository(repo ports.PollRepository, n int) *barrierRepository {
	b := &barrierRepository{PollRepository: repo, n: int32(n)}
	b.arrived.Add(n)
	return b
}

func (b *barrierRepository) FindByID(ctx context.Context, id string) (*domain.Poll, error) {
	p, err := b.PollRepository.FindByID(ctx, id)
	if b.loads.Add(1) <= b.n {
		b.arrived.Done()
		b.arrived.Wait()
	}
	return p, err
}

var (
	alice = domain.Identity{ID: "alice", Name: "Alice"}
	bob   = domain.Identity{ID: "bob", Name: "Bob"}
	carol = domain.Identity{ID: "carol", Name: "Carol"}
	anon  = domain.AnonymousIdentity("203.0.113.9")
)

type fixture struct {
	repo        *memory.PollRepository
	users       *memory.UserRepository
	clock       *fakeClock
	broadcaster *recordingBroadcaster
	logs        *test.Hook
	mutator     *PollMutator
	polls       ports.PollService
	votes       ports.VoteService
	comments    ports.CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, nil)
}

func newFixtureWithRepo(t *testing.T, wrap func(ports.PollRepository) ports.PollRepository) *fixture {
	t.Helper()
	f := &fixture{
		repo: memory.NewPollRepository(),
		users: memory.NewUserRepository(
			domain.User{ID: "alice", Name: "Alice", Verified: true},
			domain.User{ID: "bob", Name: "Bob", Verified: true},
			domain.User{ID: "carol", Name: "Carol", Verified: true},
		),
		clock:       &fakeClock{now: t0},
		broadcaster: &recordingBroadcaster{},
	}

	var repo ports.PollRepository = f.repo
	if wrap != nil {
		repo = wrap(f.repo)
	}

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	f.logs = hook

	f.mutator = NewPollMutator(repo, f.broadcaster, WithClock(f.clock), WithLogger(log))
	f.polls = NewPollService(f.mutator, f.users, "https://polls.example.com/")
	f.votes = NewVoteService(f.mutator)
	f.comments = NewCommentService(f.mutator, f.users)
	return f
}

func (f *fixture) createPoll(t *testing.T, author domain.Identity, mutate ...func(*ports.CreatePollInput)) *domain.Poll {
	t.Helper()
	input := ports.CreatePollInput{
		Issue:              "Which language next?",
		Choices:            []string{"Go", "Rust"},
		Keywords:           "languages",
		CanAddExtraChoices: true,
	}
	for _, m := range mutate {
		m(&input)
	}
	p, err := f.polls.Create(context.Background(), author, input)
	require.NoError(t, err)
	return p
}

func (f *fixture) stored(t *testing.T, id string) *domain.Poll {
	t.Helper()
	p, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}
