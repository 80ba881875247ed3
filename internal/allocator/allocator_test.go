package allocator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evgenyq/kitesafari-booking/internal/model"
	"github.com/evgenyq/kitesafari-booking/internal/notifier"
	"github.com/evgenyq/kitesafari-booking/internal/repository"
)

// fakeStore keeps one cabin in memory and implements the conditional
// update the same way the MySQL repository does: the write lands only
// when the expected version still matches, and every landed write bumps
// the version by one.
type fakeStore struct {
	mu        sync.Mutex
	cabin     model.Cabin
	staleRead *model.Cabin // when set, GetByID returns this instead of live state
	updateErr error
	reads     int
	updates   int
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (*model.Cabin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.staleRead != nil {
		c := *s.staleRead
		return &c, nil
	}
	if id != s.cabin.ID {
		return nil, repository.ErrCabinNotFound
	}
	c := s.cabin
	return &c, nil
}

func (s *fakeStore) ConditionalUpdate(_ context.Context, id, expectedVersion uint64, status model.CabinStatus, guests string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return false, s.updateErr
	}
	if id != s.cabin.ID || expectedVersion != s.cabin.Version {
		return false, nil
	}
	s.cabin.Status = status
	s.cabin.Guests = guests
	s.cabin.Version++
	s.updates++
	return true, nil
}

type fakeLedger struct {
	mu        sync.Mutex
	inserts   []model.Booking
	insertErr error
	nextID    uint64
}

func (l *fakeLedger) Insert(_ context.Context, b *model.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.insertErr != nil {
		return l.insertErr
	}
	l.nextID++
	b.ID = l.nextID
	l.inserts = append(l.inserts, *b)
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	calls int
}

func (u *fakeUsers) GetOrCreateByTelegramID(_ context.Context, telegramID int64, _, _ string) (uint64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	return uint64(telegramID), nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	snaps []notifier.Snapshot
}

func (n *fakeNotifier) Publish(snap notifier.Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snaps = append(n.snaps, snap)
}

func availableCabin() model.Cabin {
	return model.Cabin{
		ID:          7,
		TripID:      3,
		CabinNumber: 4,
		Deck:        "main",
		BedType:     "double",
		PriceCents:  100000,
		MaxGuests:   2,
		Status:      model.StatusAvailable,
	}
}

func newTestAllocator(cabin model.Cabin) (*Allocator, *fakeStore, *fakeLedger, *fakeUsers, *fakeNotifier) {
	store := &fakeStore{cabin: cabin}
	ledger := &fakeLedger{}
	users := &fakeUsers{}
	hub := &fakeNotifier{}
	return New(store, ledger, users, hub), store, ledger, users, hub
}

func claimFor(t model.BookingType) *Claim {
	return &Claim{
		TripID:     3,
		CabinID:    7,
		TelegramID: 42,
		Handle:     "@maria",
		FullName:   "Maria Silva",
		Type:       t,
	}
}

func TestAttemptFullSingleBooksCabin(t *testing.T) {
	a, store, ledger, _, hub := newTestAllocator(availableCabin())

	res, err := a.Attempt(context.Background(), claimFor(model.BookingFullSingle))
	require.NoError(t, err)

	assert.Equal(t, model.StatusBooked, res.NewStatus)
	assert.Equal(t, uint64(1), res.NewVersion)
	assert.Equal(t, uint32(100000), res.TotalAmountCents)
	assert.Equal(t, uint64(1), res.BookingID)

	assert.Equal(t, model.StatusBooked, store.cabin.Status)
	assert.Equal(t, "@maria Maria Silva", store.cabin.Guests)
	assert.Equal(t, uint64(1), store.cabin.Version)

	require.Len(t, ledger.inserts, 1)
	rec := ledger.inserts[0]
	assert.Equal(t, model.BookingFullSingle, rec.Type)
	assert.Equal(t, uint32(100000), rec.TotalAmountCents)
	assert.Equal(t, model.SourceMiniApp, rec.Source)
	assert.Equal(t, model.PaymentPending, rec.PaymentStatus)
	require.NotNil(t, rec.PaymentDeadline)
	require.NotNil(t, rec.UserID)
	assert.Equal(t, uint64(42), *rec.UserID)

	require.Len(t, hub.snaps, 1)
	assert.Equal(t, model.StatusBooked, hub.snaps[0].Status)
	assert.Equal(t, uint64(1), hub.snaps[0].Version)
}

func TestAttemptGuestsInfoOverridesDescriptor(t *testing.T) {
	a, store, _, _, _ := newTestAllocator(availableCabin())

	c := claimFor(model.BookingFullDouble)
	c.GuestsInfo = "Maria Silva and Joao Silva"
	_, err := a.Attempt(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva and Joao Silva", store.cabin.Guests)
}

func TestAttemptHalfThenJoin(t *testing.T) {
	a, store, ledger, _, _ := newTestAllocator(availableCabin())

	res, err := a.Attempt(context.Background(), claimFor(model.BookingHalf))
	require.NoError(t, err)
	assert.Equal(t, model.StatusHalfAvailable, res.NewStatus)
	assert.Equal(t, uint32(50000), res.TotalAmountCents)
	assert.Equal(t, "@maria Maria Silva", store.cabin.Guests)

	joiner := &Claim{
		TripID:     3,
		CabinID:    7,
		TelegramID: 43,
		Handle:     "@pedro",
		FullName:   "Pedro Costa",
		Type:       model.BookingJoin,
		// join keeps the first occupant's text and appends its own default
		// entry even when guests info is supplied
		GuestsInfo: "should be ignored",
	}
	res, err = a.Attempt(context.Background(), joiner)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, res.NewStatus)
	assert.Equal(t, uint32(50000), res.TotalAmountCents)
	assert.Equal(t, uint64(2), res.NewVersion)
	assert.Equal(t, "@maria Maria Silva, @pedro Pedro Costa", store.cabin.Guests)
	assert.Len(t, ledger.inserts, 2)
}

func TestAttemptJoinRequiresHalfAvailable(t *testing.T) {
	a, store, ledger, users, hub := newTestAllocator(availableCabin())

	_, err := a.Attempt(context.Background(), claimFor(model.BookingJoin))
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CodeCabinNotHalfAvailable, f.Code)
	assert.Equal(t, model.StatusAvailable, f.CurrentStatus)

	// a rejected claim leaves no trace anywhere
	assert.Equal(t, 0, store.updates)
	assert.Empty(t, ledger.inserts)
	assert.Equal(t, 0, users.calls)
	assert.Empty(t, hub.snaps)
}

func TestAttemptRejectionIsIdempotent(t *testing.T) {
	cabin := availableCabin()
	cabin.Status = model.StatusBooked
	cabin.Guests = "@ana Ana Reis"
	a, store, _, _, _ := newTestAllocator(cabin)

	for i := 0; i < 3; i++ {
		_, err := a.Attempt(context.Background(), claimFor(model.BookingFullSingle))
		var f *Failure
		require.ErrorAs(t, err, &f)
		assert.Equal(t, CodeCabinNotAvailable, f.Code)
		assert.Equal(t, model.StatusBooked, f.CurrentStatus)
	}
	assert.Equal(t, 0, store.updates)
	assert.Equal(t, uint64(0), store.cabin.Version)
}

func TestAttemptOccupancyPreconditions(t *testing.T) {
	single := availableCabin()
	single.MaxGuests = 1

	for _, typ := range []model.BookingType{model.BookingFullDouble, model.BookingHalf} {
		a, store, _, _, _ := newTestAllocator(single)
		_, err := a.Attempt(context.Background(), claimFor(typ))
		var f *Failure
		require.ErrorAs(t, err, &f, "type %s", typ)
		assert.Equal(t, CodeCabinNotAvailable, f.Code, "type %s", typ)
		assert.Equal(t, 0, store.updates)
	}

	a, _, _, _, _ := newTestAllocator(single)
	_, err := a.Attempt(context.Background(), claimFor(model.BookingFullSingle))
	assert.NoError(t, err)
}

func TestAttemptValidation(t *testing.T) {
	a, store, _, _, _ := newTestAllocator(availableCabin())

	c := claimFor(model.BookingFullSingle)
	c.FullName = "  "
	_, err := a.Attempt(context.Background(), c)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CodeValidation, f.Code)
	assert.Equal(t, 0, store.reads)

	c = claimFor("weekend")
	_, err = a.Attempt(context.Background(), c)
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CodeValidation, f.Code)
}

func TestAttemptCabinNotFound(t *testing.T) {
	a, _, _, _, _ := newTestAllocator(availableCabin())

	c := claimFor(model.BookingFullSingle)
	c.CabinID = 99
	_, err := a.Attempt(context.Background(), c)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CodeCabinNotFound, f.Code)
}

// Both claimants read the cabin at version 0; exactly one conditional
// commit may land and the loser must see RACE_CONDITION without retrying.
func TestAttemptConcurrentClaimsExactlyOneWins(t *testing.T) {
	cabin := availableCabin()
	stale := cabin
	store := &fakeStore{cabin: cabin, staleRead: &stale}
	ledger := &fakeLedger{}
	a := New(store, ledger, &fakeUsers{}, &fakeNotifier{})

	claims := []*Claim{
		{TripID: 3, CabinID: 7, TelegramID: 42, Handle: "@maria", FullName: "Maria Silva", Type: model.BookingFullDouble},
		{TripID: 3, CabinID: 7, TelegramID: 43, Handle: "@pedro", FullName: "Pedro Costa", Type: model.BookingFullSingle},
	}

	var wg sync.WaitGroup
	results := make([]error, len(claims))
	for i, c := range claims {
		wg.Add(1)
		go func(i int, c *Claim) {
			defer wg.Done()
			_, results[i] = a.Attempt(context.Background(), c)
		}(i, c)
	}
	wg.Wait()

	var wins, races int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var f *Failure
		require.ErrorAs(t, err, &f)
		require.Equal(t, CodeRaceLost, f.Code)
		races++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, races)
	assert.Equal(t, 1, store.updates)
	assert.Len(t, ledger.inserts, 1)
	assert.Equal(t, uint64(1), store.cabin.Version)
}

func TestAttemptLedgerFailureRevertsCabin(t *testing.T) {
	a, store, ledger, _, hub := newTestAllocator(availableCabin())
	ledger.insertErr = errors.New("insert failed")

	_, err := a.Attempt(context.Background(), claimFor(model.BookingFullSingle))
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CodeBookingCreate, f.Code)

	// the compensating update put the cabin back where it started
	assert.Equal(t, model.StatusAvailable, store.cabin.Status)
	assert.Equal(t, "", store.cabin.Guests)
	assert.Equal(t, 2, store.updates)

	// observers saw the revert so they are not stuck on the phantom commit
	require.Len(t, hub.snaps, 1)
	assert.Equal(t, model.StatusAvailable, hub.snaps[0].Status)
}

func TestAdminOverrideToAvailableClearsGuests(t *testing.T) {
	cabin := availableCabin()
	cabin.Status = model.StatusBooked
	cabin.Guests = "@ana Ana Reis"
	a, store, ledger, _, hub := newTestAllocator(cabin)

	res, err := a.AdminOverride(context.Background(), &Override{
		TripID:       3,
		CabinID:      7,
		TargetStatus: model.StatusAvailable,
		GuestsInfo:   "typed by mistake",
		ActorID:      100,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), res.BookingID)
	assert.Equal(t, model.StatusAvailable, store.cabin.Status)
	assert.Equal(t, "", store.cabin.Guests)
	assert.Empty(t, ledger.inserts)
	require.Len(t, hub.snaps, 1)
}

func TestAdminOverrideToBookedRecordsSentinelEntry(t *testing.T) {
	a, store, ledger, users, _ := newTestAllocator(availableCabin())

	res, err := a.AdminOverride(context.Background(), &Override{
		TripID:       3,
		CabinID:      7,
		TargetStatus: model.StatusBooked,
		GuestsInfo:   "VIP party of two",
		ActorID:      100,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.BookingID)
	assert.Equal(t, "VIP party of two", store.cabin.Guests)
	assert.Equal(t, 0, users.calls)

	require.Len(t, ledger.inserts, 1)
	rec := ledger.inserts[0]
	assert.Equal(t, "admin", rec.GuestHandle)
	assert.Equal(t, "Admin Override", rec.GuestName)
	assert.Equal(t, model.BookingFullDouble, rec.Type)
	assert.Equal(t, uint32(100000), rec.TotalAmountCents)
	assert.Equal(t, model.SourceAdmin, rec.Source)
	assert.Nil(t, rec.UserID)
	require.NotNil(t, rec.AdminBookedBy)
	assert.Equal(t, int64(100), *rec.AdminBookedBy)
	assert.Nil(t, rec.PaymentDeadline)
}

func TestAdminOverrideRejectsUnknownStatus(t *testing.T) {
	a, store, _, _, _ := newTestAllocator(availableCabin())

	_, err := a.AdminOverride(context.Background(), &Override{
		TripID:       3,
		CabinID:      7,
		TargetStatus: "Closed",
	})
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, CodeValidation, f.Code)
	assert.Equal(t, 0, store.reads)
}
