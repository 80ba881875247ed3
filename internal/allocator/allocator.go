// Package allocator implements the cabin booking state machine.  It
// decides whether a claim may transition a cabin between occupancy
// states, computes the resulting state and price, and commits the result
// with a single compare-and-swap write.  The conditional write is the
// only correctness mechanism: no lock is held between the read and the
// write, because that gap may span a network hop and a user deliberating
// over a form for minutes.
package allocator

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/evgenyq/kitesafari-booking/internal/model"
	"github.com/evgenyq/kitesafari-booking/internal/notifier"
	"github.com/evgenyq/kitesafari-booking/internal/repository"
)

// paymentDeadlineDays is how long a guest has to pay after booking.
const paymentDeadlineDays = 14

// Ledger entries created by the override path carry a sentinel identity
// instead of a real guest.
const (
	adminHandle = "admin"
	adminName   = "Admin Override"
)

// Store is the cabin resource store.  ConditionalUpdate must write the
// new status and descriptor only when the stored version still equals
// expectedVersion, bump the version by one in the same atomic write, and
// report whether the write landed.  Implementations must never fall back
// to an unconditional update.
type Store interface {
	GetByID(ctx context.Context, id uint64) (*model.Cabin, error)
	ConditionalUpdate(ctx context.Context, id, expectedVersion uint64, status model.CabinStatus, guests string) (bool, error)
}

// Ledger is the append-only booking record store.  Entries are written
// only after the cabin commit is confirmed, so a failed append is
// compensated on the cabin side and the ledger itself never needs a
// rollback primitive.
type Ledger interface {
	Insert(ctx context.Context, b *model.Booking) error
}

// Users resolves a verified Telegram identity to a users-table id,
// creating the row on first contact.  It is consulted only for claims
// that passed eligibility, so rejected claims cause no user writes.
type Users interface {
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, handle, fullName string) (uint64, error)
}

// Notifier receives a snapshot after every successful conditional
// commit.  Publishing is fire-and-forget; a Notifier must never block or
// fail in a way that reaches the allocator's result.
type Notifier interface {
	Publish(snap notifier.Snapshot)
}

// Result is returned for every accepted claim or override.
type Result struct {
	BookingID        uint64            // 0 when no ledger entry was written (override to a no-occupant status)
	TotalAmountCents uint32            // amount charged for this claim
	NewStatus        model.CabinStatus // cabin status after the commit
	NewVersion       uint64            // cabin version after the commit
	CabinNumber      uint32            // deck-plan number of the committed cabin
	Deck             string            // deck the cabin sits on
}

// Allocator validates claims against current cabin state and performs
// conditional commits.  It holds no mutable state of its own; every
// Attempt is an independent read-decide-write unit and concurrent
// invocations are arbitrated solely by the store's version check.
type Allocator struct {
	store    Store
	ledger   Ledger
	users    Users
	notifier Notifier
	now      func() time.Time
}

// New constructs an Allocator.  All dependencies must be non-nil.
func New(store Store, ledger Ledger, users Users, n Notifier) *Allocator {
	if store == nil || ledger == nil || users == nil || n == nil {
		panic("nil dependency passed to allocator.New")
	}
	return &Allocator{
		store:    store,
		ledger:   ledger,
		users:    users,
		notifier: n,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Attempt runs one normal claim to completion: validate, read, evaluate
// the transition table, conditionally commit, append the ledger entry.
// On any rejection it returns a *Failure and guarantees zero cabin and
// ledger mutations.  On a version mismatch it returns CodeRaceLost and
// never retries; re-reading and re-deciding is the caller's job.
func (a *Allocator) Attempt(ctx context.Context, claim *Claim) (*Result, error) {
	if err := claim.Validate(); err != nil {
		return nil, err
	}

	cabin, err := a.store.GetByID(ctx, claim.CabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return nil, failNotFound()
		}
		log.Printf("allocator: read cabin %d failed: %v", claim.CabinID, err)
		return nil, failInternal()
	}

	newStatus, newGuests, price, reject := evaluate(cabin, claim)
	if reject != nil {
		return nil, reject
	}

	// Only eligible claims reach the user table; rejected ones write nothing.
	userID, err := a.users.GetOrCreateByTelegramID(ctx, claim.TelegramID, claim.Handle, claim.FullName)
	if err != nil {
		log.Printf("allocator: resolve user %d failed: %v", claim.TelegramID, err)
		return nil, failInternal()
	}

	deadline := a.now().AddDate(0, 0, paymentDeadlineDays)
	record := &model.Booking{
		TripID:           claim.TripID,
		CabinID:          cabin.ID,
		UserID:           &userID,
		GuestHandle:      claim.Handle,
		GuestName:        claim.FullName,
		CabinNumber:      cabin.CabinNumber,
		CabinDeck:        cabin.Deck,
		CabinBedType:     cabin.BedType,
		CabinPriceCents:  cabin.PriceCents,
		Type:             claim.Type,
		PayerNote:        claim.PayerNote,
		TotalAmountCents: price,
		PaymentStatus:    model.PaymentPending,
		PaymentDeadline:  &deadline,
		Status:           model.BookingActive,
		GuestsInfo:       claim.GuestsInfo,
		Source:           model.SourceMiniApp,
	}

	return a.commit(ctx, cabin, newStatus, newGuests, price, record)
}

// AdminOverride forces a cabin into an explicit target status.  It skips
// the transition table but funnels into the same conditional commit as
// normal claims, so a concurrent guest booking can still win the race
// against the state the admin was shown.
func (a *Allocator) AdminOverride(ctx context.Context, ov *Override) (*Result, error) {
	if err := ov.Validate(); err != nil {
		return nil, err
	}

	cabin, err := a.store.GetByID(ctx, ov.CabinID)
	if err != nil {
		if errors.Is(err, repository.ErrCabinNotFound) {
			return nil, failNotFound()
		}
		log.Printf("allocator: read cabin %d failed: %v", ov.CabinID, err)
		return nil, failInternal()
	}

	// Statuses without an occupant never carry a descriptor, whatever the
	// admin typed into the form.
	guests := ov.GuestsInfo
	if !ov.TargetStatus.HasOccupant() {
		guests = ""
	}

	var record *model.Booking
	if ov.TargetStatus.HasOccupant() {
		actor := ov.ActorID
		record = &model.Booking{
			TripID:           ov.TripID,
			CabinID:          cabin.ID,
			GuestHandle:      adminHandle,
			GuestName:        adminName,
			CabinNumber:      cabin.CabinNumber,
			CabinDeck:        cabin.Deck,
			CabinBedType:     cabin.BedType,
			CabinPriceCents:  cabin.PriceCents,
			Type:             model.BookingFullDouble,
			TotalAmountCents: cabin.PriceCents,
			PaymentStatus:    model.PaymentPending,
			Status:           model.BookingActive,
			GuestsInfo:       ov.GuestsInfo,
			Source:           model.SourceAdmin,
			AdminBookedBy:    &actor,
		}
	}

	return a.commit(ctx, cabin, ov.TargetStatus, guests, cabin.PriceCents, record)
}

// evaluate applies the transition table to a cabin state read moments
// ago.  It is pure: the same cabin state and claim always produce the
// same decision, which makes rejections idempotent.
func evaluate(cabin *model.Cabin, claim *Claim) (model.CabinStatus, string, uint32, *Failure) {
	if claim.Type == model.BookingJoin {
		if cabin.Status != model.StatusHalfAvailable {
			return "", "", 0, failNotHalfAvailable(cabin.Status)
		}
		// Append the joiner, preserving the first occupant's text verbatim.
		// This asymmetry is deliberate: join must not erase who got here first.
		entry := claim.Handle + " " + claim.FullName
		guests := entry
		if cabin.Guests != "" {
			guests = cabin.Guests + ", " + entry
		}
		return model.StatusBooked, guests, cabin.PriceCents / 2, nil
	}

	if cabin.Status != model.StatusAvailable {
		return "", "", 0, failNotAvailable(cabin.Status)
	}

	switch claim.Type {
	case model.BookingFullSingle:
		if cabin.MaxGuests < 1 {
			return "", "", 0, failNotAvailable(cabin.Status)
		}
		return model.StatusBooked, claim.occupantEntry(), cabin.PriceCents, nil
	case model.BookingFullDouble:
		if cabin.MaxGuests < 2 {
			return "", "", 0, failNotAvailable(cabin.Status)
		}
		return model.StatusBooked, claim.occupantEntry(), cabin.PriceCents, nil
	case model.BookingHalf:
		if cabin.MaxGuests < 2 {
			return "", "", 0, failNotAvailable(cabin.Status)
		}
		return model.StatusHalfAvailable, claim.occupantEntry(), cabin.PriceCents / 2, nil
	}
	return "", "", 0, failValidation("invalid booking type")
}

// commit is the single write path shared by normal claims and admin
// overrides.  Order matters: the cabin row is committed first, the
// ledger entry is appended only after the commit is confirmed, and a
// failed append is compensated by reverting the cabin row with a second
// conditional update against the version this commit just produced.
func (a *Allocator) commit(ctx context.Context, cabin *model.Cabin, newStatus model.CabinStatus, guests string, price uint32, record *model.Booking) (*Result, error) {
	ok, err := a.store.ConditionalUpdate(ctx, cabin.ID, cabin.Version, newStatus, guests)
	if err != nil {
		log.Printf("allocator: conditional update on cabin %d failed: %v", cabin.ID, err)
		return nil, failCabinUpdate()
	}
	if !ok {
		// Another claim committed between our read and write.
		log.Printf("allocator: race lost on cabin %d (read status %q, version %d)",
			cabin.ID, cabin.Status, cabin.Version)
		return nil, failRaceLost(cabin.Status)
	}
	newVersion := cabin.Version + 1

	result := &Result{
		TotalAmountCents: price,
		NewStatus:        newStatus,
		NewVersion:       newVersion,
		CabinNumber:      cabin.CabinNumber,
		Deck:             cabin.Deck,
	}

	if record != nil {
		if err := a.ledger.Insert(ctx, record); err != nil {
			log.Printf("allocator: ledger append for cabin %d failed, reverting commit: %v", cabin.ID, err)
			reverted, rerr := a.store.ConditionalUpdate(ctx, cabin.ID, newVersion, cabin.Status, cabin.Guests)
			if rerr != nil || !reverted {
				// The revert itself lost a race or errored; the cabin state
				// wins and the missing ledger entry is surfaced to the caller.
				log.Printf("allocator: compensating revert of cabin %d did not land (reverted=%v err=%v)",
					cabin.ID, reverted, rerr)
			} else {
				a.notifier.Publish(notifier.Snapshot{
					CabinID: cabin.ID,
					Status:  cabin.Status,
					Version: newVersion + 1,
					At:      a.now(),
				})
			}
			return nil, failBookingCreate()
		}
		result.BookingID = record.ID
	}

	a.notifier.Publish(notifier.Snapshot{
		CabinID: cabin.ID,
		Status:  newStatus,
		Version: newVersion,
		At:      a.now(),
	})
	return result, nil
}
