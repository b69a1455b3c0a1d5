package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/billing"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/payment"
	"github.com/leasehub/leasehub/internal/domain/room"
)

type fakeVerifier struct {
	mu    sync.Mutex
	match *payment.Match
	err   error
	calls int
}

func (f *fakeVerifier) VerifyPayment(ctx context.Context, c *contract.Contract, expected decimal.Decimal) (*payment.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.match, f.err
}

type sentNotification struct {
	UserID   uuid.UUID
	Title    string
	Category notification.Category
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Send(userID uuid.UUID, title, content string, category notification.Category, relatedID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Title: title, Category: category})
}

func (r *recordingNotifier) countFor(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

type testEnv struct {
	svc      *Service
	store    *memStore
	verifier *fakeVerifier
	notifier *recordingNotifier
	now      time.Time

	landlordID uuid.UUID
	tenantID   uuid.UUID
	roomID     uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:      newMemStore(),
		verifier:   &fakeVerifier{},
		notifier:   &recordingNotifier{},
		now:        time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		landlordID: uuid.New(),
		tenantID:   uuid.New(),
		roomID:     uuid.New(),
	}
	env.svc = NewService(env.store, env.verifier, env.notifier, Config{
		DepositWindow: 24 * time.Hour,
		StaleAfter:    7 * 24 * time.Hour,
	}, zerolog.Nop())
	env.svc.now = func() time.Time { return env.now }

	ctx := context.Background()
	require.NoError(t, env.store.Rooms().Create(ctx, &room.Room{
		ID:            env.roomID,
		RoomNumber:    "101",
		LandlordID:    env.landlordID,
		PricePerMonth: decimal.NewFromInt(5_000_000),
		Status:        room.StatusAvailable,
		CreatedAt:     env.now,
		UpdatedAt:     env.now,
	}))
	require.NoError(t, env.store.PaymentConfigs().Upsert(ctx, &payment.Config{
		LandlordID:    env.landlordID,
		AccountNumber: "0123456789",
		BankCode:      "VCB",
		APIToken:      "token",
		Active:        true,
	}))
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

func (env *testEnv) contractInput() CreateContractInput {
	return CreateContractInput{
		LandlordID:  env.landlordID,
		RoomID:      env.roomID,
		TenantID:    env.tenantID,
		MonthlyRent: decimal.NewFromInt(5_000_000),
		Deposit:     decimal.NewFromInt(10_000_000),
		StartDate:   env.now.AddDate(0, 0, 1),
		EndDate:     env.now.AddDate(1, 0, 1),
		NoticeDays:  30,
	}
}

func (env *testEnv) mustRoom(t *testing.T) *room.Room {
	t.Helper()
	r, err := env.store.Rooms().GetByID(context.Background(), env.roomID)
	require.NoError(t, err)
	return r
}

// draftToDepositPending walks a fresh contract to DEPOSIT_PENDING through the
// normal negotiation path.
func (env *testEnv) draftToDepositPending(t *testing.T) *contract.Contract {
	t.Helper()
	ctx := context.Background()
	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	c, err = env.svc.TenantApprove(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	return c
}

func TestCreateContractDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	assert.Equal(t, contract.StatusDraft, c.Status)
	assert.NotEmpty(t, c.ContractNumber)
	assert.Empty(t, c.PaymentRef)
	assert.Nil(t, c.DepositDeadline)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
	assert.Equal(t, 1, env.notifier.countFor(env.tenantID))
}

func TestCreateContractSkipNegotiation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.contractInput()
	in.SkipNegotiation = true
	c, err := env.svc.CreateContract(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, contract.StatusDepositPending, c.Status)
	assert.Equal(t, contract.PaymentRefFor(c.ContractNumber), c.PaymentRef)
	require.NotNil(t, c.DepositDeadline)
	assert.Equal(t, env.now.Add(24*time.Hour), *c.DepositDeadline)
	assert.Equal(t, room.StatusReserved, env.mustRoom(t).Status)
}

func TestCreateContractRequiresPaymentConfig(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cfg, err := env.store.PaymentConfigs().GetByLandlord(ctx, env.landlordID)
	require.NoError(t, err)
	cfg.Active = false
	require.NoError(t, env.store.PaymentConfigs().Upsert(ctx, cfg))

	_, err = env.svc.CreateContract(ctx, env.contractInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment configuration")
}

func TestCreateContractRejectsOccupiedRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Rooms().UpdateStatus(ctx, env.roomID, room.StatusOccupied))

	_, err := env.svc.CreateContract(ctx, env.contractInput())
	var ue *room.UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, room.StatusOccupied, ue.Status)
}

func TestCreateContractValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.contractInput()
	in.EndDate = in.StartDate
	_, err := env.svc.CreateContract(ctx, in)
	require.Error(t, err)

	in = env.contractInput()
	in.Deposit = decimal.Zero
	_, err = env.svc.CreateContract(ctx, in)
	require.Error(t, err)

	in = env.contractInput()
	in.TenantID = in.LandlordID
	_, err = env.svc.CreateContract(ctx, in)
	require.Error(t, err)
}

func TestCreateContractRejectsForeignRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.contractInput()
	in.LandlordID = env.tenantID
	in.TenantID = uuid.New()
	require.NoError(t, env.store.PaymentConfigs().Upsert(ctx, &payment.Config{
		LandlordID:    in.LandlordID,
		AccountNumber: "999",
		APIToken:      "t",
		Active:        true,
	}))
	_, err := env.svc.CreateContract(ctx, in)
	require.ErrorIs(t, err, contract.ErrUnauthorized)
}

func TestConcurrentCreateContractUniqueNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 20
	roomIDs := make([]uuid.UUID, n)
	for i := range roomIDs {
		roomIDs[i] = uuid.New()
		require.NoError(t, env.store.Rooms().Create(ctx, &room.Room{
			ID:            roomIDs[i],
			RoomNumber:    fmt.Sprintf("2%02d", i),
			LandlordID:    env.landlordID,
			PricePerMonth: decimal.NewFromInt(4_000_000),
			Status:        room.StatusAvailable,
		}))
	}

	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := env.contractInput()
			in.RoomID = roomIDs[i]
			in.TenantID = uuid.New()
			c, err := env.svc.CreateContract(ctx, in)
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- c.ContractNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for num := range numbers {
		assert.False(t, seen[num], "duplicate contract number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestSendContractReservesRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	c, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusPendingSignature, c.Status)
	assert.Equal(t, room.StatusReserved, env.mustRoom(t).Status)
}

func TestSendContractLandlordOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	_, err = env.svc.SendContract(ctx, c.ID, env.tenantID)
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	got, err := env.store.Contracts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDraft, got.Status)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestTenantApproveStartsDepositClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)

	c, err = env.svc.TenantApprove(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDepositPending, c.Status)
	assert.Equal(t, contract.PaymentRefFor(c.ContractNumber), c.PaymentRef)
	require.NotNil(t, c.DepositDeadline)
	assert.Equal(t, env.now.Add(24*time.Hour), *c.DepositDeadline)
}

func TestTenantApproveOnDraftRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	_, err = env.svc.TenantApprove(ctx, c.ID, env.tenantID)
	var ite *contract.InvalidTransitionError
	require.ErrorAs(t, err, &ite)

	// The failed transition must leave no trace.
	got, err := env.store.Contracts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDraft, got.Status)
	assert.Empty(t, got.PaymentRef)
}

func TestRevokeContractByLandlordReturnsToDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)

	c, err = env.svc.RevokeContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDraft, c.Status)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestRevokeContractByTenantCancels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)

	c, err = env.svc.RevokeContract(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusCancelled, c.Status)
	require.NotNil(t, c.TerminationReason)
	assert.Equal(t, "declined by tenant", *c.TerminationReason)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestRequestChangesRecordsNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)

	c, err = env.svc.RequestChanges(ctx, c.ID, env.tenantID, "lower the rent please")
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDraft, c.Status)
	require.NotNil(t, c.NegotiationNote)
	assert.Equal(t, "lower the rent please", *c.NegotiationNote)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestCheckPaymentStatusUnmatched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	st, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	assert.False(t, st.Matched)
	assert.Equal(t, contract.StatusDepositPending, st.Status)
	assert.Equal(t, 1, env.verifier.calls)
}

func TestCheckPaymentStatusActivates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	env.verifier.match = &payment.Match{
		TransactionID: "tx-9001",
		Amount:        decimal.NewFromInt(10_000_000),
		PaidAt:        env.now,
	}

	st, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	assert.True(t, st.Matched)
	assert.Equal(t, contract.StatusActive, st.Status)

	got, err := env.store.Contracts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusActive, got.Status)
	assert.Nil(t, got.DepositDeadline)
	assert.Equal(t, room.StatusOccupied, env.mustRoom(t).Status)

	inv, err := env.store.Billing().GetInvoiceByNumber(ctx, billing.DepositInvoiceNumber(got.ContractNumber))
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, billing.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(10_000_000)))

	p, err := env.store.Billing().GetCompletedPayment(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, "tx-9001", *p.TransactionID)
	assert.Equal(t, billing.MethodBankTransfer, p.Method)
}

func TestCheckPaymentStatusActiveShortCircuits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	env.verifier.match = &payment.Match{TransactionID: "tx-1", Amount: decimal.NewFromInt(10_000_000)}
	_, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	require.Equal(t, 1, env.verifier.calls)

	st, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	assert.True(t, st.Matched)
	assert.Equal(t, contract.StatusActive, st.Status)
	// The ledger is not consulted again once the contract is active.
	assert.Equal(t, 1, env.verifier.calls)
}

func TestCheckPaymentStatusStrangerRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	_, err := env.svc.CheckPaymentStatus(ctx, c.ID, uuid.New())
	require.ErrorIs(t, err, contract.ErrUnauthorized)
}

func TestCheckPaymentStatusVerifierErrorPropagates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	env.verifier.err = errors.New("config store down")
	_, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.Error(t, err)
}

func TestActivationSettlesApplications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	app, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: env.tenantID,
		Message:  "interested",
	})
	require.NoError(t, err)
	otherTenant := uuid.New()
	competing, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: otherTenant,
	})
	require.NoError(t, err)

	app, err = env.svc.ApproveApplication(ctx, app.ID, env.landlordID)
	require.NoError(t, err)
	require.Equal(t, application.StatusApproved, app.Status)

	in := env.contractInput()
	in.ApplicationID = &app.ID
	in.SkipNegotiation = true
	c, err := env.svc.CreateContract(ctx, in)
	require.NoError(t, err)

	env.verifier.match = &payment.Match{TransactionID: "tx-7", Amount: decimal.NewFromInt(10_000_000)}
	st, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	require.True(t, st.Matched)

	gotApp, err := env.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusCompleted, gotApp.Status)
	require.NotNil(t, gotApp.ContractID)
	assert.Equal(t, c.ID, *gotApp.ContractID)

	gotCompeting, err := env.store.Applications().GetByID(ctx, competing.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, gotCompeting.Status)
	require.NotNil(t, gotCompeting.RejectionReason)
	assert.Equal(t, application.RejectionReasonRoomTaken, *gotCompeting.RejectionReason)
}

func TestCreateContractRequiresApprovedApplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	app, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: env.tenantID,
	})
	require.NoError(t, err)

	in := env.contractInput()
	in.ApplicationID = &app.ID
	_, err = env.svc.CreateContract(ctx, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not approved")
}

func TestCancelExpiredDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	// Still inside the window: nothing happens.
	_, err := env.svc.CancelExpiredDeposit(ctx, c.ID)
	require.Error(t, err)
	got, err := env.store.Contracts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusDepositPending, got.Status)

	env.advance(25 * time.Hour)
	c, err = env.svc.CancelExpiredDeposit(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusCancelled, c.Status)
	assert.Nil(t, c.DepositDeadline)
	require.NotNil(t, c.TerminationReason)
	assert.Equal(t, "deposit payment deadline expired", *c.TerminationReason)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestExpireContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)
	env.verifier.match = &payment.Match{TransactionID: "tx-1", Amount: decimal.NewFromInt(10_000_000)}
	_, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)

	// End date not reached yet.
	_, err = env.svc.ExpireContract(ctx, c.ID)
	require.Error(t, err)

	env.advance(370 * 24 * time.Hour)
	c, err = env.svc.ExpireContract(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusExpired, c.Status)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestCancelStaleNegotiation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	_, err = env.svc.CancelStaleNegotiation(ctx, c.ID)
	require.Error(t, err)

	env.advance(8 * 24 * time.Hour)
	c, err = env.svc.CancelStaleNegotiation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusCancelled, c.Status)
	require.NotNil(t, c.TerminationReason)
	assert.Equal(t, "negotiation abandoned", *c.TerminationReason)
}

func TestCancelStaleNegotiationLeavesCompetingReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	env.advance(8 * 24 * time.Hour)

	// While the draft sat idle the room stayed AVAILABLE, and another
	// contract on the same room has since been sent for signing.
	other := env.contractInput()
	other.TenantID = uuid.New()
	b, err := env.svc.CreateContract(ctx, other)
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, b.ID, env.landlordID)
	require.NoError(t, err)
	require.Equal(t, room.StatusReserved, env.mustRoom(t).Status)

	c, err := env.svc.CancelStaleNegotiation(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusCancelled, c.Status)

	// Cancelling the draft must not clobber the competing reservation.
	assert.Equal(t, room.StatusReserved, env.mustRoom(t).Status)
	gotB, err := env.store.Contracts().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusPendingSignature, gotB.Status)
}

func TestCancelStaleNegotiationReleasesSentContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)
	_, err = env.svc.SendContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	require.Equal(t, room.StatusReserved, env.mustRoom(t).Status)

	env.advance(8 * 24 * time.Hour)
	c, err = env.svc.CancelStaleNegotiation(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusCancelled, c.Status)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func activeContract(t *testing.T, env *testEnv) *contract.Contract {
	t.Helper()
	ctx := context.Background()
	c := env.draftToDepositPending(t)
	env.verifier.match = &payment.Match{TransactionID: "tx-act", Amount: decimal.NewFromInt(10_000_000)}
	_, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	env.verifier.match = nil
	got, err := env.store.Contracts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	return got
}

func TestTerminateByTenantForfeitsDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := activeContract(t, env)

	c, err := env.svc.Terminate(ctx, c.ID, env.tenantID, "", 30)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusTerminated, c.Status)
	require.NotNil(t, c.EarlyTerminationPenalty)
	assert.True(t, c.EarlyTerminationPenalty.Equal(decimal.NewFromInt(10_000_000)))
	require.NotNil(t, c.TerminatedAt)
	assert.Equal(t, room.StatusAvailable, env.mustRoom(t).Status)
}

func TestTerminateByLandlordDoublesPenalty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := activeContract(t, env)

	c, err := env.svc.Terminate(ctx, c.ID, env.landlordID, "selling the building", 30)
	require.NoError(t, err)
	require.NotNil(t, c.EarlyTerminationPenalty)
	assert.True(t, c.EarlyTerminationPenalty.Equal(decimal.NewFromInt(20_000_000)))
	require.NotNil(t, c.TerminationReason)
	assert.Equal(t, "selling the building", *c.TerminationReason)
}

func TestTerminateAfterEndDateNoPenalty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := activeContract(t, env)

	env.advance(370 * 24 * time.Hour)
	c, err := env.svc.Terminate(ctx, c.ID, env.tenantID, "", 0)
	require.NoError(t, err)
	require.NotNil(t, c.EarlyTerminationPenalty)
	assert.True(t, c.EarlyTerminationPenalty.IsZero())
}

func TestTerminateStrangerRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := activeContract(t, env)

	_, err := env.svc.Terminate(ctx, c.ID, uuid.New(), "", 0)
	require.ErrorIs(t, err, contract.ErrUnauthorized)
}

func TestPreviewTerminationDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := activeContract(t, env)

	q, err := env.svc.PreviewTermination(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	assert.True(t, q.Early)
	assert.True(t, q.Penalty.Equal(decimal.NewFromInt(20_000_000)))

	got, err := env.store.Contracts().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusActive, got.Status)
	assert.Nil(t, got.TerminatedAt)
}

func TestCancelDraftContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	c, err = env.svc.CancelContract(ctx, c.ID, env.tenantID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, contract.StatusCancelled, c.Status)
	require.NotNil(t, c.TerminationReason)
	assert.Equal(t, "changed my mind", *c.TerminationReason)
}

func TestGetContractAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.svc.CreateContract(ctx, env.contractInput())
	require.NoError(t, err)

	_, err = env.svc.GetContract(ctx, c.ID, env.tenantID)
	require.NoError(t, err)
	_, err = env.svc.GetContract(ctx, c.ID, env.landlordID)
	require.NoError(t, err)
	_, err = env.svc.GetContract(ctx, c.ID, uuid.New())
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	_, err = env.svc.GetContract(ctx, uuid.New(), env.tenantID)
	require.ErrorIs(t, err, contract.ErrNotFound)
}

func TestApplicationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	app, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: env.tenantID,
		Message:  "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, env.landlordID, app.LandlordID)

	// Only the landlord reviews.
	_, err = env.svc.ApproveApplication(ctx, app.ID, env.tenantID)
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	app, err = env.svc.ApproveApplication(ctx, app.ID, env.landlordID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, app.Status)
	require.NotNil(t, app.ReviewedAt)

	// A decided application cannot be re-reviewed or withdrawn.
	_, err = env.svc.RejectApplication(ctx, app.ID, env.landlordID, "no")
	require.ErrorIs(t, err, application.ErrNotPending)
	_, err = env.svc.WithdrawApplication(ctx, app.ID, env.tenantID)
	require.ErrorIs(t, err, application.ErrNotPending)
}

func TestWithdrawApplication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	app, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: env.tenantID,
	})
	require.NoError(t, err)

	_, err = env.svc.WithdrawApplication(ctx, app.ID, env.landlordID)
	require.ErrorIs(t, err, contract.ErrUnauthorized)

	app, err = env.svc.WithdrawApplication(ctx, app.ID, env.tenantID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusWithdrawn, app.Status)
}

func TestCreateApplicationLandlordCannotApply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: env.landlordID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own room")
}

func TestCreateApplicationRoomNotAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Rooms().UpdateStatus(ctx, env.roomID, room.StatusReserved))

	_, err := env.svc.CreateApplication(ctx, CreateApplicationInput{
		RoomID:   env.roomID,
		TenantID: env.tenantID,
	})
	var ue *room.UnavailableError
	require.ErrorAs(t, err, &ue)
}

func TestSetRoomMaintenance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	r, err := env.svc.SetRoomMaintenance(ctx, env.roomID, env.landlordID, true)
	require.NoError(t, err)
	assert.Equal(t, room.StatusMaintenance, r.Status)

	r, err = env.svc.SetRoomMaintenance(ctx, env.roomID, env.landlordID, false)
	require.NoError(t, err)
	assert.Equal(t, room.StatusAvailable, r.Status)

	// A reserved room belongs to its contract.
	require.NoError(t, env.store.Rooms().UpdateStatus(ctx, env.roomID, room.StatusReserved))
	_, err = env.svc.SetRoomMaintenance(ctx, env.roomID, env.landlordID, true)
	var ue *room.UnavailableError
	require.ErrorAs(t, err, &ue)

	require.NoError(t, env.store.Rooms().UpdateStatus(ctx, env.roomID, room.StatusAvailable))
	_, err = env.svc.SetRoomMaintenance(ctx, env.roomID, uuid.New(), true)
	require.ErrorIs(t, err, contract.ErrUnauthorized)
}

func TestActivationNotifiesBothParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.draftToDepositPending(t)

	before := env.notifier.countFor(env.landlordID)
	env.verifier.match = &payment.Match{TransactionID: "tx-1", Amount: decimal.NewFromInt(10_000_000)}
	_, err := env.svc.CheckPaymentStatus(ctx, c.ID, env.tenantID)
	require.NoError(t, err)

	assert.Greater(t, env.notifier.countFor(env.landlordID), before)
	assert.Greater(t, env.notifier.countFor(env.tenantID), 0)
}
