package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	"github.com/SscSPs/mobile_money_core/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func postPair(t *testing.T, ctx context.Context, s *memory.Store, id string, at time.Time, from, to domain.AccountRef, amount string) {
	t.Helper()
	m := domain.MustParseMoney(amount)
	txn := domain.Transaction{TransactionID: id, Type: domain.TxnAgentCashIn, Amount: m, CreatedAt: at}
	err := s.SaveTransaction(ctx, txn, []domain.LedgerEntry{
		{EntryID: id + "-d", TransactionID: id, Account: from, EntryType: domain.Debit, Amount: m, Leg: domain.LegPrincipal, CreatedAt: at},
		{EntryID: id + "-c", TransactionID: id, Account: to, EntryType: domain.Credit, Amount: m, Leg: domain.LegPrincipal, CreatedAt: at},
	})
	require.NoError(t, err)
}

func TestNewStore_SeedsPlatformAccountsAndConfig(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	for _, at := range domain.PlatformAccountTypes {
		p, err := s.FindProfile(ctx, domain.PlatformAccount(at))
		require.NoError(t, err)
		assert.Equal(t, domain.AccountActive, p.Status)
	}
	cfg, err := s.GetPlatformConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "500.00", cfg.CardEnrollmentPrice.String())
	assert.Equal(t, 3, cfg.MaxFailedPINAttempts)

	_, err = memory.NewStore(memory.WithoutSeed()).GetPlatformConfig(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWithinTx_RollsBackEveryWriteOnError(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	client := domain.ClientAccount("c1")
	cash := domain.AgentCashAccount("a1")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SaveProfile(ctx, domain.NewAccountProfile(client, time.Now(), "test")))
		postPair(t, ctx, s, "t1", time.Now(), cash, client, "10.00")
		inserted, err := s.InsertIfAbsent(ctx, domain.IdempotencyRecord{IdempotencyKey: "k1", ResultType: "X"})
		require.NoError(t, err)
		require.True(t, inserted)
		require.NoError(t, s.Append(ctx, domain.OutboxRecord{OutboxID: "o1"}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.FindProfile(ctx, client)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindTransactionByID(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindByKey(ctx, "k1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, s.EntryCount())
	assert.Empty(t, s.OutboxRecords())
}

func TestWithinTx_NestedCallJoinsOuter(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	ref := domain.ClientAccount("c1")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		inner := s.WithinTx(ctx, func(ctx context.Context) error {
			return s.SaveProfile(ctx, domain.NewAccountProfile(ref, time.Now(), "test"))
		})
		require.NoError(t, inner)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.FindProfile(ctx, ref)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "inner write must roll back with the outer unit of work")
}

func TestLockProfiles_BlocksUntilHolderFinishes(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	ref := domain.PlatformAccount(domain.AccountPlatform)

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			_, err := s.LockProfiles(ctx, []domain.AccountRef{ref})
			require.NoError(t, err)
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	acquired := make(chan struct{})
	go func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			_, err := s.LockProfiles(ctx, []domain.AccountRef{ref})
			if err == nil {
				close(acquired)
			}
			return err
		})
	}()

	select {
	case <-acquired:
		t.Fatal("second unit of work acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-done
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not handed over after release")
	}
}

func TestLockKey_WaiterSeesHolderRecord(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.LockKey(ctx, "k1"))
			close(locked)
			<-release
			_, err := s.InsertIfAbsent(ctx, domain.IdempotencyRecord{IdempotencyKey: "k1", ResultType: "X"})
			return err
		})
	}()
	<-locked

	found := make(chan *domain.IdempotencyRecord, 1)
	go func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.LockKey(ctx, "k1"); err != nil {
				return err
			}
			rec, err := s.FindByKey(ctx, "k1")
			found <- rec
			return err
		})
	}()

	select {
	case <-found:
		t.Fatal("second unit of work passed a held key lock")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-done
	select {
	case rec := <-found:
		require.NotNil(t, rec)
		assert.Equal(t, "k1", rec.IdempotencyKey)
	case <-time.After(time.Second):
		t.Fatal("key lock was not handed over after commit")
	}
}

func TestLockProfiles_TimesOutAsTechnicalFailure(t *testing.T) {
	s := memory.NewStore(memory.WithLockTimeout(20 * time.Millisecond))
	ctx := context.Background()
	ref := domain.PlatformAccount(domain.AccountPlatformBank)

	release := make(chan struct{})
	locked := make(chan struct{})
	go func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			_, _ = s.LockProfiles(ctx, []domain.AccountRef{ref})
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked
	defer close(release)

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.LockProfiles(ctx, []domain.AccountRef{ref})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindTechnical, apperrors.KindOf(err))
}

func TestLockProfiles_ReentrantWithinUnitOfWork(t *testing.T) {
	s := memory.NewStore(memory.WithLockTimeout(20 * time.Millisecond))
	ref := domain.PlatformAccount(domain.AccountPlatform)

	err := s.WithinTx(context.Background(), func(ctx context.Context) error {
		if _, err := s.LockProfiles(ctx, []domain.AccountRef{ref}); err != nil {
			return err
		}
		_, err := s.LockProfiles(ctx, []domain.AccountRef{ref})
		return err
	})
	assert.NoError(t, err)
}

func TestBalancesAndExposure(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()
	cashA := domain.AgentCashAccount("a1")
	cashB := domain.AgentCashAccount("a2")
	client := domain.ClientAccount("c1")
	bank := domain.PlatformAccount(domain.AccountPlatformBank)

	postPair(t, ctx, s, "t1", now, cashA, client, "100.00")
	postPair(t, ctx, s, "t2", now.Add(time.Second), cashB, client, "50.00")
	postPair(t, ctx, s, "t3", now.Add(2*time.Second), bank, cashA, "30.00")

	bal, err := s.NetBalance(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, "150.00", bal.String())

	bal, err = s.NetBalance(ctx, cashA)
	require.NoError(t, err)
	assert.Equal(t, "-70.00", bal.String())

	exposure, err := s.AgentCashExposure(ctx)
	require.NoError(t, err)
	assert.Equal(t, "120.00", exposure.String())
}

func TestListEntriesByAccount_PagesInCreationOrder(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()
	client := domain.ClientAccount("c1")
	cash := domain.AgentCashAccount("a1")

	for i, id := range []string{"t1", "t2", "t3"} {
		postPair(t, ctx, s, id, now.Add(time.Duration(i)*time.Second), cash, client, "1.00")
	}

	page, next, err := s.ListEntriesByAccount(ctx, client, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	assert.Equal(t, "t1", page[0].TransactionID)
	assert.Equal(t, "t2", page[1].TransactionID)

	page, next, err = s.ListEntriesByAccount(ctx, client, 2, next)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Nil(t, next)
	assert.Equal(t, "t3", page[0].TransactionID)

	bad := "%%%"
	_, _, err = s.ListEntriesByAccount(ctx, client, 2, &bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSaveTransaction_RejectsSecondReversalOfSameOriginal(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	original := "t1"

	first := domain.Transaction{TransactionID: "r1", Type: domain.TxnReversal, OriginalTransactionID: &original}
	require.NoError(t, s.SaveTransaction(ctx, first, nil))

	second := domain.Transaction{TransactionID: "r2", Type: domain.TxnReversal, OriginalTransactionID: &original}
	err := s.SaveTransaction(ctx, second, nil)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	exists, err := s.ExistsReversalFor(ctx, original)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSaveCard_UniqueUID(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, s.SaveCard(ctx, domain.Card{CardID: "card1", CardUID: "UID-1", Status: domain.CardActive}))
	err := s.SaveCard(ctx, domain.Card{CardID: "card2", CardUID: "UID-1", Status: domain.CardActive})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	card, err := s.FindCardByUID(ctx, "UID-1")
	require.NoError(t, err)
	assert.Equal(t, "card1", card.CardID)
}

func TestSaveClientRefund_OneRequestedPerClient(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	requested := domain.Settlement{Status: domain.SettlementRequested, Amount: domain.MustParseMoney("5.00")}

	require.NoError(t, s.SaveClientRefund(ctx, domain.ClientRefund{RefundID: "r1", ClientID: "c1", Settlement: requested}))
	err := s.SaveClientRefund(ctx, domain.ClientRefund{RefundID: "r2", ClientID: "c1", Settlement: requested})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	exists, err := s.ExistsRequestedRefundForClient(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOutbox_FetchAndMark(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, domain.OutboxRecord{OutboxID: "o1"}))
	require.NoError(t, s.Append(ctx, domain.OutboxRecord{OutboxID: "o2"}))

	batch, err := s.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	require.NoError(t, s.MarkPublished(ctx, "o1", time.Now()))
	require.NoError(t, s.MarkFailed(ctx, "o2", "broker down", time.Now()))

	batch, err = s.FetchUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "o2", batch[0].OutboxID)
	assert.Equal(t, 1, batch[0].Attempts)

	assert.ErrorIs(t, s.MarkPublished(ctx, "missing", time.Now()), apperrors.ErrNotFound)
}
