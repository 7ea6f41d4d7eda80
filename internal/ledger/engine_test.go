package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/careerhub/careerhub/internal/catalog"
	"github.com/careerhub/careerhub/internal/events"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/ledger/ledgertest"
	"github.com/careerhub/careerhub/internal/ledger/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []events.TransactionRecorded
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if recorded, ok := event.(events.TransactionRecorded); ok {
		p.keys = append(p.keys, key)
		p.events = append(p.events, recorded)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newEngine(t *testing.T, services ...catalog.Service) (*ledger.Engine, ledger.Store, *recordingPublisher) {
	t.Helper()
	if len(services) == 0 {
		services = catalog.DefaultServices()
	}
	cat, errCatalog := catalog.New(services)
	if errCatalog != nil {
		t.Fatalf("catalog: %v", errCatalog)
	}
	store := memory.New()
	pub := &recordingPublisher{}
	return ledger.NewEngine(store, cat, pub), store, pub
}

func seed(t *testing.T, store ledger.Store, userID uint64, amount int64) {
	t.Helper()
	if _, errRecord := ledger.Record(context.Background(), store, userID, "가입 축하 토큰", amount); errRecord != nil {
		t.Fatalf("seed: %v", errRecord)
	}
}

func TestRedeemDebitsCost(t *testing.T) {
	engine, store, pub := newEngine(t)
	seed(t, store, 1, 1000)

	receipt, errRedeem := engine.Redeem(context.Background(), 1, 1)
	if errRedeem != nil {
		t.Fatalf("redeem: %v", errRedeem)
	}
	if receipt.NewBalance != 800 {
		t.Fatalf("expected new balance 800, got %d", receipt.NewBalance)
	}
	if receipt.Transaction.Amount != -200 || receipt.Transaction.Title != "이력서 첨삭 사용" {
		t.Fatalf("unexpected transaction %#v", receipt.Transaction)
	}

	history, _ := engine.History(context.Background(), 1)
	if len(history) != 2 || history[0].ID != receipt.Transaction.ID {
		t.Fatalf("redemption must be head of history, got %#v", history)
	}
	ledgertest.AssertConsistent(t, store, 1)

	if len(pub.events) != 1 || pub.events[0].Balance != 800 || pub.keys[0] != "1" {
		t.Fatalf("expected one published event, got %#v", pub.events)
	}
}

func TestRedeemInsufficientBalanceChangesNothing(t *testing.T) {
	engine, store, pub := newEngine(t)
	seed(t, store, 2, 100)

	_, errRedeem := engine.Redeem(context.Background(), 2, 3)
	if !errors.Is(errRedeem, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", errRedeem)
	}
	balance, _ := engine.Balance(context.Background(), 2)
	if balance != 100 {
		t.Fatalf("expected balance unchanged at 100, got %d", balance)
	}
	history, _ := engine.History(context.Background(), 2)
	if len(history) != 1 {
		t.Fatalf("expected history unchanged, got %d entries", len(history))
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed redemption must not publish")
	}
}

func TestRedeemExactBalanceAllowed(t *testing.T) {
	engine, store, _ := newEngine(t)
	seed(t, store, 3, 150)

	receipt, errRedeem := engine.Redeem(context.Background(), 3, 3)
	if errRedeem != nil {
		t.Fatalf("redeem: %v", errRedeem)
	}
	if receipt.NewBalance != 0 {
		t.Fatalf("expected 0, got %d", receipt.NewBalance)
	}
}

func TestRedeemUnknownService(t *testing.T) {
	engine, store, _ := newEngine(t)
	seed(t, store, 4, 1000)

	_, errRedeem := engine.Redeem(context.Background(), 4, 999)
	if !errors.Is(errRedeem, ledger.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", errRedeem)
	}
	balance, _ := engine.Balance(context.Background(), 4)
	if balance != 1000 {
		t.Fatalf("expected balance unchanged, got %d", balance)
	}
	history, _ := engine.History(context.Background(), 4)
	if len(history) != 1 {
		t.Fatalf("expected history unchanged, got %d entries", len(history))
	}
}

func TestRedeemConcurrentSingleWinner(t *testing.T) {
	engine, store, _ := newEngine(t, catalog.Service{ID: 1, Title: "분석", Cost: 200})
	seed(t, store, 5, 300)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = engine.Redeem(context.Background(), 5, 1)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ledger.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("expected one success and one insufficient, got %d/%d", ok, insufficient)
	}
	balance, _ := engine.Balance(context.Background(), 5)
	if balance != 100 {
		t.Fatalf("expected final balance 100, got %d", balance)
	}
	history, _ := engine.History(context.Background(), 5)
	if len(history) != 2 {
		t.Fatalf("expected exactly one new entry, got %d entries", len(history))
	}
}

func TestCreditAddsEntryAtHead(t *testing.T) {
	engine, store, pub := newEngine(t)
	seed(t, store, 6, 200)

	receipt, errCredit := engine.Credit(context.Background(), 6, "친구 초대 보상", 500)
	if errCredit != nil {
		t.Fatalf("credit: %v", errCredit)
	}
	if receipt.NewBalance != 700 {
		t.Fatalf("expected 700, got %d", receipt.NewBalance)
	}
	history, _ := engine.History(context.Background(), 6)
	if history[0].Amount != 500 || history[0].Title != "친구 초대 보상" {
		t.Fatalf("expected credit at head, got %#v", history[0])
	}
	if len(pub.events) != 1 || pub.events[0].Amount != 500 {
		t.Fatalf("expected credit event, got %#v", pub.events)
	}
}

func TestCreditRejectsInvalidInput(t *testing.T) {
	engine, _, _ := newEngine(t)

	if _, errCredit := engine.Credit(context.Background(), 7, "reward", 0); !errors.Is(errCredit, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", errCredit)
	}
	if _, errCredit := engine.Credit(context.Background(), 7, "reward", -5); !errors.Is(errCredit, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", errCredit)
	}
	if _, errCredit := engine.Credit(context.Background(), 7, "", 5); !errors.Is(errCredit, ledger.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", errCredit)
	}
}

func TestPublishFailureKeepsLedger(t *testing.T) {
	engine, store, pub := newEngine(t)
	pub.err = errors.New("broker down")
	seed(t, store, 8, 400)

	if _, errRedeem := engine.Redeem(context.Background(), 8, 2); errRedeem != nil {
		t.Fatalf("redeem must succeed despite publish failure: %v", errRedeem)
	}
	balance, _ := engine.Balance(context.Background(), 8)
	if balance != 100 {
		t.Fatalf("expected 100, got %d", balance)
	}
}

func TestServicesCatalogOrder(t *testing.T) {
	engine, _, _ := newEngine(t)
	first := engine.Services()
	second := engine.Services()
	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("expected 4 services")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("services differ at %d", i)
		}
	}
	if first[0].Title != "이력서 첨삭" || first[3].Title != "맞춤형 추천" {
		t.Fatalf("unexpected order %#v", first)
	}
}
