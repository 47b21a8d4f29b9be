package contribution

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
	"github.com/giftwell/backend/usecase/reservation"
)

// fakeFundingStore implements the item repository and the ledger behind one
// lock, so a ledger Apply and a manual Reserve serialize against each other
// the same way the transactional Postgres implementation makes them.
type fakeFundingStore struct {
	mu      sync.Mutex
	items   map[string]*domain.Item
	owners  map[string]string
	entries []domain.Contribution
	nextID  int
}

func newFakeFundingStore() *fakeFundingStore {
	return &fakeFundingStore{
		items:  make(map[string]*domain.Item),
		owners: make(map[string]string),
	}
}

func (s *fakeFundingStore) add(item domain.Item, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := item
	s.items[item.ID] = &copied
	s.owners[item.ID] = ownerID
}

func (s *fakeFundingStore) GetByID(_ context.Context, id string) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *fakeFundingStore) GetWithOwner(_ context.Context, id string) (*repository.ItemWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &repository.ItemWithOwner{Item: *item, OwnerID: s.owners[id]}, nil
}

func (s *fakeFundingStore) ListByWishlist(_ context.Context, wishlistID string) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Item
	for _, item := range s.items {
		if item.WishlistID == wishlistID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *fakeFundingStore) Create(_ context.Context, item *domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.items[item.ID] = &copied
	return item, nil
}

func (s *fakeFundingStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeFundingStore) Reserve(_ context.Context, id, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.IsReserved {
		return domain.ErrAlreadyReserved
	}
	item.IsReserved = true
	item.ReservedBy = holder
	return nil
}

func (s *fakeFundingStore) Unreserve(_ context.Context, id, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if !item.IsReserved || item.ReservedBy != holder {
		return domain.ErrNotHolder
	}
	item.IsReserved = false
	item.ReservedBy = ""
	return nil
}

func (s *fakeFundingStore) IncrementHype(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return 0, domain.ErrItemNotFound
	}
	item.HypeCount++
	return item.HypeCount, nil
}

func (s *fakeFundingStore) ListByItem(_ context.Context, itemID string) ([]domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Contribution
	for _, entry := range s.entries {
		if entry.ItemID == itemID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *fakeFundingStore) Apply(_ context.Context, c *domain.Contribution) (*domain.FundingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[c.ItemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if item.IsReserved {
		return nil, domain.ErrAlreadyReserved
	}

	item.CollectedCents += c.AmountCents

	s.nextID++
	entry := *c
	entry.ID = fmt.Sprintf("contrib-%d", s.nextID)
	s.entries = append(s.entries, entry)

	crossed := false
	if item.PriceCents != nil && item.CollectedCents >= *item.PriceCents {
		item.IsReserved = true
		item.ReservedBy = domain.GroupContributionHolder
		crossed = true
	}

	return &domain.FundingResult{
		Contribution:     &entry,
		CollectedCents:   item.CollectedCents,
		CrossedThreshold: crossed,
	}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ string, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.events...)
}

func price(v int64) *int64 { return &v }

func TestContributeValidation(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		setup    func(s *fakeFundingStore)
		wantCode domain.ErrorCode
	}{
		{
			name:     "zero amount",
			in:       Input{ItemID: "item-1", Identity: "sam", AmountCents: 0},
			setup:    func(s *fakeFundingStore) {},
			wantCode: domain.ErrCodeInvalid,
		},
		{
			name:     "negative amount",
			in:       Input{ItemID: "item-1", Identity: "sam", AmountCents: -500},
			setup:    func(s *fakeFundingStore) {},
			wantCode: domain.ErrCodeInvalid,
		},
		{
			name:     "no identity and no name",
			in:       Input{ItemID: "item-1", AmountCents: 500},
			setup:    func(s *fakeFundingStore) {},
			wantCode: domain.ErrCodeInvalid,
		},
		{
			name: "missing item",
			in:   Input{ItemID: "nope", Identity: "sam", AmountCents: 500},
			setup: func(s *fakeFundingStore) {
				s.add(domain.Item{ID: "item-1", WishlistID: "list-1"}, "owner-1")
			},
			wantCode: domain.ErrCodeNotFound,
		},
		{
			name: "owner cannot fund own item",
			in:   Input{ItemID: "item-1", Identity: "owner-1", AmountCents: 500},
			setup: func(s *fakeFundingStore) {
				s.add(domain.Item{ID: "item-1", WishlistID: "list-1"}, "owner-1")
			},
			wantCode: domain.ErrCodeForbidden,
		},
		{
			name: "reserved item rejects funding",
			in:   Input{ItemID: "item-1", Identity: "sam", AmountCents: 500},
			setup: func(s *fakeFundingStore) {
				s.add(domain.Item{ID: "item-1", WishlistID: "list-1", IsReserved: true, ReservedBy: "Lee"}, "owner-1")
			},
			wantCode: domain.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeFundingStore()
			tt.setup(store)
			pub := &recordingPublisher{}
			uc := New(store, store, pub, nil)

			_, err := uc.Contribute(context.Background(), tt.in)
			if !domain.IsDomainError(err, tt.wantCode) {
				t.Fatalf("got error %v, want code %s", err, tt.wantCode)
			}
			if len(pub.all()) != 0 {
				t.Errorf("failed contribution published events")
			}
		})
	}
}

func TestContributionsAccumulateAndFlipOnce(t *testing.T) {
	store := newFakeFundingStore()
	store.add(domain.Item{ID: "item-1", WishlistID: "list-1", PriceCents: price(5000)}, "owner-1")
	pub := &recordingPublisher{}
	uc := New(store, store, pub, nil)

	first, err := uc.Contribute(context.Background(), Input{
		ItemID: "item-1", Identity: "sam", ContributorName: "Sam", AmountCents: 3000,
	})
	if err != nil {
		t.Fatalf("first contribution failed: %v", err)
	}
	if first.CollectedCents != 3000 || first.CrossedThreshold {
		t.Fatalf("first result: collected=%d crossed=%v", first.CollectedCents, first.CrossedThreshold)
	}

	second, err := uc.Contribute(context.Background(), Input{
		ItemID: "item-1", Identity: "lee", ContributorName: "Lee", AmountCents: 2000,
	})
	if err != nil {
		t.Fatalf("second contribution failed: %v", err)
	}
	if second.CollectedCents != 5000 || !second.CrossedThreshold {
		t.Fatalf("second result: collected=%d crossed=%v", second.CollectedCents, second.CrossedThreshold)
	}

	item, _ := store.GetByID(context.Background(), "item-1")
	if !item.IsReserved || item.ReservedBy != domain.GroupContributionHolder {
		t.Fatalf("item after funding: reserved=%v holder=%q", item.IsReserved, item.ReservedBy)
	}

	// The group reservation blocks a later manual claim.
	reserve := reservation.New(store, pub, nil)
	err = reserve.Reserve(context.Background(), "item-1", "kim", "Kim")
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("manual reserve after funding: got %v, want conflict", err)
	}

	events := pub.all()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Type != domain.EventContributionAdded || !events[1].CrossedThreshold {
		t.Errorf("threshold event not flagged: %+v", events[1])
	}
	if events[1].ReservedBy != domain.GroupContributionHolder {
		t.Errorf("threshold event holder %q", events[1].ReservedBy)
	}
}

func TestOvershootAcceptedInFull(t *testing.T) {
	store := newFakeFundingStore()
	store.add(domain.Item{ID: "item-1", WishlistID: "list-1", PriceCents: price(1000)}, "owner-1")
	uc := New(store, store, &recordingPublisher{}, nil)

	result, err := uc.Contribute(context.Background(), Input{
		ItemID: "item-1", Identity: "sam", AmountCents: 2500,
	})
	if err != nil {
		t.Fatalf("overshooting contribution failed: %v", err)
	}
	if result.CollectedCents != 2500 || !result.CrossedThreshold {
		t.Fatalf("result: collected=%d crossed=%v", result.CollectedCents, result.CrossedThreshold)
	}
	if result.Contribution.AmountCents != 2500 {
		t.Errorf("ledger entry amount %d, want the full 2500", result.Contribution.AmountCents)
	}
}

func TestUnpricedItemNeverFlips(t *testing.T) {
	store := newFakeFundingStore()
	store.add(domain.Item{ID: "item-1", WishlistID: "list-1"}, "owner-1")
	uc := New(store, store, &recordingPublisher{}, nil)

	result, err := uc.Contribute(context.Background(), Input{
		ItemID: "item-1", Identity: "sam", AmountCents: 1_000_000,
	})
	if err != nil {
		t.Fatalf("contribution failed: %v", err)
	}
	if result.CrossedThreshold {
		t.Fatal("item without a price crossed the threshold")
	}

	item, _ := store.GetByID(context.Background(), "item-1")
	if item.IsReserved {
		t.Fatal("item without a price got reserved")
	}
}

func TestConcurrentContributionsLoseNothing(t *testing.T) {
	store := newFakeFundingStore()
	store.add(domain.Item{ID: "item-1", WishlistID: "list-1"}, "owner-1")
	uc := New(store, store, &recordingPublisher{}, nil)

	const (
		callers = 40
		amount  = int64(250)
	)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := uc.Contribute(context.Background(), Input{
				ItemID:          "item-1",
				ContributorName: fmt.Sprintf("guest-%d", n),
				AmountCents:     amount,
			})
			if err != nil {
				t.Errorf("caller %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	item, _ := store.GetByID(context.Background(), "item-1")
	if want := int64(callers) * amount; item.CollectedCents != want {
		t.Errorf("collected=%d, want %d", item.CollectedCents, want)
	}

	entries, _ := uc.ListForItem(context.Background(), "item-1")
	if len(entries) != callers {
		t.Errorf("ledger has %d entries, want %d", len(entries), callers)
	}
}

func TestConcurrentThresholdFlipsExactlyOnce(t *testing.T) {
	store := newFakeFundingStore()
	store.add(domain.Item{ID: "item-1", WishlistID: "list-1", PriceCents: price(1000)}, "owner-1")
	uc := New(store, store, &recordingPublisher{}, nil)

	const callers = 20
	var wg sync.WaitGroup
	var crossed, conflicts int
	var mu sync.Mutex

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := uc.Contribute(context.Background(), Input{
				ItemID:          "item-1",
				ContributorName: fmt.Sprintf("guest-%d", n),
				AmountCents:     600,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if result.CrossedThreshold {
					crossed++
				}
			case domain.IsDomainError(err, domain.ErrCodeConflict):
				conflicts++
			default:
				t.Errorf("caller %d: unexpected error %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	if crossed != 1 {
		t.Errorf("threshold crossed %d times, want exactly 1", crossed)
	}
	// Two contributions of 600 cover the 1000 price; everyone after the flip
	// is turned away.
	if conflicts != callers-2 {
		t.Errorf("conflicts=%d, want %d", conflicts, callers-2)
	}

	item, _ := store.GetByID(context.Background(), "item-1")
	if item.ReservedBy != domain.GroupContributionHolder {
		t.Errorf("holder %q after funding race", item.ReservedBy)
	}
}
