package wishlist

import (
	"context"
	"sync"
	"testing"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
)

// fakeStore backs the wishlist, item and ledger repositories with maps.
type fakeStore struct {
	mu      sync.Mutex
	lists   map[string]*domain.Wishlist
	items   map[string]*domain.Item
	entries []domain.Contribution
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists: make(map[string]*domain.Wishlist),
		items: make(map[string]*domain.Item),
	}
}

func (s *fakeStore) addList(list domain.Wishlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := list
	s.lists[list.ID] = &copied
}

func (s *fakeStore) addItem(item domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := item
	s.items[item.ID] = &copied
}

func (s *fakeStore) addEntry(entry domain.Contribution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[id]
	if !ok {
		return nil, domain.ErrWishlistNotFound
	}
	copied := *list
	copied.Pinned = append([]string(nil), list.Pinned...)
	return &copied, nil
}

func (s *fakeStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Wishlist
	for _, list := range s.lists {
		if list.OwnerID == ownerID {
			out = append(out, *list)
		}
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, list *domain.Wishlist) (*domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list.ID == "" {
		list.ID = "list-generated"
	}
	copied := *list
	s.lists[list.ID] = &copied
	return list, nil
}

func (s *fakeStore) SetPinned(_ context.Context, id string, pinned []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.lists[id]
	if !ok {
		return domain.ErrWishlistNotFound
	}
	list.Pinned = append([]string(nil), pinned...)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lists[id]; !ok {
		return domain.ErrWishlistNotFound
	}
	delete(s.lists, id)
	return nil
}

func (s *fakeStore) ListByWishlist(_ context.Context, wishlistID string) ([]domain.Item, error) {
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

func (s *fakeStore) ListByItem(_ context.Context, itemID string) ([]domain.Contribution, error) {
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

// Unused parts of the item and ledger interfaces.

func (s *fakeStore) GetItemByID(_ context.Context, id string) (*domain.Item, error) {
	return nil, domain.ErrItemNotFound
}

func (s *fakeStore) GetWithOwner(_ context.Context, _ string) (*repository.ItemWithOwner, error) {
	return nil, domain.ErrItemNotFound
}

func (s *fakeStore) CreateItem(_ context.Context, item *domain.Item) (*domain.Item, error) {
	return item, nil
}

func (s *fakeStore) DeleteItem(_ context.Context, _ string) error { return nil }

func (s *fakeStore) Reserve(_ context.Context, _, _ string) error { return nil }

func (s *fakeStore) Unreserve(_ context.Context, _, _ string) error { return nil }

func (s *fakeStore) IncrementHype(_ context.Context, _ string) (int64, error) { return 0, nil }

func (s *fakeStore) Apply(_ context.Context, _ *domain.Contribution) (*domain.FundingResult, error) {
	return nil, domain.ErrItemNotFound
}

// itemStoreAdapter reconciles the wishlist/item method-name overlap so one
// fakeStore can serve both repository interfaces.
type itemStoreAdapter struct{ *fakeStore }

func (a itemStoreAdapter) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	return a.fakeStore.GetItemByID(ctx, id)
}

func (a itemStoreAdapter) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	return a.fakeStore.CreateItem(ctx, item)
}

func (a itemStoreAdapter) Delete(ctx context.Context, id string) error {
	return a.fakeStore.DeleteItem(ctx, id)
}

func seededStore() *fakeStore {
	store := newFakeStore()
	store.addList(domain.Wishlist{ID: "list-1", OwnerID: "owner-1", Title: "Birthday"})
	store.addItem(domain.Item{
		ID:             "item-1",
		WishlistID:     "list-1",
		Title:          "Camera",
		IsReserved:     true,
		ReservedBy:     "Sam",
		CollectedCents: 1500,
	})
	store.addItem(domain.Item{
		ID:         "item-2",
		WishlistID: "list-1",
		Title:      "Tripod",
	})
	store.addEntry(domain.Contribution{ID: "c-1", ItemID: "item-1", ContributorName: "Sam", AmountCents: 1500})
	return store
}

func newUseCase(store *fakeStore) *UseCase {
	return New(store, itemStoreAdapter{store}, store, nil)
}

func TestGetRedactsOwnerView(t *testing.T) {
	uc := newUseCase(seededStore())

	list, err := uc.Get(context.Background(), "list-1", "owner-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(list.Items))
	}

	for _, item := range list.Items {
		if item.IsReserved || item.ReservedBy != "" {
			t.Errorf("item %s: reservation leaked to owner", item.ID)
		}
		if item.CollectedCents != 0 {
			t.Errorf("item %s: collected amount leaked to owner", item.ID)
		}
		if item.Contributions != nil {
			t.Errorf("item %s: ledger leaked to owner", item.ID)
		}
		// Everything that is not surprise state stays visible.
		if item.Title == "" {
			t.Errorf("item %s: title missing from owner view", item.ID)
		}
	}
}

func TestGetGuestSeesFullState(t *testing.T) {
	uc := newUseCase(seededStore())

	list, err := uc.Get(context.Background(), "list-1", "guest-9")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	byID := make(map[string]domain.Item, len(list.Items))
	for _, item := range list.Items {
		byID[item.ID] = item
	}

	camera := byID["item-1"]
	if !camera.IsReserved || camera.ReservedBy != "Sam" {
		t.Errorf("guest view lost reservation: reserved=%v holder=%q", camera.IsReserved, camera.ReservedBy)
	}
	if camera.CollectedCents != 1500 {
		t.Errorf("guest view collected=%d, want 1500", camera.CollectedCents)
	}
	if len(camera.Contributions) != 1 || camera.Contributions[0].ContributorName != "Sam" {
		t.Errorf("guest view ledger %+v", camera.Contributions)
	}
}

func TestGetAnonymousViewerNotTreatedAsOwner(t *testing.T) {
	store := seededStore()
	// A list created before auth existed can carry an empty owner id. An
	// anonymous viewer must still get the unredacted guest view.
	store.addList(domain.Wishlist{ID: "list-2", OwnerID: "", Title: "Legacy"})
	store.addItem(domain.Item{ID: "item-9", WishlistID: "list-2", Title: "Book", IsReserved: true, ReservedBy: "Lee"})
	uc := newUseCase(store)

	list, err := uc.Get(context.Background(), "list-2", "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(list.Items) != 1 || !list.Items[0].IsReserved {
		t.Fatalf("anonymous viewer got a redacted view: %+v", list.Items)
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		list     *domain.Wishlist
		wantCode domain.ErrorCode
	}{
		{
			name:     "no identity",
			identity: "",
			list:     &domain.Wishlist{Title: "Birthday"},
			wantCode: domain.ErrCodeUnauthorized,
		},
		{
			name:     "missing title",
			identity: "owner-1",
			list:     &domain.Wishlist{},
			wantCode: domain.ErrCodeInvalid,
		},
		{
			name:     "too many pinned",
			identity: "owner-1",
			list:     &domain.Wishlist{Title: "Birthday", Pinned: []string{"a", "b", "c", "d", "e"}},
			wantCode: domain.ErrCodeInvalid,
		},
		{
			name:     "duplicate pinned",
			identity: "owner-1",
			list:     &domain.Wishlist{Title: "Birthday", Pinned: []string{"a", "a"}},
			wantCode: domain.ErrCodeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(newFakeStore())
			_, err := uc.Create(context.Background(), tt.identity, tt.list)
			if !domain.IsDomainError(err, tt.wantCode) {
				t.Fatalf("got error %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestCreateAssignsOwner(t *testing.T) {
	store := newFakeStore()
	uc := newUseCase(store)

	created, err := uc.Create(context.Background(), "owner-1", &domain.Wishlist{
		Title:  "Birthday",
		Pinned: []string{"item-1", "item-2"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.OwnerID != "owner-1" {
		t.Errorf("owner %q, want owner-1", created.OwnerID)
	}
}

func TestSetPinned(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		pinned   []string
		wantCode domain.ErrorCode
	}{
		{
			name:     "non-owner",
			identity: "guest-9",
			pinned:   []string{"item-1"},
			wantCode: domain.ErrCodeForbidden,
		},
		{
			name:     "anonymous",
			identity: "",
			pinned:   []string{"item-1"},
			wantCode: domain.ErrCodeForbidden,
		},
		{
			name:     "over the cap",
			identity: "owner-1",
			pinned:   []string{"a", "b", "c", "d", "e"},
			wantCode: domain.ErrCodeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(seededStore())
			err := uc.SetPinned(context.Background(), "list-1", tt.identity, tt.pinned)
			if !domain.IsDomainError(err, tt.wantCode) {
				t.Fatalf("got error %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestSetPinnedPersists(t *testing.T) {
	store := seededStore()
	uc := newUseCase(store)

	pinned := []string{"item-2", "item-1"}
	if err := uc.SetPinned(context.Background(), "list-1", "owner-1", pinned); err != nil {
		t.Fatalf("set pinned failed: %v", err)
	}

	list, _ := store.GetByID(context.Background(), "list-1")
	if len(list.Pinned) != 2 || list.Pinned[0] != "item-2" || list.Pinned[1] != "item-1" {
		t.Errorf("pinned sequence %v, order not preserved", list.Pinned)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	store := seededStore()
	uc := newUseCase(store)

	err := uc.Delete(context.Background(), "list-1", "guest-9")
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("non-owner delete: got %v, want forbidden", err)
	}

	if err := uc.Delete(context.Background(), "list-1", "owner-1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := store.GetByID(context.Background(), "list-1"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("list still present after delete: %v", err)
	}
}
