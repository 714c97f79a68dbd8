package usecase

import (
	"context"
	"fmt"
	"sync"

	"campusfind/internal/domain/entity"
	"campusfind/internal/domain/repository"
	"campusfind/pkg/errors"
)

// In-memory repositories for usecase tests. Items keep insertion order and
// list newest-first, matching the store's createdAt-descending contract.

type fakeItemRepo struct {
	mu      sync.Mutex
	items   map[string]*entity.Item
	order   []string
	seq     int
	watches map[int]func([]*entity.Item)
	watchID int
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:   make(map[string]*entity.Item),
		watches: make(map[int]func([]*entity.Item)),
	}
}

func (r *fakeItemRepo) Create(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	if item.ID == "" {
		r.seq++
		item.ID = fmt.Sprintf("item-%d", r.seq)
	}
	r.items[item.ID] = item
	r.order = append(r.order, item.ID)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	copied := *item
	return &copied, nil
}

func (r *fakeItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	all := r.snapshot(func(*entity.Item) bool { return true })
	return window(all, limit, offset), int64(len(all)), nil
}

func (r *fakeItemRepo) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]*entity.Item, int64, error) {
	owned := r.snapshot(func(i *entity.Item) bool { return i.UserID == userID })
	return window(owned, limit, offset), int64(len(owned)), nil
}

func (r *fakeItemRepo) SetResolved(ctx context.Context, id string) error {
	r.mu.Lock()
	item, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Item", nil)
	}
	item.IsResolved = true
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *fakeItemRepo) Watch(ctx context.Context, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	return r.addWatch(onUpdate, func(*entity.Item) bool { return true })
}

func (r *fakeItemRepo) WatchByOwner(ctx context.Context, userID string, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	return r.addWatch(onUpdate, func(i *entity.Item) bool { return i.UserID == userID })
}

func (r *fakeItemRepo) addWatch(onUpdate func([]*entity.Item), match func(*entity.Item) bool) repository.CancelFunc {
	r.mu.Lock()
	r.watchID++
	id := r.watchID
	r.watches[id] = func(items []*entity.Item) {
		var filtered []*entity.Item
		for _, item := range items {
			if match(item) {
				filtered = append(filtered, item)
			}
		}
		onUpdate(filtered)
	}
	r.mu.Unlock()

	// Initial snapshot, like a fresh listener.
	r.notify()

	return func() {
		r.mu.Lock()
		delete(r.watches, id)
		r.mu.Unlock()
	}
}

func (r *fakeItemRepo) notify() {
	r.mu.Lock()
	all := make([]*entity.Item, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		copied := *r.items[r.order[i]]
		all = append(all, &copied)
	}
	deliver := make([]func([]*entity.Item), 0, len(r.watches))
	for _, w := range r.watches {
		deliver = append(deliver, w)
	}
	r.mu.Unlock()

	for _, w := range deliver {
		w(all)
	}
}

func (r *fakeItemRepo) snapshot(match func(*entity.Item) bool) []*entity.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Item
	for i := len(r.order) - 1; i >= 0; i-- {
		item := r.items[r.order[i]]
		if match(item) {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out
}

func window[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type roomWatch struct {
	userID string
	fn     func([]*entity.Chat)
}

type fakeChatRepo struct {
	mu           sync.Mutex
	chats        map[string]*entity.Chat
	messages     map[string][]*entity.Message
	msgSeq       int
	msgWatches   map[string]map[int]func([]*entity.Message)
	msgWatchID   int
	roomWatches  map[int]*roomWatch
	roomWatchID  int
	createCalls  int
	loseNextRace bool
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:       make(map[string]*entity.Chat),
		messages:    make(map[string][]*entity.Message),
		msgWatches:  make(map[string]map[int]func([]*entity.Message)),
		roomWatches: make(map[int]*roomWatch),
	}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) (bool, error) {
	r.mu.Lock()

	r.createCalls++
	created := false
	wrote := false
	if r.loseNextRace {
		// Another writer won the document-ID race just before us.
		r.loseNextRace = false
		if _, ok := r.chats[chat.ID]; !ok {
			copied := *chat
			copied.ItemName = "winner's copy"
			r.chats[chat.ID] = &copied
			wrote = true
		}
	} else if _, ok := r.chats[chat.ID]; !ok {
		copied := *chat
		r.chats[chat.ID] = &copied
		created = true
		wrote = true
	}

	var deliver []func()
	if wrote {
		deliver = r.roomDeliveries()
	}
	r.mu.Unlock()

	for _, d := range deliver {
		d()
	}
	return created, nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	copied := *chat
	return &copied, nil
}

func (r *fakeChatRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.chatsFor(userID)
	return window(out, limit, offset), int64(len(out)), nil
}

// chatsFor and roomDeliveries expect r.mu held.
func (r *fakeChatRepo) chatsFor(userID string) []*entity.Chat {
	var out []*entity.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userID) {
			copied := *chat
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeChatRepo) roomDeliveries() []func() {
	out := make([]func(), 0, len(r.roomWatches))
	for _, w := range r.roomWatches {
		chats := r.chatsFor(w.userID)
		fn := w.fn
		out = append(out, func() { fn(chats) })
	}
	return out
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	r.msgSeq++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", r.msgSeq)
	}
	copied := *message
	// Newest first.
	r.messages[message.ChatID] = append([]*entity.Message{&copied}, r.messages[message.ChatID]...)
	deliver := r.messageWatchers(message.ChatID)
	current := r.copyMessages(message.ChatID)
	r.mu.Unlock()

	for _, w := range deliver {
		w(current)
	}
	return nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.copyMessages(chatID)
	return window(all, limit, offset), int64(len(all)), nil
}

func (r *fakeChatRepo) WatchRooms(ctx context.Context, userID string, onUpdate func([]*entity.Chat), onError func(error)) repository.CancelFunc {
	r.mu.Lock()
	r.roomWatchID++
	id := r.roomWatchID
	r.roomWatches[id] = &roomWatch{userID: userID, fn: onUpdate}
	current := r.chatsFor(userID)
	r.mu.Unlock()

	onUpdate(current)

	return func() {
		r.mu.Lock()
		delete(r.roomWatches, id)
		r.mu.Unlock()
	}
}

func (r *fakeChatRepo) WatchMessages(ctx context.Context, chatID string, onUpdate func([]*entity.Message), onError func(error)) repository.CancelFunc {
	r.mu.Lock()
	r.msgWatchID++
	id := r.msgWatchID
	if r.msgWatches[chatID] == nil {
		r.msgWatches[chatID] = make(map[int]func([]*entity.Message))
	}
	r.msgWatches[chatID][id] = onUpdate
	current := r.copyMessages(chatID)
	r.mu.Unlock()

	onUpdate(current)

	return func() {
		r.mu.Lock()
		delete(r.msgWatches[chatID], id)
		r.mu.Unlock()
	}
}

func (r *fakeChatRepo) messageWatchers(chatID string) []func([]*entity.Message) {
	out := make([]func([]*entity.Message), 0, len(r.msgWatches[chatID]))
	for _, w := range r.msgWatches[chatID] {
		out = append(out, w)
	}
	return out
}

func (r *fakeChatRepo) copyMessages(chatID string) []*entity.Message {
	out := make([]*entity.Message, 0, len(r.messages[chatID]))
	for _, m := range r.messages[chatID] {
		copied := *m
		out = append(out, &copied)
	}
	return out
}
