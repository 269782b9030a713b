package test

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// MemoryFactory hands out in-memory repositories.
type MemoryFactory struct {
	CartRepo  *CartStore
	OrderRepo *OrderStore
	TaskRepo  *ProductionQueue
	Blog      *BlogStore
}

// NewMemoryFactory constructs a factory with empty stores.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{
		CartRepo:  NewCartStore(),
		OrderRepo: NewOrderStore(),
		TaskRepo:  NewProductionQueue(),
		Blog:      NewBlogStore(),
	}
}

func (f *MemoryFactory) Carts() repository.CartRepository { return f.CartRepo }

func (f *MemoryFactory) Orders() repository.OrderRepository { return f.OrderRepo }

func (f *MemoryFactory) ProductionTasks() repository.ProductionTaskRepository { return f.TaskRepo }

func (f *MemoryFactory) BlogPosts() repository.BlogRepository { return f.Blog }

// CartStore keeps cart sessions in memory. Err, when set, fails every call.
type CartStore struct {
	Now func() time.Time
	Err error

	mu       sync.Mutex
	sessions map[string]model.CartSession
}

// NewCartStore constructs an empty CartStore.
func NewCartStore() *CartStore {
	return &CartStore{Now: time.Now, sessions: make(map[string]model.CartSession)}
}

// Put stores a session as is.
func (s *CartStore) Put(cart model.CartSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[cart.ID] = copyCart(cart)
}

// Len reports how many rows are stored, expired ones included.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *CartStore) GetOrCreate(ctx context.Context, sessionID string, expiresAt time.Time) (*model.CartSession, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	if cart, ok := s.sessions[sessionID]; ok && !cart.Expired(now) {
		out := copyCart(cart)
		return &out, nil
	}
	cart := model.CartSession{ID: sessionID, ExpiresAt: expiresAt, CreatedAt: now, UpdatedAt: now}
	s.sessions[sessionID] = cart
	out := copyCart(cart)
	return &out, nil
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (*model.CartSession, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.sessions[sessionID]
	if !ok || cart.Expired(s.Now()) {
		return nil, domainErrors.ErrNotFound
	}
	out := copyCart(cart)
	return &out, nil
}

func (s *CartStore) FindByCustomer(ctx context.Context, email string) (*model.CartSession, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *model.CartSession
	now := s.Now()
	for _, cart := range s.sessions {
		if cart.CustomerEmail != email || cart.Expired(now) {
			continue
		}
		if found == nil || cart.UpdatedAt.After(found.UpdatedAt) {
			c := copyCart(cart)
			found = &c
		}
	}
	if found == nil {
		return nil, domainErrors.ErrNotFound
	}
	return found, nil
}

func (s *CartStore) Save(ctx context.Context, cart *model.CartSession) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cart)
}

func (s *CartStore) save(cart *model.CartSession) error {
	if _, ok := s.sessions[cart.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	cart.UpdatedAt = s.Now()
	s.sessions[cart.ID] = copyCart(*cart)
	return nil
}

func (s *CartStore) Merge(ctx context.Context, survivor *model.CartSession, absorbedID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(survivor); err != nil {
		return err
	}
	if absorbedID != survivor.ID {
		delete(s.sessions, absorbedID)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *CartStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, cart := range s.sessions {
		if cart.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func copyCart(c model.CartSession) model.CartSession {
	if c.Items != nil {
		c.Items = append([]model.CartLine(nil), c.Items...)
	}
	return c
}

// OrderStore keeps orders in memory. CreateErr fails Create only, Err fails
// every call.
type OrderStore struct {
	CreateErr error
	Err       error

	mu     sync.Mutex
	orders []model.Order
	next   int64
}

// NewOrderStore constructs an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{next: 1}
}

// All returns a snapshot of every stored order.
func (s *OrderStore) All() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, copyOrder(o))
	}
	return out
}

// Put stores an order as is, assigning an id when missing.
func (s *OrderStore) Put(order model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.next
	}
	if order.ID >= s.next {
		s.next = order.ID + 1
	}
	s.orders = append(s.orders, copyOrder(order))
	return order
}

func (s *OrderStore) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if in.ExternalOrderID != "" && o.ExternalOrderID == in.ExternalOrderID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	payment := in.PaymentStatus
	if payment == "" {
		payment = model.PaymentStatusPending
	}
	now := time.Now()
	order := model.Order{
		ID:              s.next,
		ExternalOrderID: in.ExternalOrderID,
		ReferenceToken:  in.ReferenceToken,
		CustomerEmail:   in.CustomerEmail,
		CustomerName:    in.CustomerName,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Items:           append([]model.OrderItem(nil), in.Items...),
		Subtotal:        in.Subtotal,
		ShippingCost:    in.ShippingCost,
		Tax:             in.Tax,
		Total:           in.Total,
		Status:          model.OrderStatusPending,
		PaymentStatus:   payment,
		PaymentIntentID: in.PaymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.next++
	s.orders = append(s.orders, order)
	out := copyOrder(order)
	return &out, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return s.find(func(o model.Order) bool { return o.ID == id })
}

func (s *OrderStore) GetByExternalID(ctx context.Context, externalID string) (*model.Order, error) {
	return s.find(func(o model.Order) bool { return o.ExternalOrderID == externalID })
}

func (s *OrderStore) find(match func(model.Order) bool) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if match(o) {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderStore) ListByCustomerEmail(ctx context.Context, email string, page, limit int) (*model.OrderList, error) {
	return s.list(page, limit, func(o model.Order) bool { return o.CustomerEmail == email })
}

func (s *OrderStore) List(ctx context.Context, filter model.OrderFilter) (*model.OrderList, error) {
	return s.list(filter.Page, filter.Limit, func(o model.Order) bool {
		return filter.Status == "" || o.Status == filter.Status
	})
}

func (s *OrderStore) list(page, limit int, match func(model.Order) bool) (*model.OrderList, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]model.Order, 0)
	for i := len(s.orders) - 1; i >= 0; i-- {
		if match(s.orders[i]) {
			matched = append(matched, copyOrder(s.orders[i]))
		}
	}
	meta := model.NewPage(page, limit, len(matched))
	start := meta.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return &model.OrderList{Orders: matched[start:end], Page: meta}, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (bool, error) {
	var moved bool
	err := s.mutate(func(o *model.Order) bool { return o.ID == id }, func(o *model.Order) {
		if o.Status.Advances(status) {
			o.Status = status
			moved = true
		}
	})
	return moved, err
}

func (s *OrderStore) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus, paymentIntentID string) error {
	return s.mutate(func(o *model.Order) bool { return o.ID == id }, func(o *model.Order) {
		o.PaymentStatus = status
		if paymentIntentID != "" {
			o.PaymentIntentID = paymentIntentID
		}
	})
}

func (s *OrderStore) UpdateTracking(ctx context.Context, id int64, trackingNumber, trackingURL string) error {
	return s.mutate(func(o *model.Order) bool { return o.ID == id }, func(o *model.Order) {
		if o.TrackingNumber == "" && o.Status.Advances(model.OrderStatusShipped) {
			o.Status = model.OrderStatusShipped
		}
		o.TrackingNumber = trackingNumber
		if trackingURL != "" {
			o.TrackingURL = trackingURL
		}
	})
}

func (s *OrderStore) UpdateByExternalID(ctx context.Context, externalID string, update model.OrderUpdate) (*model.Order, error) {
	var updated model.Order
	err := s.mutate(func(o *model.Order) bool { return o.ExternalOrderID == externalID }, func(o *model.Order) {
		if update.Status != nil && o.Status.Advances(*update.Status) {
			o.Status = *update.Status
		}
		if update.PaymentStatus != nil {
			o.PaymentStatus = *update.PaymentStatus
		}
		if update.TrackingNumber != nil {
			o.TrackingNumber = *update.TrackingNumber
		}
		if update.TrackingURL != nil {
			o.TrackingURL = *update.TrackingURL
		}
		updated = copyOrder(*o)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *OrderStore) mutate(match func(*model.Order) bool, apply func(*model.Order)) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if match(&s.orders[i]) {
			apply(&s.orders[i])
			s.orders[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func copyOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	if o.BillingAddress != nil {
		addr := *o.BillingAddress
		o.BillingAddress = &addr
	}
	return o
}

// ProductionQueue keeps production tasks in memory.
type ProductionQueue struct {
	Err error

	mu    sync.Mutex
	tasks map[int64]*model.ProductionTask
	next  int64
}

// NewProductionQueue constructs an empty ProductionQueue.
func NewProductionQueue() *ProductionQueue {
	return &ProductionQueue{tasks: make(map[int64]*model.ProductionTask), next: 1}
}

// Task returns the task of an order.
func (q *ProductionQueue) Task(orderID int64) (model.ProductionTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.tasks[orderID]
	if !ok {
		return model.ProductionTask{}, false
	}
	return *t, true
}

func (q *ProductionQueue) Enqueue(ctx context.Context, orderID int64, externalOrderID string, runAt time.Time) error {
	if q.Err != nil {
		return q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.tasks[orderID]; ok {
		if t.Status == model.ProductionTaskParked {
			t.Status = model.ProductionTaskQueued
			t.Attempts = 0
			t.NextAttemptAt = runAt
		}
		return nil
	}
	q.tasks[orderID] = &model.ProductionTask{
		ID:              q.next,
		OrderID:         orderID,
		ExternalOrderID: externalOrderID,
		Status:          model.ProductionTaskQueued,
		NextAttemptAt:   runAt,
		CreatedAt:       runAt,
		UpdatedAt:       runAt,
	}
	q.next++
	return nil
}

func (q *ProductionQueue) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]model.ProductionTask, error) {
	if q.Err != nil {
		return nil, q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	due := make([]*model.ProductionTask, 0)
	for _, t := range q.tasks {
		if t.Status == model.ProductionTaskQueued && !t.NextAttemptAt.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	out := make([]model.ProductionTask, 0, len(due))
	for _, t := range due {
		out = append(out, *t)
		t.NextAttemptAt = now.Add(lease)
	}
	return out, nil
}

func (q *ProductionQueue) Complete(ctx context.Context, orderID int64) error {
	if q.Err != nil {
		return q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.tasks[orderID]; ok {
		t.Status = model.ProductionTaskDone
		t.LastError = ""
	}
	return nil
}

func (q *ProductionQueue) Reschedule(ctx context.Context, taskID int64, attempts int, next time.Time, lastErr string) error {
	return q.update(taskID, func(t *model.ProductionTask) {
		t.Attempts = attempts
		t.NextAttemptAt = next
		t.LastError = lastErr
	})
}

func (q *ProductionQueue) Park(ctx context.Context, taskID int64, attempts int, lastErr string) error {
	return q.update(taskID, func(t *model.ProductionTask) {
		t.Status = model.ProductionTaskParked
		t.Attempts = attempts
		t.LastError = lastErr
	})
}

func (q *ProductionQueue) update(taskID int64, apply func(*model.ProductionTask)) error {
	if q.Err != nil {
		return q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		if t.ID == taskID {
			apply(t)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// BlogStore keeps blog posts in memory.
type BlogStore struct {
	Err error

	mu    sync.Mutex
	posts []model.BlogPost
	next  int64
}

// NewBlogStore constructs an empty BlogStore.
func NewBlogStore() *BlogStore {
	return &BlogStore{next: 1}
}

func (s *BlogStore) List(ctx context.Context, filter model.BlogFilter) (*model.BlogList, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]model.BlogPost, 0)
	for i := len(s.posts) - 1; i >= 0; i-- {
		p := s.posts[i]
		if filter.Published && !p.IsPublished {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matched = append(matched, p)
	}
	meta := model.NewPage(filter.Page, filter.Limit, len(matched))
	start := meta.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return &model.BlogList{Posts: matched[start:end], Page: meta}, nil
}

func (s *BlogStore) Get(ctx context.Context, identifier string) (*model.BlogPost, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if strconv.FormatInt(p.ID, 10) == identifier || p.Slug == identifier {
			out := p
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *BlogStore) Create(ctx context.Context, post model.BlogPost) (*model.BlogPost, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	now := time.Now()
	post.ID = s.next
	post.CreatedAt, post.UpdatedAt = now, now
	if post.PublishedAt.IsZero() {
		post.PublishedAt = now
	}
	s.next++
	s.posts = append(s.posts, post)
	return &post, nil
}

func (s *BlogStore) Update(ctx context.Context, id int64, update model.BlogPostUpdate) (*model.BlogPost, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID != id {
			continue
		}
		if update.Slug != nil {
			for _, other := range s.posts {
				if other.ID != id && other.Slug == *update.Slug {
					return nil, domainErrors.ErrAlreadyExists
				}
			}
		}
		update.Apply(&s.posts[i])
		s.posts[i].UpdatedAt = time.Now()
		out := s.posts[i]
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *BlogStore) Delete(ctx context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func (s *BlogStore) Categories(ctx context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range s.posts {
		if !p.IsPublished {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}
