package services

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gopkg.in/gomail.v2"

	"authbot/internal/models"
	"authbot/internal/repositories"
)

// fakeUserRepo is an in-memory repositories.UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]*models.User{}}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) SetChannelAddress(_ context.Context, userID int, address string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	now := time.Now()
	addr := address
	u.ChannelAddress = &addr
	u.LinkedAt = &now
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByChannelAddress(_ context.Context, address string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ChannelAddress != nil && *u.ChannelAddress == address {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// failingCodeRepo fails every call with err.
type failingCodeRepo struct{ err error }

func (r failingCodeRepo) Create(context.Context, *models.LinkingCode) error { return r.err }
func (r failingCodeRepo) Consume(context.Context, string) (*models.LinkingCode, error) {
	return nil, r.err
}
func (r failingCodeRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, r.err }

// fakeBot records outgoing Telegram calls.
type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	reqs    []tgbotapi.Chattable
	sendErr error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reqs = append(b.reqs, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, addr, text string) error {
	n.calls = append(n.calls, addr+"|"+text)
	return n.err
}

type fakeDialer struct {
	msgs []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.msgs = append(d.msgs, m...)
	return d.err
}

type fakeEmail struct {
	sent []string
	err  error
}

func (e *fakeEmail) SendWelcomeEmail(email, _ string) error {
	e.sent = append(e.sent, email)
	return e.err
}

var errBoom = errors.New("boom")
