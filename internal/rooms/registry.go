// Package rooms holds the in-memory registry of joined users. A room is not a
// stored entity: it is the set of users sharing the same normalized room name.
package rooms

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nfrund/roomrelay/internal/domain"
)

type entry struct {
	user domain.User
	seq  uint64
}

// Registry maps session identifiers to joined users.
type Registry struct {
	mu       sync.RWMutex
	users    map[string]entry
	nextSeq  uint64
	validate *validator.Validate
}

// NewRegistry creates an empty registry. Registries are independent of each
// other, so tests can run any number of them side by side.
func NewRegistry() *Registry {
	return &Registry{
		users:    make(map[string]entry),
		validate: validator.New(),
	}
}

// Normalize trims and case-folds a username or room name.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// AddUser stores a user keyed by its ID. Username and room are normalized
// before validation and the uniqueness check.
func (r *Registry) AddUser(u domain.User) (domain.User, error) {
	u.ID = strings.TrimSpace(u.ID)
	u.Username = Normalize(u.Username)
	u.Room = Normalize(u.Room)

	if err := r.validate.Struct(u); err != nil {
		return domain.User{}, domain.NewError(domain.ErrValidation, domain.MsgMissingFields)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return domain.User{}, domain.NewError(domain.ErrConflict, domain.MsgAlreadyJoined)
	}
	for _, e := range r.users {
		if e.user.Room == u.Room && e.user.Username == u.Username {
			return domain.User{}, domain.NewError(domain.ErrConflict, domain.MsgUsernameInUse)
		}
	}

	r.nextSeq++
	r.users[u.ID] = entry{user: u, seq: r.nextSeq}
	return u, nil
}

// RemoveUser deletes and returns the user for id. The boolean is false when
// no user was registered under id.
func (r *Registry) RemoveUser(id string) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	delete(r.users, id)
	return e.user, true
}

// GetUser returns the user for id.
func (r *Registry) GetUser(id string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.users[id]
	return e.user, ok
}

// GetUsersInRoom returns the users of room in join order. The room name is
// compared case-insensitively. The result is empty, never nil.
func (r *Registry) GetUsersInRoom(room string) []domain.User {
	room = Normalize(room)

	r.mu.RLock()
	members := lo.Filter(lo.Values(r.users), func(e entry, _ int) bool {
		return e.user.Room == room
	})
	r.mu.RUnlock()

	return sortedUsers(members)
}

// Rooms lists every room that currently has at least one member, sorted by name.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	names := lo.Uniq(lo.MapToSlice(r.users, func(_ string, e entry) string {
		return e.user.Room
	}))
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of joined users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func sortedUsers(entries []entry) []domain.User {
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	users := make([]domain.User, 0, len(entries))
	for _, e := range entries {
		users = append(users, e.user)
	}
	return users
}

// Summary is one room and its members in join order.
type Summary struct {
	Room  string        `json:"room"`
	Users []domain.User `json:"users"`
}

// Snapshot returns every non-empty room sorted by name, taken under a single
// read lock so the rooms and their members are consistent with each other.
func (r *Registry) Snapshot() []Summary {
	r.mu.RLock()
	byRoom := lo.GroupBy(lo.Values(r.users), func(e entry) string {
		return e.user.Room
	})
	r.mu.RUnlock()

	summaries := lo.MapToSlice(byRoom, func(room string, members []entry) Summary {
		return Summary{Room: room, Users: sortedUsers(members)}
	})
	slices.SortFunc(summaries, func(a, b Summary) int {
		return cmp.Compare(a.Room, b.Room)
	})
	return summaries
}
