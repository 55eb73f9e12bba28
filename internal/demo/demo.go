// Package demo is a small user directory whose mutations are guarded by
// argument validation. It backs the serve command and end-to-end tests.
package demo

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	executor "github.com/hanpama/gqlvalid/internal/executor"
	localrt "github.com/hanpama/gqlvalid/internal/localrt"
	rules "github.com/hanpama/gqlvalid/internal/rules"
	schema "github.com/hanpama/gqlvalid/internal/schema"
	validation "github.com/hanpama/gqlvalid/internal/validation"
)

const SDL = `
type Query {
  users: [User!]!
  user(id: ID!): User
}

type User {
  id: ID!
  firstName: String!
  lastName: String!
  age: Int!
}

type AddUserPayload {
  error: MutationValidationError
  user: User
}

type RenameUserPayload {
  error: String
  user: User
}

type Mutation {
  addUser(firstName: String!, lastName: String!, age: Int!): AddUserPayload!
  renameUser(id: ID!, firstName: String!): RenameUserPayload!
}
`

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age"`
}

// Store keeps users in memory.
type Store struct {
	mu     sync.RWMutex
	nextID int
	users  map[string]*User
}

func NewStore() *Store { return &Store{users: map[string]*User{}} }

func (s *Store) Add(firstName, lastName string, age int) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := &User{ID: strconv.Itoa(s.nextID), FirstName: firstName, LastName: lastName, Age: age}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func (s *Store) Get(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *Store) Rename(id, firstName string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.Errorf("user %s not found", id)
	}
	u.FirstName = firstName
	cp := *u
	return &cp, nil
}

func (s *Store) List() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a < b
	})
	return out
}

// App is the wired demo: schema, validating runtime and backing store.
type App struct {
	Schema  *schema.Schema
	Runtime executor.Runtime
	Store   *Store
}

type config struct {
	logger *zap.Logger
	bus    *eventbus.Bus
}

type Option func(*config)

func WithLogger(l *zap.Logger) Option     { return func(c *config) { c.logger = l } }
func WithEventBus(b *eventbus.Bus) Option { return func(c *config) { c.bus = b } }

// AddUserRules requires a non-blank first name and an age from 18 to 100.
func AddUserRules() *rules.Schema {
	return rules.New(
		rules.Arg("firstName").Trim().Rules("min=1"),
		rules.Arg("lastName").Trim(),
		rules.Arg("age").Rules("gte=18,lte=100"),
	)
}

func New(opts ...Option) (*App, error) {
	c := config{logger: zap.NewNop()}
	for _, o := range opts {
		o(&c)
	}

	sch, err := schema.BuildFromSDL(SDL, validation.PayloadSDL)
	if err != nil {
		return nil, err
	}
	validation.Attach(sch.GetMutationType().GetField("addUser"), validation.Config{
		Schema: validation.Static(AddUserRules()),
	})

	store := NewStore()
	rt := localrt.New().
		Register("Query", "users", func(ctx context.Context, _ any, _ map[string]any) (any, error) {
			return store.List(), nil
		}).
		Register("Query", "user", func(ctx context.Context, _ any, args map[string]any) (any, error) {
			if u, ok := store.Get(args["id"].(string)); ok {
				return u, nil
			}
			return nil, nil
		}).
		Register("Mutation", "addUser", func(ctx context.Context, _ any, args map[string]any) (any, error) {
			u := store.Add(args["firstName"].(string), args["lastName"].(string), args["age"].(int))
			return map[string]any{"user": u}, nil
		}).
		Register("Mutation", "renameUser", func(ctx context.Context, _ any, args map[string]any) (any, error) {
			u, err := store.Rename(args["id"].(string), args["firstName"].(string))
			if err != nil {
				return nil, err
			}
			return map[string]any{"user": u}, nil
		})

	var vopts []validation.Option
	vopts = append(vopts,
		validation.WithLogger(c.logger),
		validation.WithFieldConfig("renameUser", validation.Config{
			Schema: validation.Static(rules.New(rules.Arg("firstName").Trim().Rules("min=1,max=50"))),
		}),
	)
	if c.bus != nil {
		vopts = append(vopts, validation.WithEventBus(c.bus))
	}
	wrapped, err := validation.Apply(rt, sch, vopts...)
	if err != nil {
		return nil, err
	}
	return &App{Schema: sch, Runtime: wrapped, Store: store}, nil
}
