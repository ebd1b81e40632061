package room

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/game"
	"github.com/peterkuimelis/hollowstate/internal/log"
	"github.com/peterkuimelis/hollowstate/internal/random"
)

const maxRoomIDRunes = 32

// Options configures every room a registry creates.
type Options struct {
	Game game.Config           // template; Logger and Seed are set per room
	Tick time.Duration         // timer scan interval
	Zap  *zap.Logger           // nil is a no-op
	Seed func() (int64, error) // nil uses random.NewSeed when Game.Seed is 0
}

type entry struct {
	rt     *Runtime
	cancel context.CancelFunc
}

// Registry is the set of live rooms, owned by the process entry point. Rooms
// stop when the registry's context is cancelled.
type Registry struct {
	ctx  context.Context
	opts Options
	zap  *zap.Logger

	mu    sync.RWMutex
	rooms map[string]*entry
	wg    sync.WaitGroup
}

// NewRegistry creates an empty registry bound to ctx.
func NewRegistry(ctx context.Context, opts Options) *Registry {
	if opts.Zap == nil {
		opts.Zap = zap.NewNop()
	}
	if opts.Tick <= 0 {
		opts.Tick = 250 * time.Millisecond
	}
	if opts.Seed == nil {
		opts.Seed = random.NewSeed
	}
	return &Registry{
		ctx:   ctx,
		opts:  opts,
		zap:   opts.Zap,
		rooms: make(map[string]*entry),
	}
}

// GetOrCreate returns the room with the given id, starting it if needed. An
// empty id creates a room under a fresh code. created reports whether a new
// room was started.
func (r *Registry) GetOrCreate(id string) (rt *Runtime, created bool, err error) {
	id = normalizeID(id)
	if id != "" {
		if rt, ok := r.Get(id); ok {
			return rt, false, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = r.newCodeLocked()
	} else if e, ok := r.rooms[id]; ok {
		return e.rt, false, nil
	}

	cfg := r.opts.Game
	cfg.Logger = log.NewMemoryLogger()
	if cfg.Seed == 0 {
		seed, err := r.opts.Seed()
		if err != nil {
			return nil, false, err
		}
		cfg.Seed = seed
	}

	ctx, cancel := context.WithCancel(r.ctx)
	rt = NewRuntime(id, cfg, r.opts.Tick, r.zap)
	e := &entry{rt: rt, cancel: cancel}
	r.rooms[id] = e

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		rt.Run(ctx)
		r.mu.Lock()
		if r.rooms[id] == e {
			delete(r.rooms, id)
		}
		r.mu.Unlock()
	}()

	r.zap.Info("room created", zap.String("room", id))
	return rt, true, nil
}

// Get returns a live room.
func (r *Registry) Get(id string) (*Runtime, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[normalizeID(id)]
	if !ok {
		return nil, false
	}
	return e.rt, true
}

// List returns every live room ordered by id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	out := make([]Summary, 0, len(r.rooms))
	for _, e := range r.rooms {
		out = append(out, e.rt.Summary())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Delete stops a room and removes it at once.
func (r *Registry) Delete(id string) {
	id = normalizeID(id)
	r.mu.Lock()
	e, ok := r.rooms[id]
	if ok {
		delete(r.rooms, id)
	}
	r.mu.Unlock()
	if ok {
		e.cancel()
		r.zap.Info("room deleted", zap.String("room", id))
	}
}

// Wait blocks until every room loop has exited.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) newCodeLocked() string {
	for {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		if _, taken := r.rooms[code]; !taken {
			return code
		}
	}
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	for utf8.RuneCountInString(id) > maxRoomIDRunes {
		_, size := utf8.DecodeLastRuneInString(id)
		id = id[:len(id)-size]
	}
	return id
}
