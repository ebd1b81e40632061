package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/hollowstate/internal/log"
)

// fakeClock is a manually advanced clock for deterministic timers.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// --- Test card helpers ---

func actionCard(id, name string, tag Tag, effect EffectKind, prm Params) *Card {
	return &Card{ID: id, Name: name, Type: CardAction, Tag: tag, Effect: effect, EffectKey: effect.String(), Params: prm}
}

func reactionCard(id, name string, effect EffectKind) *Card {
	return &Card{ID: id, Name: name, Type: CardReaction, Tag: TagCoup, Effect: effect, EffectKey: effect.String()}
}

// testCatalog is a small deterministic catalog: plenty of filler cards and a
// single agenda so every round draws the same one.
func testCatalog(agendaID string) *Catalog {
	cat := &Catalog{
		Cards: []CardSpec{
			{Name: "Fundraiser", Type: CardAction, Tag: TagMoney, Effect: "GAIN_M", Params: Params{M: 3}, Copies: 20},
			{Name: "Crisis PR", Type: CardAction, Tag: TagSupport, Effect: "GAIN_T", Params: Params{T: 2}, Copies: 20},
		},
	}
	def := DefaultCatalog()
	a := def.AgendaByID(agendaID)
	if a == nil {
		a = def.Agendas[0]
	}
	cat.Agendas = []*Agenda{a}
	return cat
}

type fixture struct {
	t      *testing.T
	table  *Table
	clock  *fakeClock
	logger *log.MemoryLogger
	ids    []string
}

// newFixture seats n human players on a table using the given agenda.
func newFixture(t *testing.T, n int, agendaID string) *fixture {
	t.Helper()
	clk := newFakeClock()
	logger := log.NewMemoryLogger()
	cfg := DefaultConfig()
	cfg.MaxHumans = 6
	cfg.Seed = 42
	cfg.Clock = clk.Now
	cfg.Logger = logger
	cfg.Catalog = testCatalog(agendaID)

	f := &fixture{t: t, table: NewTable("test", cfg), clock: clk, logger: logger}
	for i := 0; i < n; i++ {
		id, err := f.table.Join(string(rune('A' + i)))
		require.NoError(t, err)
		f.ids = append(f.ids, id)
	}
	return f
}

// started starts the game and normalises the random parts: seat 0 is
// president, everyone is a Normal role with 5/5/3 and an empty hand.
func (f *fixture) started() *fixture {
	f.t.Helper()
	require.NoError(f.t, f.table.Start())
	r := f.table.Room
	for _, p := range r.Players {
		p.Role = RoleNormal
		p.Support, p.Stability, p.Money = 5, 5, 3
		for _, c := range p.Hand {
			r.Actions.Put(c)
		}
		p.Hand = nil
		p.FacedownID = ""
	}
	r.PresidentID = r.Players[0].ID
	r.CurrentID = r.PresidentID
	return f
}

func (f *fixture) p(i int) *Player {
	return f.table.Room.Player(f.ids[i])
}

// give puts a card into a player's hand.
func (f *fixture) give(i int, c *Card) *Card {
	p := f.p(i)
	p.Hand = append(p.Hand, c)
	return c
}

// toAction ends PLOTTING right away.
func (f *fixture) toAction() {
	f.t.Helper()
	f.table.moveToAction()
	require.Equal(f.t, PhaseAction, f.table.Room.Phase)
}

// toVote skips the turn order and opens VOTE.
func (f *fixture) toVote() {
	f.t.Helper()
	f.table.enterPhase(PhaseVote, f.table.cfg.Timings.Vote)
}

// tick advances the clock by d and runs one table tick.
func (f *fixture) tick(d time.Duration) {
	f.clock.Advance(d)
	f.table.Tick()
}

// ally links two players directly.
func (f *fixture) ally(i, j int) {
	f.p(i).AllyID = f.ids[j]
	f.p(j).AllyID = f.ids[i]
}

func (f *fixture) dump() {
	f.t.Logf("Event log:\n%s", log.FormatAll(f.logger.Events()))
}
