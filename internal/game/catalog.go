package game

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Params is the small integer bundle a card effect reads.
type Params struct {
	S   int `yaml:"s" json:"s,omitempty"`
	T   int `yaml:"t" json:"t,omitempty"`
	M   int `yaml:"m" json:"m,omitempty"`
	Min int `yaml:"min" json:"min,omitempty"`
}

// Card is an immutable card instance dealt from the action deck.
type Card struct {
	ID        string
	Name      string
	Type      CardType
	Tag       Tag
	Effect    EffectKind
	EffectKey string // raw key as authored, kept for logging unknown effects
	Params    Params
	Text      string
}

// Delta is a metric change applied to one selected player.
type Delta struct {
	S int `yaml:"s" json:"s,omitempty"`
	T int `yaml:"t" json:"t,omitempty"`
	M int `yaml:"m" json:"m,omitempty"`
}

// Bundle is a declarative agenda effect keyed by target selector.
type Bundle struct {
	All               *Delta `yaml:"all"`
	President         *Delta `yaml:"president"`
	YesVoters         *Delta `yaml:"yes_voters"`
	NoVoters          *Delta `yaml:"no_voters"`
	Richest           *Delta `yaml:"richest"`
	TopSupport        *Delta `yaml:"top_support"`
	Draw              int    `yaml:"draw"`
	ElectionThreshold int    `yaml:"election_threshold"`
	Rebuild           bool   `yaml:"rebuild"`
}

// Agenda is the proposal voted on in a round.
type Agenda struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Text       string  `yaml:"text"`
	CrisisNeed int     `yaml:"crisis_need"`
	CrisisText string  `yaml:"crisis_text"`
	Pass       *Bundle `yaml:"pass"`
	Fail       *Bundle `yaml:"fail"`
	Shortfall  *Bundle `yaml:"shortfall"`
	BotVote    string  `yaml:"bot_vote"`
}

// CardSpec is one catalog line that expands into Copies cards.
type CardSpec struct {
	Name   string   `yaml:"name"`
	Type   CardType `yaml:"type"`
	Tag    Tag      `yaml:"tag"`
	Effect string   `yaml:"effect"`
	Params Params   `yaml:"params"`
	Copies int      `yaml:"copies"`
	Text   string   `yaml:"text"`
}

// Catalog is the full card and agenda content of a game.
type Catalog struct {
	Cards   []CardSpec `yaml:"cards"`
	Agendas []*Agenda  `yaml:"agendas"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Cards) == 0 {
		return fmt.Errorf("catalog has no cards")
	}
	if len(c.Agendas) == 0 {
		return fmt.Errorf("catalog has no agendas")
	}
	for i, spec := range c.Cards {
		if spec.Name == "" {
			return fmt.Errorf("card %d: missing name", i+1)
		}
		if spec.Copies < 0 {
			return fmt.Errorf("card %q: negative copies", spec.Name)
		}
	}
	seen := make(map[string]bool)
	for i, a := range c.Agendas {
		if a == nil || a.ID == "" {
			return fmt.Errorf("agenda %d: missing id", i+1)
		}
		if seen[a.ID] {
			return fmt.Errorf("agenda %q: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if a.Pass == nil {
			a.Pass = &Bundle{}
		}
	}
	return nil
}

// BuildActionDeck expands the card specs into concrete cards with ids C1..Cn.
// A spec with zero copies yields one card.
func (c *Catalog) BuildActionDeck() []*Card {
	var cards []*Card
	for _, spec := range c.Cards {
		n := spec.Copies
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			cards = append(cards, &Card{
				ID:        fmt.Sprintf("C%d", len(cards)+1),
				Name:      spec.Name,
				Type:      spec.Type,
				Tag:       spec.Tag,
				Effect:    ParseEffect(spec.Effect),
				EffectKey: spec.Effect,
				Params:    spec.Params,
				Text:      spec.Text,
			})
		}
	}
	return cards
}

// AgendaByID returns the agenda with the given id, or nil.
func (c *Catalog) AgendaByID(id string) *Agenda {
	for _, a := range c.Agendas {
		if a.ID == id {
			return a
		}
	}
	return nil
}
