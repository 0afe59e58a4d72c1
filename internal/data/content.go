package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/emberline/survivor/internal/world"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed content_schema.json
var contentSchema []byte

const contentSchemaURL = "survivor://content_schema.json"

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Draw returns a uniform integer in [Min, Max].
func (r Range) Draw(rng *rand.Rand) int {
	lo, hi := int(r.Min), int(r.Max)
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Uniform returns a uniform float in [Min, Max).
func (r Range) Uniform(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

type HeroTemplate struct {
	MaxHP        float64   `yaml:"max_hp"`
	Speed        float64   `yaml:"speed"` // units per second
	StartWeapons []string  `yaml:"start_weapons"`
	LevelXP      []float64 `yaml:"level_xp"`
}

// HostileTemplate is one kind of hostile. MinLevel gates it on the clock
// level.
type HostileTemplate struct {
	Name     string  `yaml:"name"`
	HP       float64 `yaml:"hp"`
	Speed    float64 `yaml:"speed"`
	Damage   float64 `yaml:"damage"`
	MinLevel int     `yaml:"min_level"`
}

type ZoneTemplate struct {
	Kind          string  `yaml:"kind"`
	Radius        float64 `yaml:"radius"`
	LethalScale   float64 `yaml:"lethal_scale"`
	DamagePerTick float64 `yaml:"damage_per_tick"`
	TimeScale     float64 `yaml:"time_scale"`
}

type PickupTemplate struct {
	Kind      string  `yaml:"kind"`
	Value     float64 `yaml:"value"` // experience granted or hp healed
	Radius    float64 `yaml:"radius"`
	PerSector Range   `yaml:"per_sector"`
}

type DecorationTemplate struct {
	PerSector int   `yaml:"per_sector"`
	Scale     Range `yaml:"scale"`
}

// Content is the static gameplay table.
type Content struct {
	Hero        HeroTemplate       `yaml:"hero"`
	Hostiles    []HostileTemplate  `yaml:"hostiles"`
	Zones       []ZoneTemplate     `yaml:"zones"`
	Pickups     []PickupTemplate   `yaml:"pickups"`
	Decorations DecorationTemplate `yaml:"decorations"`
}

// LoadContent reads a YAML content table and validates it against the
// embedded schema before decoding.
func LoadContent(path string) (*Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return ParseContent(raw)
}

// ParseContent validates and decodes a YAML content table.
func ParseContent(raw []byte) (*Content, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := validateContent(doc); err != nil {
		return nil, err
	}
	var c Content
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if c.Decorations.Scale.Max == 0 {
		c.Decorations.Scale = Range{Min: 1, Max: 1}
	}
	for i := range c.Zones {
		if c.Zones[i].LethalScale == 0 {
			c.Zones[i].LethalScale = 1
		}
	}
	return &c, nil
}

func validateContent(doc any) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(contentSchemaURL, bytes.NewReader(contentSchema)); err != nil {
		return fmt.Errorf("load content schema: %w", err)
	}
	schema, err := compiler.Compile(contentSchemaURL)
	if err != nil {
		return fmt.Errorf("compile content schema: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON-native types.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("content to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("content to json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}
	return nil
}

// DefaultContent is the built-in table used when no file is configured.
func DefaultContent() *Content {
	return &Content{
		Hero: HeroTemplate{
			MaxHP:        100,
			Speed:        6,
			StartWeapons: []string{"pulse_b"},
			LevelXP:      []float64{100, 200, 300, 500, 800, 1200, 2000, 4000, 6000, 10000},
		},
		Hostiles: []HostileTemplate{
			{Name: "shambler", HP: 100, Speed: 3.6, Damage: 1},
		},
		Zones: []ZoneTemplate{
			{Kind: "pulse_a", Radius: 3, LethalScale: 1, DamagePerTick: 2, TimeScale: 0.01},
			{Kind: "pulse_b", Radius: 3, LethalScale: 1.5, DamagePerTick: 2, TimeScale: 0.5},
		},
		Pickups: []PickupTemplate{
			{Kind: "experience", Value: 20, Radius: 2, PerSector: Range{Min: 1, Max: 3}},
			{Kind: "medkit", Value: 20, Radius: 1, PerSector: Range{Min: 0, Max: 2}},
		},
		Decorations: DecorationTemplate{
			PerSector: 6,
			Scale:     Range{Min: 0.6, Max: 1.4},
		},
	}
}

// Pickup returns the template for a pickup kind.
func (c *Content) Pickup(kind world.PickupKind) (PickupTemplate, bool) {
	for _, p := range c.Pickups {
		if p.Kind == kind.String() {
			return p, true
		}
	}
	return PickupTemplate{}, false
}

// Zone returns the weapon zone built from the template for kind.
func (c *Content) Zone(kind world.ZoneKind) (world.WeaponZone, bool) {
	for _, z := range c.Zones {
		k, ok := world.ParseZoneKind(z.Kind)
		if !ok || k != kind {
			continue
		}
		return world.WeaponZone{
			Kind:          k,
			Radius:        z.Radius,
			LethalScale:   z.LethalScale,
			DamagePerTick: z.DamagePerTick,
			TimeScale:     z.TimeScale,
		}, true
	}
	return world.WeaponZone{}, false
}

// PlayerDefaults builds the hero's reset values. Start weapons without a
// zone template are skipped.
func (c *Content) PlayerDefaults() world.PlayerDefaults {
	d := world.PlayerDefaults{
		MaxHP:   c.Hero.MaxHP,
		Speed:   c.Hero.Speed,
		LevelXP: c.Hero.LevelXP,
	}
	for _, name := range c.Hero.StartWeapons {
		k, ok := world.ParseZoneKind(name)
		if !ok {
			continue
		}
		if z, ok := c.Zone(k); ok {
			d.Weapons = append(d.Weapons, z)
		}
	}
	return d
}

// HostileFor picks a template unlocked at level. Falls back to the first
// template when none qualifies.
func (c *Content) HostileFor(level int, rng *rand.Rand) HostileTemplate {
	var eligible []int
	for i, h := range c.Hostiles {
		if h.MinLevel <= level {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		if len(c.Hostiles) == 0 {
			return HostileTemplate{Name: "hostile", HP: 100, Speed: 3.6, Damage: 1}
		}
		return c.Hostiles[0]
	}
	return c.Hostiles[eligible[rng.Intn(len(eligible))]]
}
