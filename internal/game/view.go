package game

import (
	"math"

	"github.com/vovakirdan/bastion/internal/core"
)

// Sprite kinds used in SpriteKey.Kind.
const (
	SpritePlayer     = "player"
	SpriteOrc        = "orc"
	SpriteUruk       = "uruk"
	SpriteTower      = "tower"
	SpriteAlly       = "ally"
	SpriteArrow      = "arrow"
	SpriteEnemyArrow = "enemy_arrow"
	SpriteCastle     = "castle"
)

// SpriteKey identifies one appearance of an entity.
type SpriteKey struct {
	Kind   string
	Level  int // Tower tier; zero for everything else
	Facing Facing
	Frame  int
}

// Sprite is a resolved appearance: a glyph and its color.
type Sprite struct {
	Glyph rune
	Color core.Color
	Label string
}

// SpriteResolver maps sprite keys to appearances. Resolve returns false when
// it has nothing for the key, in which case the built-in fallback is used.
type SpriteResolver interface {
	Resolve(key SpriteKey) (Sprite, bool)
}

type resolvedSprite struct {
	sprite   Sprite
	fallback bool
}

var fallbackGlyphs = map[string]Sprite{
	SpritePlayer:     {Glyph: '@', Color: core.ColorBrightGreen, Label: "Thranduil"},
	SpriteOrc:        {Glyph: 'o', Color: core.ColorRed, Label: "Orc"},
	SpriteUruk:       {Glyph: 'U', Color: core.ColorBrightRed, Label: "Uruk-hai"},
	SpriteTower:      {Glyph: 'T', Color: core.ColorYellow, Label: "Tower"},
	SpriteAlly:       {Glyph: 'e', Color: core.ColorCyan, Label: "Elf"},
	SpriteArrow:      {Glyph: '*', Color: core.ColorBrightWhite, Label: "Arrow"},
	SpriteEnemyArrow: {Glyph: '\'', Color: core.ColorOrange, Label: "Arrow"},
	SpriteCastle:     {Glyph: '#', Color: core.ColorGray, Label: "Castle"},
}

// FallbackSprite returns the built-in appearance for a key. It never fails:
// unknown kinds get a magenta '?'. Towers show their tier digit.
func FallbackSprite(key SpriteKey) Sprite {
	s, ok := fallbackGlyphs[key.Kind]
	if !ok {
		return Sprite{Glyph: '?', Color: core.ColorMagenta, Label: key.Kind}
	}
	if key.Kind == SpriteTower && key.Level >= 1 && key.Level <= 9 {
		s.Glyph = rune('0' + key.Level)
	}
	return s
}

// resolve looks a key up through the resolver, falling back when needed.
// Results are cached for the lifetime of the game.
func (g *Game) resolve(key SpriteKey) Sprite {
	if r, ok := g.spriteCache[key]; ok {
		return r.sprite
	}
	var r resolvedSprite
	if g.sprites != nil {
		if s, ok := g.sprites.Resolve(key); ok && s.Glyph != 0 {
			r.sprite = s
		} else {
			r.fallback = true
		}
	} else {
		r.fallback = true
	}
	if r.fallback {
		r.sprite = FallbackSprite(key)
		if g.sprites != nil {
			g.logger.Warn("sprite missing, using fallback", "kind", key.Kind, "level", key.Level, "facing", key.Facing, "frame", key.Frame)
		}
	}
	g.spriteCache[key] = r
	return r.sprite
}

// Drawable is one entity as the renderer sees it.
type Drawable struct {
	ID         EntityID
	Kind       string
	Pos        core.Vec2
	Radius     float64
	Health     int
	MaxHealth  int
	Sprite     SpriteKey
	Appearance Sprite
}

// HUD holds the scalar values shown around the battlefield.
type HUD struct {
	Character    string
	Essence      int
	Wave         int
	WavePhase    WavePhase
	Countdown    float64
	EnemiesLeft  int
	Score        int
	Elapsed      float64
	CastleHealth int
	CastleMax    int
	PlayerHealth int
	PlayerMax    int
	Downed       float64
	Level        int
	Exp          int
	ExpToNext    int
	Towers       int
	Allies       int

	Selected       EntityID // Selected tower, zero when none
	SelectedLevel  int
	SelectedHealth int
	SelectedMax    int
	UpgradeCost    int // Zero at max level
	RepairCost     int
	TowerCost      int
	AllyCost       int

	Over bool
}

// View is a read-only picture of the match for rendering.
type View struct {
	Width    float64
	Height   float64
	Castle   core.RectF
	Paths    [][]core.Vec2
	Entities []Drawable
	HUD      HUD
}

// View returns the current render view with no tower selected.
func (g *Game) View() View {
	return g.ViewWith(0)
}

// ViewWith returns the render view with selected highlighted in the HUD.
// Entities are ordered castle, towers, allies, enemies, projectiles, player.
func (g *Game) ViewWith(selected EntityID) View {
	bal := g.bal
	v := View{
		Width:  g.field.Bounds.W,
		Height: g.field.Bounds.H,
		Castle: g.castle.Area,
		Paths:  g.field.Paths,
	}
	frame := int(math.Floor(g.elapsed*4)) % 2

	add := func(d Drawable) {
		d.Appearance = g.resolve(d.Sprite)
		v.Entities = append(v.Entities, d)
	}

	add(Drawable{
		Kind:      SpriteCastle,
		Pos:       g.castle.Center(),
		Radius:    math.Min(g.castle.Area.W, g.castle.Area.H) / 2,
		Health:    g.castle.Health,
		MaxHealth: g.castle.MaxHealth,
		Sprite:    SpriteKey{Kind: SpriteCastle},
	})
	for _, t := range g.towers {
		add(Drawable{
			ID: t.ID, Kind: SpriteTower, Pos: t.Pos, Radius: bal.Towers.Radius,
			Health: t.Health, MaxHealth: t.MaxHealth,
			Sprite: SpriteKey{Kind: SpriteTower, Level: t.Level},
		})
	}
	for _, a := range g.allies {
		add(Drawable{
			ID: a.ID, Kind: SpriteAlly, Pos: a.Pos, Radius: bal.Ally.Radius,
			Health: a.Health, MaxHealth: a.MaxHealth,
			Sprite: SpriteKey{Kind: SpriteAlly, Facing: a.Facing, Frame: frame},
		})
	}
	for _, e := range g.enemies {
		kind := SpriteOrc
		if e.Kind == KindUruk {
			kind = SpriteUruk
		}
		add(Drawable{
			ID: e.ID, Kind: kind, Pos: e.Pos, Radius: bal.Enemies.Radius,
			Health: e.Health, MaxHealth: e.MaxHealth,
			Sprite: SpriteKey{Kind: kind, Facing: e.facing(g), Frame: frame},
		})
	}
	for _, p := range g.projectiles {
		kind := SpriteArrow
		if p.Owner == SideEnemy {
			kind = SpriteEnemyArrow
		}
		add(Drawable{
			ID: p.ID, Kind: kind, Pos: p.Pos,
			Sprite: SpriteKey{Kind: kind, Facing: facingFor(p.Dir, FacingRight)},
		})
	}
	if pl := g.player; pl.Downed == 0 {
		pframe := frame
		if pl.Anim > 0 {
			pframe = 2
		}
		add(Drawable{
			ID: pl.ID, Kind: SpritePlayer, Pos: pl.Pos, Radius: bal.Player.Radius,
			Health: pl.Health, MaxHealth: pl.MaxHealth,
			Sprite: SpriteKey{Kind: SpritePlayer, Facing: pl.Facing, Frame: pframe},
		})
	}

	v.HUD = HUD{
		Character:    g.prog.Name,
		Essence:      g.wallet.Balance(),
		Wave:         g.wave.Number,
		WavePhase:    g.wave.Phase,
		EnemiesLeft:  g.wave.EnemiesLeft(),
		Score:        g.score,
		Elapsed:      g.elapsed,
		CastleHealth: g.castle.Health,
		CastleMax:    g.castle.MaxHealth,
		PlayerHealth: g.player.Health,
		PlayerMax:    g.player.MaxHealth,
		Downed:       g.player.Downed,
		Level:        g.prog.Level,
		Exp:          g.prog.Exp,
		ExpToNext:    ExpToNext(bal.Progression, g.prog.Level),
		Towers:       len(g.towers),
		Allies:       len(g.allies),
		TowerCost:    bal.Towers.Cost,
		AllyCost:     bal.Ally.Cost,
		Over:         g.over,
	}
	if g.wave.Phase == PhaseCountdown {
		v.HUD.Countdown = g.wave.Delay
	}
	if t := g.towerByID(selected); t != nil {
		v.HUD.Selected = t.ID
		v.HUD.SelectedLevel = t.Level
		v.HUD.SelectedHealth = t.Health
		v.HUD.SelectedMax = t.MaxHealth
		v.HUD.RepairCost = t.repairCost(bal.Towers)
		if cost, ok := t.upgradeCost(bal.Towers); ok {
			v.HUD.UpgradeCost = cost
		}
	}
	return v
}

// facing derives an enemy's facing from where it is heading.
func (e *Enemy) facing(g *Game) Facing {
	var target core.Vec2
	switch {
	case e.State == StateAttackingTower:
		if t := g.towerByID(e.Target); t != nil {
			target = t.Pos
		} else {
			target = g.castle.Center()
		}
	case e.State == StateMoving && e.Waypoint < len(g.field.Paths[e.Path]):
		target = g.field.Paths[e.Path][e.Waypoint]
	default:
		target = g.castle.Center()
	}
	return facingFor(target.Sub(e.Pos), FacingDown)
}

// TowerIDs returns the live tower ids in build order, for selection cycling.
func (g *Game) TowerIDs() []EntityID {
	ids := make([]EntityID, len(g.towers))
	for i, t := range g.towers {
		ids[i] = t.ID
	}
	return ids
}
