package game

import (
	"testing"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
)

type stubResolver struct {
	sprites map[string]Sprite
	calls   int
}

func (r *stubResolver) Resolve(key SpriteKey) (Sprite, bool) {
	r.calls++
	s, ok := r.sprites[key.Kind]
	return s, ok
}

func findDrawable(v View, kind string) (Drawable, bool) {
	for _, d := range v.Entities {
		if d.Kind == kind {
			return d, true
		}
	}
	return Drawable{}, false
}

func TestFallbackSprite(t *testing.T) {
	tests := []struct {
		key  SpriteKey
		want rune
	}{
		{SpriteKey{Kind: SpritePlayer}, '@'},
		{SpriteKey{Kind: SpriteOrc}, 'o'},
		{SpriteKey{Kind: SpriteUruk}, 'U'},
		{SpriteKey{Kind: SpriteTower, Level: 1}, '1'},
		{SpriteKey{Kind: SpriteTower, Level: 5}, '5'},
		{SpriteKey{Kind: "dragon"}, '?'},
	}
	for _, tt := range tests {
		if got := FallbackSprite(tt.key); got.Glyph != tt.want {
			t.Errorf("FallbackSprite(%+v) = %q, want %q", tt.key, got.Glyph, tt.want)
		}
	}
	if FallbackSprite(SpriteKey{Kind: SpriteOrc, Frame: 1}) != FallbackSprite(SpriteKey{Kind: SpriteOrc}) {
		t.Error("fallback should not depend on frame")
	}
}

func TestViewWithoutResolver(t *testing.T) {
	g := newTestGame(t)
	g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
	v := g.View()

	if v.Entities[0].Kind != SpriteCastle {
		t.Errorf("first drawable = %s, want castle", v.Entities[0].Kind)
	}
	if last := v.Entities[len(v.Entities)-1]; last.Kind != SpritePlayer || last.Appearance.Glyph != '@' {
		t.Errorf("last drawable = %+v, want player '@'", last)
	}
	tw, ok := findDrawable(v, SpriteTower)
	if !ok || tw.Appearance.Glyph != '1' || tw.Sprite.Level != 1 {
		t.Errorf("tower drawable = %+v", tw)
	}
	if v.Width != 1280 || v.Height != 640 || len(v.Paths) != 4 {
		t.Errorf("view bounds %vx%v paths %d", v.Width, v.Height, len(v.Paths))
	}
}

func TestViewUsesResolver(t *testing.T) {
	r := &stubResolver{sprites: map[string]Sprite{
		SpritePlayer: {Glyph: 'T', Color: core.ColorGreen, Label: "elf king"},
		SpriteCastle: {Glyph: 0}, // unusable, falls back
	}}
	g := New(testBalance(), WithSprites(r))

	v := g.View()
	p, _ := findDrawable(v, SpritePlayer)
	if p.Appearance.Glyph != 'T' || p.Appearance.Label != "elf king" {
		t.Errorf("player appearance = %+v, want resolver sprite", p.Appearance)
	}
	c, _ := findDrawable(v, SpriteCastle)
	if c.Appearance.Glyph != '#' {
		t.Errorf("castle appearance = %+v, want fallback", c.Appearance)
	}

	calls := r.calls
	g.View()
	if r.calls != calls {
		t.Errorf("resolver called %d more times for cached keys", r.calls-calls)
	}
}

func TestViewHUD(t *testing.T) {
	g := newTestGame(t, func(b *config.Balance) { b.Waves.FirstDelay = 3 })
	g.Advance(frame, []core.Intent{core.BuildTower(buildSpot)})
	id := g.TowerIDs()[0]
	g.towers[0].TakeDamage(30)

	hud := g.ViewWith(id).HUD
	if hud.Essence != 50 || hud.Score != 20 || hud.Towers != 1 {
		t.Errorf("hud = %+v", hud)
	}
	if hud.CastleHealth != 500 || hud.PlayerHealth != 100 || hud.Level != 1 || hud.ExpToNext != 100 {
		t.Errorf("hud = %+v", hud)
	}
	if hud.WavePhase != PhaseCountdown || hud.Countdown <= 2.9 {
		t.Errorf("countdown = %v phase %v", hud.Countdown, hud.WavePhase)
	}
	if hud.Selected != id || hud.SelectedLevel != 1 || hud.SelectedHealth != 70 ||
		hud.UpgradeCost != 75 || hud.RepairCost != 35 {
		t.Errorf("selected tower hud = %+v", hud)
	}

	if hud := g.ViewWith(999).HUD; hud.Selected != 0 {
		t.Errorf("unknown selection shown: %d", hud.Selected)
	}
}

func TestViewHidesDownedPlayer(t *testing.T) {
	g := newTestGame(t)
	g.player.TakeDamage(1000)
	g.Advance(frame, nil)

	v := g.View()
	if _, ok := findDrawable(v, SpritePlayer); ok {
		t.Error("downed player drawn")
	}
	if v.HUD.Downed <= 0 {
		t.Error("HUD should report respawn timer")
	}
}
