package game

import (
	"math"
	"time"

	"github.com/vovakirdan/bastion/internal/config"
)

// DefaultCharacterName is used when no profile name is given.
const DefaultCharacterName = "Thranduil"

// Progression is the persistent character record. Level and experience
// carry across matches; the counters are lifetime totals.
type Progression struct {
	Name           string
	Level          int
	Exp            int // Experience toward the next level
	TotalExp       int
	GamesPlayed    int
	EnemiesKilled  int
	WavesCompleted int
	TowersBuilt    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProgression returns a level 1 record for name.
func NewProgression(name string) Progression {
	if name == "" {
		name = DefaultCharacterName
	}
	return Progression{Name: name, Level: 1}
}

// ExpToNext returns the experience required to advance from level to level+1:
// floor(base * growth^(level-1)).
func ExpToNext(cfg config.ProgressionConfig, level int) int {
	if level < 1 {
		level = 1
	}
	need := int(math.Floor(float64(cfg.BaseExp) * math.Pow(cfg.Growth, float64(level-1))))
	if need < 1 {
		need = 1
	}
	return need
}

// AddExp credits experience, applying as many level-ups as it pays for.
// Overflow carries into the next level. It returns the levels gained.
func (p *Progression) AddExp(cfg config.ProgressionConfig, amount int) int {
	if amount <= 0 {
		return 0
	}
	p.Exp += amount
	p.TotalExp += amount
	gained := 0
	for {
		need := ExpToNext(cfg, p.Level)
		if p.Exp < need {
			break
		}
		p.Exp -= need
		p.Level++
		gained++
	}
	return gained
}
