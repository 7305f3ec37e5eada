package game

import "github.com/vovakirdan/bastion/internal/core"

// Event is something notable that happened during a frame.
// It is a sealed interface; only this package defines events.
type Event interface {
	gameEvent()
}

// RejectReason explains why an intent was ignored.
type RejectReason string

const (
	RejectInsufficientEssence RejectReason = "not enough essence"
	RejectInvalidPosition     RejectReason = "cannot build there"
	RejectUnknownTower        RejectReason = "no such tower"
	RejectMaxLevel            RejectReason = "tower at max level"
	RejectFullHealth          RejectReason = "tower at full health"
	RejectDowned              RejectReason = "character is down"
)

// EnemySpawned is emitted when the wave director releases an enemy.
type EnemySpawned struct {
	ID   EntityID
	Kind EnemyKind
	Wave int
	Path int
}

// EnemyKilled is emitted once per enemy death with the rewards paid out.
type EnemyKilled struct {
	ID      EntityID
	Kind    EnemyKind
	Wave    int
	Essence int
	Exp     int
	Score   int
}

// WaveStarted is emitted when a countdown ends and spawning begins.
type WaveStarted struct {
	Wave  int
	Count int
}

// WaveCompleted is emitted when every enemy of a wave has died.
type WaveCompleted struct {
	Wave    int
	Essence int
	Exp     int
	Score   int
}

// TowerBuilt is emitted after a successful placement.
type TowerBuilt struct {
	ID   EntityID
	Pos  core.Vec2
	Cost int
}

// TowerUpgraded is emitted after a successful upgrade.
type TowerUpgraded struct {
	ID    EntityID
	Level int
	Cost  int
}

// TowerRepaired is emitted after a successful repair.
type TowerRepaired struct {
	ID       EntityID
	Restored int
	Cost     int
}

// TowerDestroyed is emitted when a tower's health reaches zero.
type TowerDestroyed struct {
	ID EntityID
}

// AllySummoned is emitted after a successful summon.
type AllySummoned struct {
	ID   EntityID
	Pos  core.Vec2
	Cost int
}

// AllyDied is emitted when an ally's health reaches zero.
type AllyDied struct {
	ID EntityID
}

// LevelUp is emitted when the character gains one or more levels.
type LevelUp struct {
	From int
	To   int
}

// CastleDamaged is emitted whenever the castle takes a hit.
type CastleDamaged struct {
	Amount int
	Health int
}

// PlayerDowned is emitted when the character's health reaches zero.
type PlayerDowned struct {
	Respawn float64
}

// PlayerRespawned is emitted when a downed character returns.
type PlayerRespawned struct{}

// IntentRejected reports an ignored command for HUD feedback.
type IntentRejected struct {
	Intent core.IntentKind
	Reason RejectReason
}

func (EnemySpawned) gameEvent()    {}
func (EnemyKilled) gameEvent()     {}
func (WaveStarted) gameEvent()     {}
func (WaveCompleted) gameEvent()   {}
func (TowerBuilt) gameEvent()      {}
func (TowerUpgraded) gameEvent()   {}
func (TowerRepaired) gameEvent()   {}
func (TowerDestroyed) gameEvent()  {}
func (AllySummoned) gameEvent()    {}
func (AllyDied) gameEvent()        {}
func (LevelUp) gameEvent()         {}
func (CastleDamaged) gameEvent()   {}
func (PlayerDowned) gameEvent()    {}
func (PlayerRespawned) gameEvent() {}
func (IntentRejected) gameEvent()  {}
