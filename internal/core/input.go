package core

// IntentKind identifies a player command, abstracted from physical key presses.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentMove
	IntentAttack
	IntentBuildTower
	IntentUpgradeTower
	IntentRepairTower
	IntentSummonAlly
)

// String returns a human-readable name for the intent kind.
func (k IntentKind) String() string {
	switch k {
	case IntentNone:
		return "None"
	case IntentMove:
		return "Move"
	case IntentAttack:
		return "Attack"
	case IntentBuildTower:
		return "BuildTower"
	case IntentUpgradeTower:
		return "UpgradeTower"
	case IntentRepairTower:
		return "RepairTower"
	case IntentSummonAlly:
		return "SummonAlly"
	default:
		return "Unknown"
	}
}

// Intent is one player command for a single frame.
// Dir is used by Move, Pos by BuildTower and SummonAlly, Target by tower commands.
type Intent struct {
	Kind   IntentKind
	Dir    Vec2
	Pos    Vec2
	Target uint64
}

// Move returns a movement intent in the given direction.
func Move(dir Vec2) Intent {
	return Intent{Kind: IntentMove, Dir: dir}
}

// Attack returns a melee attack intent.
func Attack() Intent {
	return Intent{Kind: IntentAttack}
}

// BuildTower returns a tower placement intent at pos.
func BuildTower(pos Vec2) Intent {
	return Intent{Kind: IntentBuildTower, Pos: pos}
}

// UpgradeTower returns an upgrade intent for the tower with the given id.
func UpgradeTower(id uint64) Intent {
	return Intent{Kind: IntentUpgradeTower, Target: id}
}

// RepairTower returns a repair intent for the tower with the given id.
func RepairTower(id uint64) Intent {
	return Intent{Kind: IntentRepairTower, Target: id}
}

// SummonAlly returns an ally summon intent at pos.
func SummonAlly(pos Vec2) Intent {
	return Intent{Kind: IntentSummonAlly, Pos: pos}
}

// IntentQueue collects intents between frames.
// Held keys produce one Move per frame; discrete commands are queued once.
type IntentQueue struct {
	move    Vec2
	pending []Intent
}

// SetMove records the movement direction for the next frame.
func (q *IntentQueue) SetMove(dir Vec2) {
	q.move = dir
}

// Push appends a discrete intent.
func (q *IntentQueue) Push(in Intent) {
	q.pending = append(q.pending, in)
}

// Drain returns the queued intents and resets the queue.
// A Move intent, if any, is always first.
func (q *IntentQueue) Drain() []Intent {
	out := make([]Intent, 0, len(q.pending)+1)
	if !q.move.IsZero() {
		out = append(out, Move(q.move))
	}
	out = append(out, q.pending...)
	q.move = Vec2{}
	q.pending = q.pending[:0]
	return out
}

// Len returns the number of queued intents, counting a pending move.
func (q *IntentQueue) Len() int {
	n := len(q.pending)
	if !q.move.IsZero() {
		n++
	}
	return n
}
