package config

import (
	_ "embed"
)

//go:embed defaults/bastion.yaml
var defaultBalanceYAML []byte

// DefaultYAML returns the embedded default balance file.
func DefaultYAML() []byte {
	return defaultBalanceYAML
}

// DefaultBalance returns the default balance, matching defaults/bastion.yaml.
func DefaultBalance() Balance {
	return Balance{
		Battlefield: BattlefieldConfig{
			Width:          1280,
			Height:         640,
			GridSize:       32,
			PathWidth:      40,
			BuildClearance: 10,
			Paths: []PathConfig{
				{Name: "west", Points: []Point{{0, 160}, {320, 160}, {320, 320}, {576, 320}}},
				{Name: "east", Points: []Point{{1280, 480}, {960, 480}, {960, 320}, {704, 320}}},
				{Name: "north", Points: []Point{{400, 0}, {400, 80}, {640, 80}, {640, 256}}},
				{Name: "south", Points: []Point{{880, 640}, {880, 560}, {640, 560}, {640, 384}}},
			},
		},
		Player: PlayerConfig{
			StartX:         520,
			StartY:         440,
			BaseHealth:     100,
			HealthPerLevel: 2,
			BaseAttack:     35,
			AttackPerLevel: 1,
			Speed:          150,
			AttackRange:    45,
			AttackRate:     1.5,
			AttackAnim:     0.3,
			Knockback:      20,
			RespawnDelay:   3,
			Radius:         16,
		},
		Enemies: EnemiesConfig{
			Orc:            EnemyKindConfig{Name: "Orc", Health: 30, Speed: 50, Damage: 10},
			Uruk:           EnemyKindConfig{Name: "Uruk Hai", Health: 50, Speed: 60, Damage: 15},
			UrukStartWave:  3,
			UrukRatio:      0.3,
			HealthPerWave:  5,
			DamagePerWave:  2,
			DetectionRange: 180,
			AttackRange:    130,
			SiegeDistance:  250,
			AttackRate:     1.5,
			ArrowDamage:    5,
			ContactRange:   24,
			WaypointRadius: 8,
			Radius:         16,
		},
		Towers: TowerConfig{
			Cost:           50,
			Range:          150,
			Radius:         16,
			RepairBase:     25,
			RepairPerLevel: 10,
			RepairFraction: 0.5,
			Tiers: []TowerTier{
				{Level: 1, Health: 100, Damage: 25, FireRate: 1.0},
				{Level: 2, Health: 125, Damage: 33, FireRate: 1.2, UpgradeCost: 75},
				{Level: 3, Health: 150, Damage: 41, FireRate: 1.2, UpgradeCost: 100},
				{Level: 4, Health: 175, Damage: 49, FireRate: 1.4, UpgradeCost: 150},
				{Level: 5, Health: 200, Damage: 57, FireRate: 1.4, UpgradeCost: 200},
			},
		},
		Ally: AllyConfig{
			Cost:           75,
			Health:         60,
			Damage:         20,
			Range:          100,
			AttackRate:     1.5,
			Speed:          80,
			Sight:          250,
			FollowDistance: 120,
			Radius:         14,
		},
		Castle: CastleConfig{X: 576, Y: 256, Width: 128, Height: 128, Health: 500},
		Projectiles: ProjectileConfig{
			ArrowSpeed:      300,
			EnemyArrowSpeed: 250,
			Lifetime:        3,
			HitRadius:       16,
		},
		Waves: WaveConfig{
			FirstDelay:    3,
			Delay:         5,
			SpawnInterval: 1,
			BaseCount:     5,
			CountGrowth:   1.3,
		},
		Economy: EconomyConfig{
			StartingEssence: 100,
			KillEssence:     15,
			WaveEssence:     25,
		},
		Rewards: RewardConfig{
			KillExp:          25,
			WaveExp:          50,
			TowerBuiltExp:    10,
			TowerUpgradedExp: 10,
			KillScore:        10,
			WaveScore:        100,
			TowerBuiltScore:  20,
			UpgradeScore:     15,
			AllyScore:        30,
		},
		Progression: ProgressionConfig{BaseExp: 100, Growth: 1.5},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.5,
			MaxAtWave:    30,
			Scaling:      ScalingConfig{Health: 0.25, Damage: 0.25, Count: 0.2},
		},
	}
}
