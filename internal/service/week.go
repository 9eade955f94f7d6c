package service

import "time"

// WeekWindow is one reset-aligned WoW week. The reset boundary is
// Tuesday 00:00 server-local time.
type WeekWindow struct {
	Start time.Time
	End   time.Time
}

// CurrentWeek computes the reset week containing now. Start is the
// most recent Tuesday at midnight; End is the following Monday at
// 23:59:59.999.
func CurrentWeek(now time.Time) WeekWindow {
	// Sunday=0 .. Saturday=6, so Tuesday maps to offset 0.
	daysSinceTuesday := (int(now.Weekday()) + 5) % 7

	year, month, day := now.AddDate(0, 0, -daysSinceTuesday).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 6).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)

	return WeekWindow{Start: start, End: end}
}

// mythicPlusVaultTier maps weekly mythic+ run counts onto Great Vault
// reward tiers: 1 run unlocks tier 1, 4 runs tier 2, 8 runs tier 3.
func mythicPlusVaultTier(runs int) int {
	switch {
	case runs >= 8:
		return 3
	case runs >= 4:
		return 2
	case runs >= 1:
		return 1
	default:
		return 0
	}
}

// raidVaultTier maps weekly raid boss kills onto Great Vault reward
// tiers: 3 bosses unlock tier 1, 6 tier 2, 9 tier 3.
func raidVaultTier(bossesKilled int) int {
	switch {
	case bossesKilled >= 9:
		return 3
	case bossesKilled >= 6:
		return 2
	case bossesKilled >= 3:
		return 1
	default:
		return 0
	}
}
