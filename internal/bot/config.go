package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Word counts offered when starting a training
	WordCounts []int
	// Number of learners shown by /top
	LeaderboardSize int
	// A support phrase follows every SupportEvery-th answered word when it was correct
	SupportEvery int
	// Periods offered by /stats, in days; 0 means all time
	StatsPeriods []int
	// Largest accepted import file, in bytes
	MaxImportSize int
	// Admin user IDs
	AdminUserIDs []int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		WordCounts:      []int{10, 25, 50},
		LeaderboardSize: 10,
		SupportEvery:    3,
		StatsPeriods:    []int{7, 14, 21, 30, 0},
		MaxImportSize:   5 << 20,
	}
}
