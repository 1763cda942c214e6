package scheduler

// Config holds the schedules of periodic runs. An empty expression disables
// the schedule.
type Config struct {
	// Cron triggers incremental runs, e.g. "0 */6 * * *" or "@every 6h".
	Cron string `mapstructure:"cron" default:"@every 6h"`
	// FullCron triggers full runs that ignore the last run timestamp.
	FullCron string `mapstructure:"full_cron" default:""`
}
