package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	VendorsDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	ImportInterval    int
	ImportStartDate   string
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
