package interfaces

// Repository aggregates all entity repositories behind one backend
type Repository interface {
	Project() ProjectRepository
	Review() ReviewRepository
	Job() JobRepository
	Report() ReportRepository

	// Close releases backend resources
	Close() error
}
