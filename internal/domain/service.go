package domain

// Service is a catalog entry offered by a provider
type Service struct {
	ID              int64
	ProviderID      int64
	Name            string
	DurationMinutes int
	Price           float64
	IsActive        bool
}
