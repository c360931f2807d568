package dto

// ListFilter contains query parameters for company listing endpoints.
type ListFilter struct {
	Q        string
	Industry string
	Location string
	Sector   string
	Page     int
	PerPage  int
}
