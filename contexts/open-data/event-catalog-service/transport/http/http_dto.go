package httptransport

// ErrorDTO locates one problem with a request.
type ErrorDTO struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse carries "error" as status for validation failures and the
// numeric HTTP status otherwise.
type ErrorResponse struct {
	Status any        `json:"status"`
	Errors []ErrorDTO `json:"errors"`
}

type UpdatedResponse struct {
	Status string `json:"status"`
}

type HarvestResponse struct {
	Status          string `json:"status"`
	SourcesVisited  int    `json:"sources_visited"`
	SourcesFailed   int    `json:"sources_failed"`
	EventsCreated   int    `json:"events_created"`
	EventsUpdated   int    `json:"events_updated"`
	EventsDiscarded int    `json:"events_discarded"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Representation is an encoded response body ready to be written.
type Representation struct {
	Status      int
	ContentType string
	Body        []byte
	Location    string
	TotalCount  *int
}
