package querycache

// Key identifies one cacheable list read. Two keys are equal iff every
// component matches; equality is cache identity.
type Key struct {
	Collection  string
	Page        int
	SortBy      string
	Order       string
	Query       string
	Fingerprint string
}
