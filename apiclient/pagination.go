package apiclient

// Skip converts a 1-based page number into the skip offset the backends
// expect alongside limit.
func Skip(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
