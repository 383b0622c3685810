package util

// Offset converts a 1-based page into a row offset. Inputs are assumed
// validated (page >= 1, limit >= 1).
func Offset(page, limit int) int {
	return (page - 1) * limit
}

func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
