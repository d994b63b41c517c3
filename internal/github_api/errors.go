package githubapi

import "fmt"

// RetryableFetchError là lỗi transport hoặc response không phải 2xx khi gọi
// trang tìm kiếm. Caller có thể retry nguyên request với cùng URL.
type RetryableFetchError struct {
	URL    string
	Status string
	Err    error
}

func (e *RetryableFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

func (e *RetryableFetchError) Unwrap() error {
	return e.Err
}
