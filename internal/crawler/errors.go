package crawler

import "errors"

var (
	// ErrMissingToken là lỗi tiền điều kiện: không có token thì không được
	// phép thực hiện bất kỳ network call nào
	ErrMissingToken = errors.New("github access token is not configured")

	// ErrRetryExhausted báo hiệu một trang lỗi liên tục vượt quá số lần retry
	// cho phép, repository đó bị bỏ dở thay vì lặp vô hạn
	ErrRetryExhausted = errors.New("page fetch retries exhausted")
)
