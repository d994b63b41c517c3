// Gói githubapi cung cấp một caller cho GitHub API, để lấy dữ liệu issue.
// Nó gọi search API để tìm issue đã đóng theo label và gọi sub-resource
// comments của từng issue. Xác thực bằng access token nếu được cung cấp.
// Caller chịu trách nhiệm thực hiện yêu cầu API, không retry.

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/limiter"
	"github.com/thep200/issue-crawler/pkg/log"
)

type Caller struct {
	Logger log.Logger
	Config *cfg.Config
	client *http.Client
}

// Mapping response
type RawSearchResponse struct {
	TotalCount        int             `json:"total_count"`
	IncompleteResults bool            `json:"incomplete_results"`
	Items             []IssueResponse `json:"items"`
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	timeout := config.GithubApi.TimeoutSec
	if timeout <= 0 {
		timeout = 30
	}
	return &Caller{
		Logger: logger,
		Config: config,
		client: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// QuoteLabels đặt các label chứa khoảng trắng trong dấu nháy kép rồi nối lại
// bằng dấu phẩy thành một mệnh đề label: duy nhất. Các label trong cùng một
// mệnh đề được search API hiểu theo kiểu AND (giữ nguyên hành vi cũ).
func QuoteLabels(labels []string) string {
	quoted := make([]string, 0, len(labels))
	for _, label := range labels {
		if strings.Contains(label, " ") {
			quoted = append(quoted, fmt.Sprintf("%q", label))
		} else {
			quoted = append(quoted, label)
		}
	}
	return strings.Join(quoted, ",")
}

// Khoảng trắng và dấu nháy bên trong label phải được percent-encode, nếu không
// URL chứa ký tự thô sẽ bị server từ chối ngay trên request line. Dấu + ngăn
// cách các mệnh đề được giữ nguyên.
var searchQueryEscaper = strings.NewReplacer(" ", "%20", `"`, "%22")

// SearchURL dựng URL trang đầu tiên của truy vấn tìm kiếm issue đã đóng
// theo repository và bộ label, sắp xếp theo thời gian cập nhật giảm dần
func (c *Caller) SearchURL(repo string, labels []string) string {
	perPage := c.Config.GithubApi.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	query := fmt.Sprintf("repo:%s+is:issue+is:closed+label:%s", repo, QuoteLabels(labels))
	baseUrl := strings.TrimRight(c.Config.GithubApi.ApiUrl, "/")
	return fmt.Sprintf("%s/search/issues?q=%s&sort=updated&order=desc&per_page=%d",
		baseUrl, searchQueryEscaper.Replace(query), perPage)
}

func (c *Caller) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
	}
	return req, nil
}

// CallSearch gọi một trang của search API và trả về các issue của trang đó,
// URL trang kế tiếp lấy từ header Link (rỗng nếu không còn) và snapshot rate limit.
// Lỗi transport hoặc status không phải 2xx trả về dưới dạng *RetryableFetchError.
func (c *Caller) CallSearch(ctx context.Context, pageUrl string) ([]IssueResponse, string, limiter.Snapshot, error) {
	req, err := c.newRequest(ctx, pageUrl)
	if err != nil {
		return nil, "", limiter.Snapshot{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", limiter.Snapshot{}, &RetryableFetchError{URL: pageUrl, Err: err}
	}
	defer resp.Body.Close()

	snapshot := limiter.SnapshotFromHeader(resp.Header)
	if resp.StatusCode != http.StatusOK {
		return nil, "", snapshot, &RetryableFetchError{URL: pageUrl, Status: resp.Status}
	}

	// Giải mã phản hồi
	rawResponse := &RawSearchResponse{}
	if err := json.NewDecoder(resp.Body).Decode(rawResponse); err != nil {
		return nil, "", snapshot, &RetryableFetchError{URL: pageUrl, Err: err}
	}

	c.Logger.Info(ctx, "Total issues found: %d, items received: %d, rate remaining: %d",
		rawResponse.TotalCount, len(rawResponse.Items), snapshot.Remaining)

	return rawResponse.Items, parseNextLink(resp.Header.Get("Link")), snapshot, nil
}

// CallComments gọi sub-resource comments của một issue
func (c *Caller) CallComments(ctx context.Context, commentsUrl string) ([]CommentResponse, limiter.Snapshot, error) {
	req, err := c.newRequest(ctx, commentsUrl)
	if err != nil {
		return nil, limiter.Snapshot{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, limiter.Snapshot{}, err
	}
	defer resp.Body.Close()

	snapshot := limiter.SnapshotFromHeader(resp.Header)
	if resp.StatusCode != http.StatusOK {
		return nil, snapshot, fmt.Errorf("cannot received response: %v", resp.Status)
	}

	var comments []CommentResponse
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, snapshot, err
	}

	return comments, snapshot, nil
}

// parseNextLink lấy URL của trang kế tiếp từ header Link dạng
// <https://...&page=2>; rel="next", <https://...&page=10>; rel="last"
func parseNextLink(header string) string {
	if header == "" {
		return ""
	}

	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}

		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
