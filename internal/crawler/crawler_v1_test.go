package crawler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/pkg/log"
)

type fixtureIssue struct {
	number   int
	title    string
	body     string
	author   string
	labels   []string
	comments []fixtureComment
}

type fixtureComment struct {
	author string
	body   string
}

func testLogger(t *testing.T) log.Logger {
	t.Helper()
	logger, err := log.NewCslLogger()
	require.NoError(t, err)
	return logger
}

func testConfig(t *testing.T, apiUrl, outputPath string, maxIssues int) *cfg.Config {
	t.Helper()

	loader, err := cfg.NewMockLoader()
	require.NoError(t, err)
	config, err := loader.Load()
	require.NoError(t, err)

	config.GithubApi.AccessToken = "test-token"
	config.GithubApi.ApiUrl = apiUrl
	config.GithubApi.RequestsPerSecond = 1000
	config.GithubApi.ThrottleDelay = 0
	config.GithubApi.SafetyMarginSec = 0

	config.Crawler.Version = "v1"
	config.Crawler.Targets = []cfg.Target{{Repo: "acme/widgets", Labels: []string{"bug"}}}
	config.Crawler.MaxIssuesPerRepo = maxIssues
	config.Crawler.OutputPath = outputPath
	config.Crawler.PolitenessDelayMs = 0
	config.Crawler.MaxRetries = 3
	config.Crawler.RetryBaseDelaySec = 0
	config.Crawler.RetryMaxDelaySec = 0
	config.Crawler.Workers = 2

	config.Kafka.Brokers = nil
	return config
}

func setRateHeaders(w http.ResponseWriter) {
	w.Header().Set("X-RateLimit-Remaining", "4999")
	w.Header().Set("X-RateLimit-Limit", "5000")
	w.Header().Set("X-RateLimit-Reset", "1750000000")
}

func issuesBody(host string, issues []fixtureIssue) []byte {
	items := make([]map[string]interface{}, 0, len(issues))
	for _, issue := range issues {
		labels := make([]map[string]string, 0, len(issue.labels))
		for _, name := range issue.labels {
			labels = append(labels, map[string]string{"name": name})
		}
		items = append(items, map[string]interface{}{
			"number":       issue.number,
			"title":        issue.title,
			"body":         issue.body,
			"html_url":     fmt.Sprintf("http://%s/issues/%d", host, issue.number),
			"user":         map[string]string{"login": issue.author},
			"labels":       labels,
			"comments_url": fmt.Sprintf("http://%s/comments/%d", host, issue.number),
		})
	}
	data, _ := json.Marshal(map[string]interface{}{
		"total_count":        len(issues),
		"incomplete_results": false,
		"items":              items,
	})
	return data
}

// newFixtureServer dựng một remote giả: một trang search duy nhất cho
// acme/widgets và endpoint comments theo số issue
func newFixtureServer(t *testing.T, issues []fixtureIssue, failComments map[int]bool) (*httptest.Server, *int32) {
	t.Helper()

	byNumber := make(map[int][]fixtureComment, len(issues))
	for _, issue := range issues {
		byNumber[issue.number] = issue.comments
	}

	var searchCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRateHeaders(w)

		switch {
		case strings.HasPrefix(r.URL.Path, "/search/issues"):
			atomic.AddInt32(&searchCalls, 1)
			w.Write(issuesBody(r.Host, issues))

		case strings.HasPrefix(r.URL.Path, "/comments/"):
			number, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/comments/"))
			require.NoError(t, err)
			if failComments[number] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			comments := make([]map[string]interface{}, 0)
			for _, c := range byNumber[number] {
				comments = append(comments, map[string]interface{}{
					"user": map[string]string{"login": c.author},
					"body": c.body,
				})
			}
			data, _ := json.Marshal(comments)
			w.Write(data)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &searchCalls
}

func readRecords(t *testing.T, path string) []model.IssueRecord {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var records []model.IssueRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		record := model.IssueRecord{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	return records
}

func fiveIssues() []fixtureIssue {
	return []fixtureIssue{
		{number: 105, title: "crash on save", body: "it crashes", author: "alice", labels: []string{"bug"},
			comments: []fixtureComment{
				{author: "maintainer", body: "can you share a stack trace?"},
				{author: "alice", body: ""},
				{author: "maintainer", body: "fixed in v1.2.3"},
			}},
		{number: 104, title: "wrong color", body: "button is red", author: "bob", labels: []string{"bug"},
			comments: []fixtureComment{{author: "carol", body: "intended behavior"}}},
		{number: 103, title: "slow startup", body: "takes 30s", author: "carol", labels: []string{"bug"}},
		{number: 102, title: "typo in docs", body: "teh", author: "dave", labels: []string{"bug"}},
		{number: 101, title: "flaky test", body: "sometimes fails", author: "erin", labels: []string{"bug"}},
	}
}

func TestCrawlerV1_MissingTokenIsFatalPrecondition(t *testing.T) {
	t.Parallel()

	config := testConfig(t, "http://127.0.0.1:1", filepath.Join(t.TempDir(), "out.jsonl"), 3)
	config.GithubApi.AccessToken = ""

	_, err := NewCrawlerV1(testLogger(t), config)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestCrawlerV1_CapRespectedAndOrderPreserved(t *testing.T) {
	t.Parallel()

	server, _ := newFixtureServer(t, fiveIssues(), nil)
	outputPath := filepath.Join(t.TempDir(), "out.jsonl")
	config := testConfig(t, server.URL, outputPath, 3)

	c, err := NewCrawlerV1(testLogger(t), config)
	require.NoError(t, err)
	require.True(t, c.Crawl())

	records := readRecords(t, outputPath)
	require.Len(t, records, 3)

	// Thứ tự ghi đúng thứ tự trang trả về
	assert.Equal(t, 105, records[0].IssueNumber)
	assert.Equal(t, 104, records[1].IssueNumber)
	assert.Equal(t, 103, records[2].IssueNumber)

	// Comment rỗng bị loại, thứ tự còn lại giữ nguyên
	require.Len(t, records[0].Comments, 2)
	assert.Equal(t, "can you share a stack trace?", records[0].Comments[0].Body)
	assert.Equal(t, "fixed in v1.2.3", records[0].Comments[1].Body)
	assert.Equal(t, model.CommentsFetchOk, records[0].CommentsFetchStatus)

	assert.Equal(t, "acme/widgets", records[0].Repo)
	assert.Equal(t, "alice", records[0].IssueAuthor)
	assert.Equal(t, []string{"bug"}, records[0].IssueLabels)
}

func TestCrawlerV1_SecondRunPersistsNothing(t *testing.T) {
	t.Parallel()

	server, searchCalls := newFixtureServer(t, fiveIssues(), nil)
	outputPath := filepath.Join(t.TempDir(), "out.jsonl")
	config := testConfig(t, server.URL, outputPath, 3)

	c, err := NewCrawlerV1(testLogger(t), config)
	require.NoError(t, err)
	require.True(t, c.Crawl())
	require.Len(t, readRecords(t, outputPath), 3)

	callsAfterFirstRun := atomic.LoadInt32(searchCalls)

	// Run thứ hai: repo đã đạt quota nên bị bỏ qua hoàn toàn
	c2, err := NewCrawlerV1(testLogger(t), config)
	require.NoError(t, err)
	require.True(t, c2.Crawl())

	assert.Len(t, readRecords(t, outputPath), 3)
	assert.Equal(t, callsAfterFirstRun, atomic.LoadInt32(searchCalls))
}

func TestCrawlerV1_ResumeSkipsAlreadySeenIssues(t *testing.T) {
	t.Parallel()

	server, _ := newFixtureServer(t, fiveIssues(), nil)
	outputPath := filepath.Join(t.TempDir(), "out.jsonl")
	config := testConfig(t, server.URL, outputPath, 3)

	// Giả lập run trước bị ngắt sau khi ghi được một bản ghi
	seed := model.IssueRecord{Repo: "acme/widgets", IssueNumber: 105, CommentsFetchStatus: model.CommentsFetchOk}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(outputPath, append(data, '\n'), 0o644))

	c, err := NewCrawlerV1(testLogger(t), config)
	require.NoError(t, err)
	require.True(t, c.Crawl())

	records := readRecords(t, outputPath)
	require.Len(t, records, 3)

	// Issue 105 không bị ghi trùng, run mới chỉ bổ sung 104 và 103
	assert.Equal(t, 105, records[0].IssueNumber)
	assert.Equal(t, 104, records[1].IssueNumber)
	assert.Equal(t, 103, records[2].IssueNumber)
}

func TestCrawlerV1_DegradedCommentFetchDoesNotAbort(t *testing.T) {
	t.Parallel()

	server, _ := newFixtureServer(t, fiveIssues(), map[int]bool{105: true})
	outputPath := filepath.Join(t.TempDir(), "out.jsonl")
	config := testConfig(t, server.URL, outputPath, 2)

	c, err := NewCrawlerV1(testLogger(t), config)
	require.NoError(t, err)
	require.True(t, c.Crawl())

	records := readRecords(t, outputPath)
	require.Len(t, records, 2)

	assert.Empty(t, records[0].Comments)
	assert.Equal(t, model.CommentsFetchDegraded, records[0].CommentsFetchStatus)

	assert.Len(t, records[1].Comments, 1)
	assert.Equal(t, model.CommentsFetchOk, records[1].CommentsFetchStatus)
}

func TestCrawlerV1_RetryExhaustedAbandonsRepo(t *testing.T) {
	t.Parallel()

	var searchCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRateHeaders(w)
		atomic.AddInt32(&searchCalls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	outputPath := filepath.Join(t.TempDir(), "out.jsonl")
	config := testConfig(t, server.URL, outputPath, 3)

	c, err := NewCrawlerV1(testLogger(t), config)
	require.NoError(t, err)
	assert.False(t, c.Crawl())

	assert.Empty(t, readRecords(t, outputPath))
	assert.Equal(t, int32(config.Crawler.MaxRetries), atomic.LoadInt32(&searchCalls))
}

func TestCrawlRepo_RetryExhaustedErrorIsDistinguishable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRateHeaders(w)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	config := testConfig(t, server.URL, filepath.Join(t.TempDir(), "out.jsonl"), 3)
	deps := newCrawlDeps(testLogger(t), config)

	ledger := emptyLedger(t)
	_, err := crawlRepo(context.Background(), deps, config.Crawler.Targets[0], ledger, func(*model.IssueRecord) error {
		t.Fatal("no record should be appended")
		return nil
	})
	require.True(t, errors.Is(err, ErrRetryExhausted))
}
