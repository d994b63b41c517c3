// Budget theo dõi quota rate limit mà GitHub API trả về trong header của mỗi response.
// Khác với RateLimiter (giới hạn cục bộ theo giây), Budget quyết định tạm dừng toàn bộ
// crawler khi số request còn lại xuống dưới ngưỡng an toàn.

package limiter

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/thep200/issue-crawler/pkg/log"
)

// Snapshot là thông tin rate limit lấy từ header của response gần nhất
type Snapshot struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// SnapshotFromHeader đọc telemetry rate limit từ header X-RateLimit-*.
// Header thiếu hoặc sai định dạng được coi như remaining = 0 để an toàn tối đa.
func SnapshotFromHeader(h http.Header) Snapshot {
	remaining, errRemaining := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	limit, errLimit := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	resetUnix, errReset := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)

	if errRemaining != nil || errLimit != nil || errReset != nil {
		return Snapshot{Remaining: 0}
	}

	return Snapshot{
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   time.Unix(resetUnix, 0),
	}
}

type Budget struct {
	Logger log.Logger
	Floor  int
	Margin time.Duration

	mu    sync.Mutex
	last  Snapshot
	now   func() time.Time
	sleep func(time.Duration)
}

func NewBudget(logger log.Logger, floor int, margin time.Duration) *Budget {
	return &Budget{
		Logger: logger,
		Floor:  floor,
		Margin: margin,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// SetClock thay đồng hồ và hàm sleep, dùng cho test với fake clock
func (b *Budget) SetClock(now func() time.Time, sleep func(time.Duration)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.sleep = sleep
}

// Last trả về snapshot gần nhất đã quan sát
func (b *Budget) Last() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Gate ghi nhận snapshot mới và tạm dừng caller nếu quota sắp cạn.
// Giữ lock trong lúc đợi để các worker khác cũng bị chặn lại cho đến khi quota reset.
func (b *Budget) Gate(ctx context.Context, s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = s
	if s.Remaining >= b.Floor {
		return
	}

	wait := s.ResetAt.Sub(b.now())
	if wait < 0 {
		wait = 0
	}
	wait += b.Margin

	b.Logger.Warn(ctx, "Rate limit sắp cạn (%d/%d). Đợi %v đến %s",
		s.Remaining, s.Limit, wait.Round(time.Second), s.ResetAt.Format(time.RFC3339))
	b.sleep(wait)
}
