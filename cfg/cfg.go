package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
	}

	KafkaProducer struct {
		TopicIssue string
	}

	GithubApi struct {
		AccessToken       string
		ApiUrl            string
		PerPage           int
		RequestsPerSecond int
		ThrottleDelay     int // ms, thời gian đợi giữa các lần hỏi lại rate limiter cục bộ
		TimeoutSec        int
		RateLimitFloor    int // ngưỡng remaining tối thiểu trước khi tạm dừng theo reset
		SafetyMarginSec   int
	}

	// Target là một repository cần crawl cùng bộ label lọc issue
	Target struct {
		Repo   string
		Labels []string
	}

	Crawler struct {
		Version           string
		Targets           []Target
		MaxIssuesPerRepo  int
		OutputPath        string
		PolitenessDelayMs int
		MaxRetries        int
		RetryBaseDelaySec int
		RetryMaxDelaySec  int
		Workers           int
	}

	Dataset struct {
		MinComments   int
		MaxBodyLength int
		GoldenSamples int
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	Kafka     Kafka
	GithubApi GithubApi
	Crawler   Crawler
	Dataset   Dataset
}
