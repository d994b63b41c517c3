package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "issue-crawler",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "issue_crawler",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{},
			Producer: KafkaProducer{
				TopicIssue: "issues",
			},
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			ApiUrl:            "https://api.github.com",
			PerPage:           100,
			RequestsPerSecond: 10,
			ThrottleDelay:     100,
			TimeoutSec:        30,
			RateLimitFloor:    20,
			SafetyMarginSec:   10,
		},

		// Crawler
		Crawler: Crawler{
			Version: "v1",
			Targets: []Target{
				{Repo: "microsoft/vscode", Labels: []string{"bug", "question", "help-wanted", "bug-report"}},
				{Repo: "facebook/react", Labels: []string{"Type: Bug", "Type: Question", "good first issue", "help wanted"}},
				{Repo: "kubernetes/kubernetes", Labels: []string{"kind/bug", "kind/question", "good first issue", "help wanted"}},
			},
			MaxIssuesPerRepo:  100,
			OutputPath:        "issue_diagnosis_dataset.jsonl",
			PolitenessDelayMs: 1000,
			MaxRetries:        5,
			RetryBaseDelaySec: 2,
			RetryMaxDelaySec:  60,
			Workers:           3,
		},

		// Dataset
		Dataset: Dataset{
			MinComments:   2,
			MaxBodyLength: 3000,
			GoldenSamples: 75,
		},
	}, nil
}
