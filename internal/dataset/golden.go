package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"

	"github.com/thep200/issue-crawler/pkg/log"
)

// GoldenEntry là một mẫu đánh giá đã được "người hóa" từ dataset fine-tuning
type GoldenEntry struct {
	Id          string `json:"id"`
	Category    string `json:"category"`
	SourceFile  string `json:"source_file"`
	Context     string `json:"context"`
	Question    string `json:"question"`
	IdealAnswer string `json:"ideal_answer"`
}

type Golden struct {
	Logger  log.Logger
	Samples int
	rng     *rand.Rand
}

func NewGolden(logger log.Logger, samples int, seed int64) *Golden {
	if samples <= 0 {
		samples = 75
	}
	return &Golden{
		Logger:  logger,
		Samples: samples,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

var (
	bracketRe     = regexp.MustCompile(`\[.*?\]`)
	parenRe       = regexp.MustCompile(`\(.*?\)`)
	titlePrefixRe = regexp.MustCompile(`(?i)^(Bug|Issue|Feature|Error):\s*`)

	saidRe    = regexp.MustCompile(`User '.*?' said:`)
	detailsRe = regexp.MustCompile(`(?s)<details>.*?</details>`)
	triageRe  = regexp.MustCompile(`(?s)This issue is currently awaiting triage\..*?(\n|$)`)
	sigRe     = regexp.MustCompile(`/sig .*?(\n|$)`)
	areaRe    = regexp.MustCompile(`/area .*?(\n|$)`)
	assignRe  = regexp.MustCompile(`/assign.*?(\n|$)`)
	closeRe   = regexp.MustCompile(`/close.*?(\n|$)`)
	blankRe   = regexp.MustCompile(`\n\s*\n`)

	repoRe  = regexp.MustCompile(`in the '(.*?)' repository`)
	titleRe = regexp.MustCompile(`titled '(.*?)'`)
)

// CleanTitle bỏ các tiền tố/hậu tố thường gặp trong tiêu đề issue
func CleanTitle(title string) string {
	title = bracketRe.ReplaceAllString(title, "")
	title = parenRe.ReplaceAllString(title, "")
	title = titlePrefixRe.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// CleanAnswer bỏ boilerplate của formatter, block <details> và các lệnh
// triage của bot để câu trả lời đọc tự nhiên hơn
func CleanAnswer(text string) string {
	text = strings.ReplaceAll(text, "The issue was addressed with the following discussion:", "")
	text = saidRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "---", "")
	text = detailsRe.ReplaceAllString(text, "")
	text = triageRe.ReplaceAllString(text, "")
	text = sigRe.ReplaceAllString(text, "")
	text = areaRe.ReplaceAllString(text, "")
	text = assignRe.ReplaceAllString(text, "")
	text = closeRe.ReplaceAllString(text, "")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// DetermineCategory phân loại thô dựa trên từ khóa
func DetermineCategory(text string) string {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, "error", "fail", "crash", "bug", "panic", "broken", "exception"):
		return "troubleshooting"
	case containsAny(text, "add", "feature", "support", "request", "new"):
		return "feature_request"
	case containsAny(text, "doc", "manual", "guide"):
		return "documentation"
	case containsAny(text, "security", "vulnerability"):
		return "security"
	default:
		return "general"
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func extractRepo(instruction string) string {
	if m := repoRe.FindStringSubmatch(instruction); m != nil {
		return m[1]
	}
	return "the repository"
}

func extractTitle(instruction string) string {
	if m := titleRe.FindStringSubmatch(instruction); m != nil {
		return m[1]
	}
	return "Unknown Issue"
}

// HumanizeQuestion biến tiêu đề issue thành một câu hỏi tự nhiên
func (g *Golden) HumanizeQuestion(title, repo string) string {
	templates := []string{
		fmt.Sprintf("I'm running into an issue with %s: %s. How can I fix this?", repo, title),
		fmt.Sprintf("Has anyone seen '%s' in %s? I can't figure out the cause.", title, repo),
		fmt.Sprintf("What is the resolution for '%s'?", title),
		fmt.Sprintf("I'm getting an error: %s. Is there a known workaround?", title),
		fmt.Sprintf("In %s, %s. Any ideas why?", repo, title),
		fmt.Sprintf("Help needed with %s. %s.", repo, title),
		fmt.Sprintf("I'm seeing '%s'. Is this a known bug in %s?", title, repo),
		fmt.Sprintf("Could you explain how to resolve '%s'?", title),
	}
	return templates[g.rng.Intn(len(templates))]
}

// Entry dựng một mẫu golden từ một cặp huấn luyện, trả về false nếu câu
// trả lời rỗng sau khi làm sạch
func (g *Golden) Entry(index int, pair TrainingPair) (GoldenEntry, bool) {
	repo := extractRepo(pair.Instruction)
	rawTitle := extractTitle(pair.Instruction)
	cleanedTitle := CleanTitle(rawTitle)
	category := DetermineCategory(pair.Instruction + " " + rawTitle)

	answer := CleanAnswer(pair.Response)
	if answer == "" {
		return GoldenEntry{}, false
	}

	context := fmt.Sprintf("Repository: %s\nTitle: %s\n\n%s\n\nResolution/Discussion:\n%s",
		repo, rawTitle, pair.Instruction, pair.Response)

	return GoldenEntry{
		Id:          fmt.Sprintf("gen_nat_%03d", index),
		Category:    category,
		SourceFile:  fmt.Sprintf("%s_issue.json", strings.ReplaceAll(repo, "/", "_")),
		Context:     context,
		Question:    g.HumanizeQuestion(cleanedTitle, repo),
		IdealAnswer: answer,
	}, true
}

// Run lấy mẫu ngẫu nhiên từ dataset fine-tuning và ghi golden set dạng JSON
func (g *Golden) Run(inputPath, outputPath string) (int, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	var pairs []TrainingPair
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		pair := TrainingPair{}
		if err := json.Unmarshal(line, &pair); err != nil {
			continue
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	g.rng.Shuffle(len(pairs), func(i, j int) {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	})
	if len(pairs) > g.Samples {
		pairs = pairs[:g.Samples]
	}

	entries := make([]GoldenEntry, 0, len(pairs))
	for i, pair := range pairs {
		if entry, ok := g.Entry(i, pair); ok {
			entries = append(entries, entry)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write golden set: %w", err)
	}

	return len(entries), nil
}
