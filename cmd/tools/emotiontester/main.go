package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/neuroaid/backend/internal/config"
	"github.com/zhouzirui/neuroaid/backend/internal/service/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/response"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run 返回进程退出码，确保 defer 的 svc.Close 在退出前执行。
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("emotiontester", flag.ContinueOnError)
	text := fs.String("text", "", "待分析文本，留空则逐行读取标准输入")
	backendName := fs.String("backend", "", "覆盖 EMOTION_BACKEND (keyword, onnx, ark, openai, gemini)")
	timeout := fs.Duration("timeout", 45*time.Second, "单次请求超时时间")
	asJSON := fs.Bool("json", false, "以 JSON 输出结果")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("配置加载失败: %v", err)
		return 1
	}
	if *backendName != "" {
		cfg.Emotion.Backend = strings.ToLower(*backendName)
	}
	cfg.Emotion.Timeout = *timeout

	ctx := context.Background()
	backend, err := emotion.NewBackend(ctx, cfg.Emotion)
	if err != nil {
		log.Printf("分类器初始化失败: %v", err)
		return 1
	}
	svc, err := emotion.NewService(backend, emotion.Config{Timeout: cfg.Emotion.Timeout})
	if err != nil {
		log.Printf("分类服务初始化失败: %v", err)
		return 1
	}
	defer svc.Close()

	log.Printf("使用分类器: backend=%s model=%s", svc.Backend(), svc.Model())

	if *text != "" {
		if err := classify(ctx, svc, stdout, *text, *asJSON); err != nil {
			log.Printf("分析失败: %v", err)
			return 1
		}
		return 0
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := classify(ctx, svc, stdout, line, *asJSON); err != nil {
			log.Printf("[WARN] 分析失败: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("读取标准输入失败: %v", err)
		return 1
	}
	return 0
}

type report struct {
	Text     string                 `json:"text"`
	Result   emotion.Classification `json:"result"`
	Response string                 `json:"response"`
	Elapsed  string                 `json:"elapsed"`
}

func classify(ctx context.Context, svc *emotion.Service, w io.Writer, text string, asJSON bool) error {
	start := time.Now()
	result, err := svc.Classify(ctx, text)
	if err != nil {
		return err
	}

	out := report{
		Text:     text,
		Result:   result,
		Response: response.Select(string(result.Top)),
		Elapsed:  time.Since(start).Round(time.Millisecond).String(),
	}
	if asJSON {
		return json.NewEncoder(w).Encode(out)
	}

	fmt.Fprintf(w, "%s\n  emotion: %s (%.2f%%)\n  reply:   %s\n", out.Text, result.Top.Title(), result.TopScore().Percent(), out.Response)
	for _, score := range result.Scores {
		fmt.Fprintf(w, "    %-10s %6.2f%%\n", score.Label, score.Percent())
	}
	return nil
}
