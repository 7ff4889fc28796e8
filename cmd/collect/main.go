// Command collect is the terminal front-end of the collection pipeline.
//
//	collect download -start 2023-01-01 -end 2023-01-10 -commodities 금,은 -features 가격,거래량
//	collect list
//	collect delete
//	collect indicators
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"FinDataCollector/internal/collector"
	"FinDataCollector/internal/config"
	"FinDataCollector/internal/logging"
	"FinDataCollector/internal/model"
	"FinDataCollector/internal/recorder"
	"FinDataCollector/internal/report"
	"FinDataCollector/internal/service"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: collect <download|list|delete|indicators> [flags]")
}

func run(args []string, out io.Writer) int {
	if len(args) == 0 {
		usage(out)
		return 2
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(out, "❌ load config: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "❌ config: %v\n", err)
		return 1
	}

	// the report goes to stdout; logs only surface warnings unless asked for
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logger.SetOutput(os.Stderr)
	if os.Getenv("LOG_LEVEL") == "" {
		logger.SetLevel(logrus.WarnLevel)
	}

	svc, closeFn, err := newService(cfg, logger)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return 1
	}
	defer closeFn()

	switch args[0] {
	case "download":
		return download(svc, args[1:], out)
	case "list":
		files, err := svc.ListFiles()
		if err != nil {
			fmt.Fprintf(out, "❌ 파일 목록 조회 중 오류: %v\n", err)
			return 1
		}
		fmt.Fprint(out, report.FormatFiles(files))
	case "delete":
		rep, err := svc.DeleteFiles()
		if err != nil {
			fmt.Fprintf(out, "❌ 파일 삭제 중 오류: %v\n", err)
			return 1
		}
		fmt.Fprint(out, report.FormatDelete(rep))
	case "indicators":
		fmt.Fprint(out, report.FormatIndicators(svc.Indicators()))
	default:
		usage(out)
		return 2
	}
	return 0
}

func newService(cfg *config.Config, logger *logrus.Logger) (*service.Service, func(), error) {
	fetcher, err := collector.NewFetcher(
		cfg.DataSource.Provider,
		cfg.DataSource.BaseURL,
		cfg.Proxy,
		time.Duration(cfg.DataSource.TimeoutSeconds)*time.Second,
		cfg.DataSource.RequestsPerSecond,
	)
	if err != nil {
		return nil, nil, err
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if path := cfg.SQLitePath(); path != "" {
		sr, err := recorder.NewSQLiteRecorder(path, logger)
		if err != nil {
			logger.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	svc := service.New(fetcher, cfg.DataSource.Concurrency, rec, logger, service.Options{
		DataDir:        cfg.Export.DataDir,
		MaxChartPoints: cfg.Export.MaxChartPoints,
		PreviewRows:    cfg.PreviewRows(),
	})
	return svc, func() { rec.Close() }, nil
}

func download(svc *service.Service, args []string, out io.Writer) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(out)
	today := time.Now().Format("2006-01-02")
	start := fs.String("start", time.Now().AddDate(0, -1, 0).Format("2006-01-02"), "start date (YYYY-MM-DD)")
	end := fs.String("end", today, "end date (YYYY-MM-DD)")
	commodities := fs.String("commodities", "", "comma separated commodity names")
	stocks := fs.String("stocks", "", "comma separated stock or index names")
	exchange := fs.String("exchange", "", "comma separated exchange rate names")
	features := fs.String("features", "가격", "comma separated fields: 가격, 거래량")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	raw := &model.RawSelection{
		StartDate:   *start,
		EndDate:     *end,
		Commodities: splitList(*commodities),
		Stocks:      splitList(*stocks),
		Exchange:    splitList(*exchange),
		Features:    splitList(*features),
	}
	if raw.Features == nil {
		raw.Features = []string{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := svc.Run(ctx, raw)
	if err != nil {
		var reqErr *model.RequestError
		if errors.As(err, &reqErr) {
			fmt.Fprint(out, report.FormatFailures(reqErr.Failures))
			fmt.Fprintf(out, "\n⚠️ %s\n", reqErr.Error())
		} else {
			fmt.Fprintf(out, "❌ %v\n", err)
		}
		return 1
	}
	fmt.Fprint(out, report.FormatRun(rep))
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
