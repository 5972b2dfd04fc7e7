package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ramkansal/leadfang/internal/output"
	"github.com/ramkansal/leadfang/internal/pipeline"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

var version = "1.0.0"

// noColor disables ANSI codes in clr.
var noColor bool

// flags holds all parsed CLI options. Zero values mean "not given".
type flags struct {
	// Query
	keywords   string
	location   string
	maxResults int

	// Search
	provider    string
	searchDelay time.Duration

	// Request
	fetcher         string
	userAgent       string
	timeout         int
	maxResponseSize int
	proxy           string
	headers         []string
	pageDelay       time.Duration

	// Extraction
	translate    bool
	repairJSONLD bool
	block        []string

	// Output
	output  string
	format  string
	silent  bool
	verbose bool
	noColor bool

	// Config files
	configFile string
	envFiles   []string

	// Meta
	check       bool
	showHelp    bool
	showVersion bool
}

func main() {
	ansi := enableANSI()

	f, err := parseFlags(os.Args[1:])
	if err != nil {
		fatal("%v (use --help for usage)", err)
	}
	noColor = f.noColor || !ansi

	if f.showVersion {
		fmt.Printf("leadfang v%s\n", version)
		os.Exit(0)
	}
	if f.showHelp {
		printUsage()
		os.Exit(0)
	}

	if err := pipeline.LoadDotEnv(f.envFiles...); err != nil {
		fatal("%v", err)
	}
	cfg, err := buildConfig(f)
	if err != nil {
		fatal("%v", err)
	}
	if f.check {
		prepareCheck(cfg)
	}
	if cfg.Keywords == "" {
		printUsage()
		os.Exit(1)
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}

	if f.check {
		if err := check(cfg); err != nil {
			fatal("%v", err)
		}
		return
	}
	if err := run(cfg); err != nil {
		fatal("%v", err)
	}
}

func run(cfg *pipeline.Config) error {
	writer, err := output.New(cfg.Format)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	registerSignals(sig)
	go func() {
		<-sig
		fmt.Fprintf(os.Stderr, "\n\n%s Interrupt received, stopping...\n", clr("yellow", "!"))
		cancel()
	}()

	if !cfg.Silent {
		printBanner()
		fmt.Printf("\n  %s %s\n", clr("cyan", "Keywords:"), cfg.Keywords)
		if cfg.Location != "" {
			fmt.Printf("  %s %s\n", clr("cyan", "Location:"), cfg.Location)
		}
		fmt.Printf("  %s %d  %s %s  %s %s  %s %s\n\n",
			clr("dim", "Max:"), cfg.MaxResults,
			clr("dim", "Provider:"), string(cfg.Provider),
			clr("dim", "Fetcher:"), string(cfg.FetcherMode),
			clr("dim", "Format:"), cfg.Format,
		)
	}

	p, err := pipeline.New(ctx, cfg, log, pipeline.WithEventHandler(func(event plugin.Event) {
		if !cfg.Silent {
			handleEvent(event, cfg)
		}
	}))
	if err != nil {
		return eris.Wrap(err, "initialization failed")
	}
	defer p.Close()

	res, err := p.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return eris.Wrap(err, "run failed")
	}

	if len(res.Report.Records) == 0 {
		fmt.Println("  No valid records found")
		return nil
	}

	if err := output.WriteFile(cfg.OutputPath, writer, res.Report); err != nil {
		return err
	}
	if !cfg.Silent {
		fmt.Printf("    Output: %s\n\n", clr("green", cfg.OutputPath))
	}
	return nil
}

// prepareCheck fills in the default query when none was given. No pages are
// fetched during a check so the browser is never started.
func prepareCheck(cfg *pipeline.Config) {
	if cfg.Keywords == "" {
		cfg.Keywords = pipeline.CheckQuery.Keywords
		cfg.Location = pipeline.CheckQuery.Location
	}
	cfg.FetcherMode = pipeline.FetcherHTTP
}

// check verifies the search credentials with one small query.
func check(cfg *pipeline.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()

	p, err := pipeline.New(ctx, cfg, log)
	if err != nil {
		return eris.Wrap(err, "initialization failed")
	}
	defer p.Close()

	if !cfg.Silent {
		fmt.Printf("\n  %s Checking %s with %q...\n", clr("cyan", "●"), cfg.Provider, strings.TrimSpace(cfg.Keywords+" "+cfg.Location))
	}
	start := time.Now()
	hits, err := p.Check(ctx)
	if err != nil {
		return err
	}
	if cfg.Silent {
		return nil
	}

	fmt.Printf("  %s %s credentials OK, %d results %s\n\n",
		clr("green", "✓"), cfg.Provider, len(hits), clr("dim", "("+fmtDur(time.Since(start))+")"))
	for i, hit := range hits {
		fmt.Printf("  %d. %s\n", i+1, hit.Title)
		fmt.Printf("      %s %s\n", clr("dim", "├─ url:"), hit.Link)
		if hit.Snippet != "" {
			fmt.Printf("      %s %s\n", clr("dim", "├─ snippet:"), truncate(hit.Snippet, 100))
		}
	}
	fmt.Println()
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func handleEvent(event plugin.Event, cfg *pipeline.Config) {
	switch event.Type {
	case plugin.EventSearchStarted:
		fmt.Printf("  %s %s\n", clr("cyan", "●"), event.Message)

	case plugin.EventSearchError:
		fmt.Printf("  %s %s\n", clr("yellow", "!"), event.Message)

	case plugin.EventSearchDone:
		fmt.Printf("  %s %s\n\n", clr("green", "✓"), event.Message)

	case plugin.EventPageStarted:
		if cfg.Verbose {
			fmt.Printf("  %s %s\n", clr("dim", fmt.Sprintf("[%d/%d]", event.Index, event.Total)), event.URL)
		}

	case plugin.EventPageDone:
		status := "-"
		dur := ""
		if p := event.Page; p != nil {
			status = fmt.Sprintf("%d", p.StatusCode)
			switch {
			case p.StatusCode >= 200 && p.StatusCode < 300:
				status = clr("green", status)
			case p.StatusCode >= 300 && p.StatusCode < 400:
				status = clr("yellow", status)
			case p.StatusCode >= 400:
				status = clr("red", status)
			}
			dur = clr("dim", "("+fmtDur(p.FetchDuration)+")")
		}

		fmt.Printf("  %s [%s] %s %s %s\n",
			clr("green", "●"),
			status,
			event.URL,
			dur,
			fieldCountStr(event.Record),
		)
		printRecord(event.Record, cfg)

	case plugin.EventPageError:
		fmt.Printf("  %s %s\n", clr("red", "✗"), event.Message)
		printRecord(event.Record, cfg)

	case plugin.EventFiltered:
		fmt.Printf("\n  %s\n", clr("dim", event.Message))

	case plugin.EventRunFinished:
		if event.Stats == nil {
			return
		}
		s := event.Stats
		fmt.Println()
		fmt.Printf("  %s\n", strings.Repeat("─", 50))
		fmt.Printf("  %s Run complete\n", clr("green", "✓"))
		fmt.Printf("    Search:  %s results",
			clr("cyan", fmt.Sprintf("%d", s.SearchResults)),
		)
		if s.SearchError != "" {
			fmt.Printf(" %s", clr("yellow", "(stopped early)"))
		}
		fmt.Println()
		fmt.Printf("    Pages:   %s fetched, %s errors in %s\n",
			clr("cyan", fmt.Sprintf("%d", s.PagesFetched)),
			clr("red", fmt.Sprintf("%d", s.PagesErrored)),
			fmtDur(s.Elapsed),
		)
		fmt.Printf("    Records: %s kept, %s blocked, %s duplicates\n",
			clr("yellow", fmt.Sprintf("%d", s.Records)),
			clr("dim", fmt.Sprintf("%d", s.Blocked)),
			clr("dim", fmt.Sprintf("%d", s.Duplicates)),
		)
	}
}

// printRecord lists the record fields in verbose mode.
func printRecord(rec *plugin.CompanyRecord, cfg *pipeline.Config) {
	if rec == nil || !cfg.Verbose {
		return
	}
	for _, field := range recordFields(rec) {
		if field.value == "" {
			continue
		}
		fmt.Printf("      %s %s\n", clr("dim", "├─ "+field.name+":"), field.value)
	}
}

type recordField struct{ name, value string }

func recordFields(rec *plugin.CompanyRecord) []recordField {
	return []recordField{
		{"company", rec.CompanyName},
		{"email", rec.Email},
		{"phone", rec.Phone},
		{"address", rec.Address},
	}
}

func fieldCountStr(rec *plugin.CompanyRecord) string {
	if rec == nil {
		return ""
	}
	found := lo.FilterMap(recordFields(rec), func(f recordField, _ int) (string, bool) {
		return f.name, f.value != ""
	})
	if len(found) == 0 {
		return ""
	}
	return clr("dim", "["+strings.Join(found, " ")+"]")
}

// ---------- Flag parsing ----------

func parseFlags(args []string) (*flags, error) {
	f := &flags{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() (string, error) {
			if i+1 < len(args) {
				i++
				return args[i], nil
			}
			return "", eris.Errorf("flag %s requires an argument", arg)
		}
		nextInt := func() (int, error) {
			v, err := next()
			if err != nil {
				return 0, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, eris.Errorf("flag %s expects a number, got %q", arg, v)
			}
			return n, nil
		}
		nextDur := func() (time.Duration, error) {
			v, err := next()
			if err != nil {
				return 0, err
			}
			d, err := time.ParseDuration(v)
			if err != nil {
				return 0, eris.Errorf("flag %s expects a duration like 500ms or 2s, got %q", arg, v)
			}
			return d, nil
		}

		var err error
		switch arg {
		// Query
		case "-k", "--keywords":
			f.keywords, err = next()
		case "-l", "--location":
			f.location, err = next()
		case "-n", "--max-results":
			f.maxResults, err = nextInt()

		// Search
		case "-p", "--provider":
			f.provider, err = next()
		case "-sd", "--search-delay":
			f.searchDelay, err = nextDur()

		// Request
		case "-f", "--fetcher":
			f.fetcher, err = next()
		case "-ua", "--user-agent":
			f.userAgent, err = next()
		case "-t", "--timeout":
			f.timeout, err = nextInt()
		case "-mrs", "--max-response-size":
			f.maxResponseSize, err = nextInt()
		case "-px", "--proxy":
			f.proxy, err = next()
		case "-H", "--header":
			var h string
			h, err = next()
			f.headers = append(f.headers, h)
		case "-d", "--delay":
			f.pageDelay, err = nextDur()

		// Extraction
		case "-tr", "--translate":
			f.translate = true
		case "-rj", "--repair-json-ld":
			f.repairJSONLD = true
		case "-b", "--block":
			var v string
			v, err = next()
			for _, d := range strings.Split(v, ",") {
				if d = strings.TrimSpace(d); d != "" {
					f.block = append(f.block, d)
				}
			}

		// Output
		case "-o", "--output":
			f.output, err = next()
		case "-fmt", "--format":
			f.format, err = next()
		case "-si", "--silent":
			f.silent = true
		case "-v", "--verbose":
			f.verbose = true
		case "-nc", "--no-color":
			f.noColor = true

		// Config files
		case "--config":
			f.configFile, err = next()
		case "--env":
			var v string
			v, err = next()
			f.envFiles = append(f.envFiles, v)

		// Meta
		case "--check":
			f.check = true
		case "-h", "--help":
			f.showHelp = true
		case "-V", "--version":
			f.showVersion = true

		default:
			// Bare args form the keywords
			if strings.HasPrefix(arg, "-") {
				return nil, eris.Errorf("unknown flag: %s", arg)
			}
			f.keywords = strings.TrimSpace(f.keywords + " " + arg)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// buildConfig layers the config file and then the flags over the defaults.
func buildConfig(f *flags) (*pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if f.configFile != "" {
		if err := cfg.LoadConfigFile(f.configFile); err != nil {
			return nil, err
		}
	}

	if f.keywords != "" {
		cfg.Keywords = f.keywords
	}
	if f.location != "" {
		cfg.Location = f.location
	}
	if f.maxResults != 0 {
		cfg.MaxResults = f.maxResults
	}
	if f.provider != "" {
		cfg.Provider = pipeline.Provider(strings.ToLower(f.provider))
	}
	if f.searchDelay > 0 {
		cfg.SearchDelay = f.searchDelay
	}
	if f.fetcher != "" {
		cfg.FetcherMode = pipeline.FetcherMode(strings.ToLower(f.fetcher))
	}
	if f.userAgent != "" {
		cfg.UserAgent = f.userAgent
	}
	if f.timeout > 0 {
		cfg.Timeout = time.Duration(f.timeout) * time.Second
	}
	if f.maxResponseSize > 0 {
		cfg.MaxResponseSize = f.maxResponseSize
	}
	if f.proxy != "" {
		cfg.Proxy = f.proxy
	}
	cfg.CustomHeaders = append(cfg.CustomHeaders, f.headers...)
	if f.pageDelay > 0 {
		cfg.PageDelay = f.pageDelay
	}
	cfg.Translate = cfg.Translate || f.translate
	cfg.RepairJSONLD = cfg.RepairJSONLD || f.repairJSONLD
	cfg.Blocklist = append(cfg.Blocklist, f.block...)

	if f.format != "" {
		cfg.Format = f.format
	}
	if f.output != "" {
		cfg.OutputPath = f.output
	}
	if cfg.Format == "" && cfg.OutputPath != "" {
		cfg.Format = output.FormatForPath(cfg.OutputPath)
	}
	cfg.Format = canonicalFormat(cfg.Format)
	if cfg.OutputPath == "" {
		cfg.OutputPath = fmt.Sprintf("search_results_%d%s", time.Now().Unix(), formatExt(cfg.Format))
	}

	cfg.Silent = f.silent
	cfg.Verbose = f.verbose
	cfg.NoColor = noColor
	return cfg, nil
}

func canonicalFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md":
		return "markdown"
	case "txt":
		return "text"
	case "":
		return "html"
	default:
		return strings.ToLower(strings.TrimSpace(format))
	}
}

func formatExt(format string) string {
	switch format {
	case "markdown":
		return ".md"
	case "text":
		return ".txt"
	case "json":
		return ".json"
	default:
		return ".html"
	}
}

// newLogger builds the diagnostic logger: JSON to stderr by default, a
// console logger with --verbose and nothing with --silent.
func newLogger(cfg *pipeline.Config) (*zap.Logger, error) {
	if cfg.Silent {
		return zap.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	level := zapcore.WarnLevel
	if cfg.Verbose {
		zc = zap.NewDevelopmentConfig()
		level = zapcore.DebugLevel
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		l, err := zapcore.ParseLevel(v)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid LOG_LEVEL %q", v)
		}
		level = l
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if !cfg.NoColor && cfg.Verbose {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err := zc.Build()
	if err != nil {
		return nil, eris.Wrap(err, "build logger")
	}
	return log.With(zap.String("run", strconv.FormatInt(time.Now().Unix(), 10))), nil
}

// ---------- Help / banner ----------

func printUsage() {
	printBanner()
	fmt.Print(`
USAGE:
  leadfang [flags] <keywords>
  leadfang -k "plumbers" -l "Austin, TX"
  leadfang -k "dentist" -l Berlin -n 30 -p brave -o dentists.md

QUERY:
  -k,    --keywords <string>         search keywords (bare arguments are appended)
  -l,    --location <string>         location appended to the query
  -n,    --max-results <int>         maximum number of search results (default 10)

SEARCH:
  -p,    --provider <string>         search provider: google, brave (default "google")
  -sd,   --search-delay <duration>   delay after each search page (default 500ms)

REQUEST:
  -f,    --fetcher <string>          fetcher mode: http, browser (default "http")
  -ua,   --user-agent <string>       custom user-agent string
  -t,    --timeout <int>             time to wait for request in seconds (default 10)
  -mrs,  --max-response-size <int>   maximum response size to read in bytes (default 4194304)
  -px,   --proxy <string>            http/socks5 proxy to use
  -H,    --header <string>           custom header in "Key: Value" format (can be used multiple times)
  -d,    --delay <duration>          delay after each page scrape (default 1s)

EXTRACTION:
  -tr,   --translate                 translate non-English names and addresses (needs GEMINI_API_KEY)
  -rj,   --repair-json-ld            repair malformed JSON-LD blocks before parsing
  -b,    --block <string>            extra blocked domains, comma separated (can be used multiple times)

OUTPUT:
  -o,    --output <string>           report path (default "search_results_<timestamp>.html")
  -fmt,  --format <string>           report format: html, markdown, text, json (default from extension)
  -si,   --silent                    suppress all output except errors
  -v,    --verbose                   show extracted fields per page and debug logs
  -nc,   --no-color                  disable colored output

CONFIG:
         --config <string>           path to YAML configuration file
         --env <string>              .env file to load (default ".env")

ENVIRONMENT:
  GOOGLE_API_KEY, GOOGLE_SEARCH_ENGINE_ID   google provider credentials
  BRAVE_SEARCH_API_KEY                      brave provider credentials
  GEMINI_API_KEY, GEMINI_MODEL              translation
  LOG_LEVEL                                 debug, info, warn, error

META:
         --check                     verify the search provider credentials with one query and exit
  -h,    --help                      show this help message
  -V,    --version                   show version

`)
}

func printBanner() {
	fang := `
  ██╗     ███████╗ █████╗ ██████╗ ███████╗ █████╗ ███╗   ██╗ ██████╗
  ██║     ██╔════╝██╔══██╗██╔══██╗██╔════╝██╔══██╗████╗  ██║██╔════╝
  ██║     █████╗  ███████║██║  ██║█████╗  ███████║██╔██╗ ██║██║  ███╗
  ██║     ██╔══╝  ██╔══██║██║  ██║██╔══╝  ██╔══██║██║╚██╗██║██║   ██║
  ███████╗███████╗██║  ██║██████╔╝██║     ██║  ██║██║ ╚████║╚██████╔╝
  ╚══════╝╚══════╝╚═╝  ╚═╝╚═════╝ ╚═╝     ╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝`
	fmt.Println(clr("cyan", fang))
	fmt.Printf("  %s  %s\n", clr("dim", "Company contact finder"), clr("dim", "v"+version))
	fmt.Printf("  %s\n", clr("dim", strings.Repeat("─", 58)))
}

// ---------- Utilities ----------

func fmtDur(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

var colorCodes = map[string]string{
	"red":    "\033[31m",
	"green":  "\033[32m",
	"yellow": "\033[33m",
	"cyan":   "\033[36m",
	"dim":    "\033[2m",
	"bold":   "\033[1m",
	"reset":  "\033[0m",
}

func clr(color, text string) string {
	c, ok := colorCodes[color]
	if !ok || noColor {
		return text
	}
	return c + text + colorCodes["reset"]
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", clr("red", "ERROR:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}
