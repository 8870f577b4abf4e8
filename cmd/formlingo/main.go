// Command formlingo serves the form translation UI and runs one-shot
// translations from the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/ZaguanLabs/formlingo"
	"github.com/ZaguanLabs/formlingo/backend"
	"github.com/ZaguanLabs/formlingo/internal/config"
	"github.com/ZaguanLabs/formlingo/library"
	"github.com/ZaguanLabs/formlingo/relay"
	"github.com/ZaguanLabs/formlingo/render"
	"github.com/ZaguanLabs/formlingo/session"
	"github.com/ZaguanLabs/formlingo/web"
)

const usage = `Usage: formlingo <command> [flags]

Commands:
  serve       Run the web UI
  translate   Translate one form and write the replica as HTML or JSON
  forms       List the form library
  languages   List the supported target languages
  version     Show version

Run 'formlingo <command> --help' for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("a command is required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(rest, stdout, stderr)
	case "translate":
		return runTranslate(rest, stdout, stderr)
	case "forms":
		return runForms(rest, stdout, stderr)
	case "languages":
		return runLanguages(rest, stdout, stderr)
	case "version", "--version", "-v":
		printVersion(stdout)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", formlingo.Name, formlingo.Version)
	if formlingo.GitCommit != "unknown" && formlingo.GitCommit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", formlingo.GitCommit)
	}
	if formlingo.BuildDate != "unknown" && formlingo.BuildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", formlingo.BuildDate)
	}
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("formlingo "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	mock := fs.Bool("mock", false, "Answer translations with a built-in sample instead of calling the backend")
	origins := fs.StringSlice("cors-origin", nil, "Origins allowed to call the JSON API (default: any)")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}

	logger := log.New(stderr, "formlingo: ", log.LstdFlags)

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	store, closeStore, err := openSessionStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	gin.SetMode(gin.ReleaseMode)
	srv, err := web.New(web.Options{
		Backend:        newBackend(cfg, *mock),
		Catalog:        catalog,
		Fetcher:        newFetcher(cfg),
		Sessions:       store,
		MaxUpload:      cfg.MaxUpload,
		IdleTimeout:    cfg.SessionTTL,
		AllowedOrigins: *origins,
		RequestLogging: !cfg.Quiet,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Quiet {
		fmt.Fprintf(stdout, "formlingo %s listening on http://%s\n", formlingo.Version, cfg.Address())
		fmt.Fprintf(stdout, "  backend:  %s\n", cfg.BackendURL)
		fmt.Fprintf(stdout, "  sessions: %s\n", cfg.SessionStore)
		fmt.Fprintf(stdout, "  forms:    %d\n", catalog.Len())
	}
	return srv.Run(ctx, cfg.Address())
}

func runTranslate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("translate", stderr)
	lang := fs.StringP("lang", "l", formlingo.DefaultLanguage(), "Target language code (see 'formlingo languages')")
	text := fs.StringP("text", "t", "", "Form text to translate ('-' reads stdin)")
	form := fs.StringP("form", "f", "", "Library form to translate, by name or link")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")
	jsonOutput := fs.Bool("json", false, "Output the translation result as JSON instead of HTML")
	copyExplanation := fs.Bool("copy", false, "Copy the simplified explanation to the terminal clipboard")
	check := fs.Bool("check", false, "Check the backend is reachable before translating")
	mock := fs.Bool("mock", false, "Answer with a built-in sample instead of calling the backend")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}

	sources := 0
	for _, set := range []bool{fs.NArg() > 0, *text != "", *form != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("exactly one of FILE, --text or --form is required")
	}
	if !formlingo.IsSupportedLanguage(*lang) {
		return fmt.Errorf("%w: %s", formlingo.ErrUnsupportedLanguage, *lang)
	}

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	b := newBackend(cfg, *mock)
	ctx := context.Background()

	if *check {
		if checker, ok := b.(web.HealthChecker); ok {
			if err := checker.Health(ctx); err != nil {
				return fmt.Errorf("backend unavailable: %w", err)
			}
		}
	}

	logger := log.New(io.Discard, "", 0)
	if !cfg.Quiet {
		logger = log.New(stderr, "formlingo: ", 0)
	}

	ctrl := formlingo.NewController(b, formlingo.NewPipeline(catalog, newFetcher(cfg)), formlingo.WithLogger(logger))
	defer ctrl.Close()

	if err := ctrl.SetTargetLanguage(*lang); err != nil {
		return err
	}

	var inputName string
	switch {
	case fs.NArg() > 0:
		file, err := readUpload(fs.Arg(0))
		if err != nil {
			return err
		}
		ctrl.SelectFile(file)
		inputName = file.Name

	case *text != "":
		content := *text
		if content == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			content = string(data)
		}
		_ = ctrl.SetMode(formlingo.ModeText)
		ctrl.SetText(content)
		inputName = "text"

	default:
		entry, ok := findForm(catalog, *form)
		if !ok {
			return fmt.Errorf("no library form matches %q", *form)
		}
		ctrl.SelectLibraryForm(entry.FilePath)
		inputName = entry.Name
	}

	if !cfg.Quiet {
		fmt.Fprintf(stderr, "Translating %s to %s...\n", inputName, formlingo.LanguageLabel(*lang))
	}

	start := time.Now()
	state, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	if state.Error != "" {
		return fmt.Errorf("translation failed (%s): %s", state.ErrorKind, state.Error)
	}
	elapsed := time.Since(start)

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if *jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state.Result); err != nil {
			return err
		}
	} else {
		doc, err := render.Document(state.Result, state.TargetLanguage)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, doc); err != nil {
			return err
		}
	}

	if *copyExplanation {
		notifier := render.NewCopyNotifier(render.OSC52Clipboard{W: stderr}, render.WithCopyLogger(logger))
		notifier.Copy(state.Result.Simplification)
		if notifier.Copied() && !cfg.Quiet {
			fmt.Fprintln(stderr, "Copied!")
		}
		notifier.Stop()
	}

	if !cfg.Quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Title:     %s\n", state.Result.FormTitle)
		fmt.Fprintf(stderr, "  Sections:  %d\n", len(state.Result.Sections))
	}
	return nil
}

func runForms(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("forms", stderr)
	search := fs.StringP("search", "s", "", "Case-insensitive search over name and description")
	category := fs.String("category", library.AllFilter, "Only list forms of this category")
	state := fs.String("state", library.AllFilter, "Only list forms of this state")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	forms := catalog.Filter(library.Query{Search: *search, Category: *category, State: *state})

	if *jsonOutput {
		if forms == nil {
			forms = []formlingo.FormMetadata{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(forms)
	}

	if len(forms) == 0 {
		fmt.Fprintln(stdout, "No forms found.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSTATE")
	for _, f := range forms {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Category, f.State)
	}
	return tw.Flush()
}

func runLanguages(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("languages", stderr)
	search := fs.StringP("search", "s", "", "Case-insensitive search over label and code")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	langs := formlingo.SearchLanguages(*search)

	if *jsonOutput {
		if langs == nil {
			langs = []formlingo.Language{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(langs)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, l := range langs {
		fmt.Fprintf(tw, "%s\t%s\n", l.Value, l.Label)
	}
	return tw.Flush()
}

func loadCatalog(path string) (*library.Catalog, error) {
	if path == "" {
		return library.Default(), nil
	}
	catalog, err := library.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading form library: %w", err)
	}
	return catalog, nil
}

func newBackend(cfg *config.Config, mock bool) formlingo.Backend {
	var b formlingo.Backend
	if mock {
		b = backend.NewMockBackend()
	} else {
		b = backend.NewHTTPBackend(backend.Config{
			BaseURL: cfg.BackendURL,
			Timeout: cfg.HTTPTimeout,
		})
	}
	if cfg.RateLimit > 0 {
		b = backend.NewRateLimitedBackend(b, backend.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit,
			BurstSize:         cfg.RateBurst,
		})
	}
	return b
}

func newFetcher(cfg *config.Config) *relay.Fetcher {
	client := http.DefaultClient
	if cfg.HTTPTimeout > 0 {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return relay.NewFetcher(relay.Config{
		RelayURL:    cfg.RelayURL,
		DownloadURL: cfg.DownloadURL,
		MaxBytes:    cfg.MaxUpload,
		HTTPClient:  client,
	})
}

func openSessionStore(cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case config.StoreRedis:
		store, err := session.NewRedisStore(session.RedisConfig{
			URL: cfg.RedisURL,
			TTL: cfg.SessionTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}
}

// readUpload loads a local image or PDF the way a browser upload would
// arrive.
func readUpload(path string) (*formlingo.UploadedFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &formlingo.UploadedFile{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// findForm matches a library entry by its link or, case-insensitively, its name.
func findForm(catalog *library.Catalog, ref string) (formlingo.FormMetadata, bool) {
	if f, ok := catalog.Find(ref); ok {
		return f, true
	}
	for _, f := range catalog.Forms() {
		if strings.EqualFold(f.Name, strings.TrimSpace(ref)) {
			return f, true
		}
	}
	return formlingo.FormMetadata{}, false
}
