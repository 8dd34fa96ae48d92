package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"example.com/tabedit/internal/common"
	"example.com/tabedit/internal/names"
	"example.com/tabedit/internal/report"
	"example.com/tabedit/internal/toc"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "get":
		getCmd(os.Args[2:])
	case "set":
		setCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "tables":
		tablesCmd()
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`tabctl %s (built %s) <command> [options]

Commands:
  get     --in <file> --table <table> [--key <regexp>] [--ignore-case] [--config <file>]
  set     --in <file> --table <table> --key <regexp> --value <value> [--ignore-case] [--yes] [--no-backup] [--config <file>]
  report  --in <file> --table <table> --out <report.pdf> [--key <regexp>] [--ignore-case] [--format pdf|json] [--lang en|tr] [--config <file>]
  tables

Tables are addressed by identifier (info, questdb, questcmp); time-counter
values accept either raw milliseconds or the day:hour:min:sec colon form.
`, version, buildDate)
}

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// config is loaded once per invocation and passed down explicitly; nothing
// mutates it after loadConfig returns.
type config struct {
	SaveDir  string    `yaml:"saveDir"`
	AuditLog string    `yaml:"auditLog"`
	Backups  *bool     `yaml:"backups"`
	Logs     logConfig `yaml:"logs"`
}

const defaultConfigFile = "tabctl.yaml"

func loadConfig(path string) (config, error) {
	var cfg config
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	f, err := os.Open(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
	return cfg, nil
}

func setupLogging(cfg config) error {
	if cfg.Logs.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Logs.Directory, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logs.Directory, "tabctl.log"),
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	common.SetLogOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}

func (cfg config) backupsEnabled() bool {
	if cfg.Backups == nil {
		return true
	}
	return *cfg.Backups
}

// resolveInput joins a relative input path onto the configured save directory
// when the path does not resolve on its own.
func resolveInput(cfg config, in string) string {
	if in == "" || filepath.IsAbs(in) || cfg.SaveDir == "" {
		return in
	}
	if _, err := os.Stat(in); err == nil {
		return in
	}
	candidate := filepath.Join(cfg.SaveDir, in)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return in
}

func initCommand(configPath string) config {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Println("config:", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Println("logging:", err)
		os.Exit(1)
	}
	return cfg
}

// loadChunk runs the shared read path: resolve the table name, open the file,
// validate the header, find the directory entry, decode and filter.
func loadChunk(path, table, pattern string, ignoreCase bool) (*toc.File, *toc.Chunk, []toc.Record, error) {
	kind, err := names.Resolve(table)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := toc.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	entries, err := f.ReadTOC()
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	entry, err := toc.Lookup(entries, kind)
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	chunk, err := f.DecodeChunk(entry)
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	matched, err := toc.FilterRecords(chunk.Records, pattern, ignoreCase)
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	return f, chunk, matched, nil
}

func getCmd(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	in := fs.String("in", "", "input table file")
	table := fs.String("table", "", "table identifier")
	key := fs.String("key", "", "key filter regexp")
	ignoreCase := fs.Bool("ignore-case", false, "case-insensitive key matching")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" || *table == "" {
		fmt.Println("required: --in and --table")
		os.Exit(1)
	}
	cfg := initCommand(*configPath)
	path := resolveInput(cfg, *in)

	f, chunk, matched, err := loadChunk(path, *table, *key, *ignoreCase)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer f.Close()

	toc.SortRecords(chunk.Kind, matched)
	fmt.Print(toc.RenderListing(chunk.Kind, matched))
}

func setCmd(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	in := fs.String("in", "", "input table file")
	table := fs.String("table", "", "table identifier")
	key := fs.String("key", "", "key filter regexp")
	value := fs.String("value", "", "new value for every matched key")
	ignoreCase := fs.Bool("ignore-case", false, "case-insensitive key matching")
	yes := fs.Bool("yes", false, "skip the overwrite confirmation")
	noBackup := fs.Bool("no-backup", false, "skip the backup copy")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" || *table == "" || *key == "" {
		fmt.Println("required: --in, --table and --key")
		os.Exit(1)
	}
	cfg := initCommand(*configPath)
	path := resolveInput(cfg, *in)

	f, chunk, matched, err := loadChunk(path, *table, *key, *ignoreCase)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if len(matched) == 0 {
		f.Close()
		fmt.Printf("no keys in %s match %q\n", *table, *key)
		os.Exit(1)
	}

	edits, err := toc.BuildChangeset(chunk.Kind, matched, *value)
	if err != nil {
		f.Close()
		fmt.Println(err)
		os.Exit(1)
	}
	// Capture the current bytes for the audit trail before the file changes.
	before := make([]string, len(matched))
	for i, rec := range matched {
		raw, err := f.RawValue(rec)
		if err != nil {
			f.Close()
			fmt.Println(err)
			os.Exit(1)
		}
		before[i] = hex.EncodeToString(raw)
	}
	f.Close()

	if !*yes && !confirmOverwrite(path, len(matched)) {
		fmt.Println("aborted, no bytes written")
		return
	}
	if !*noBackup && cfg.backupsEnabled() {
		backupPath, err := common.BackupFile(path)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("backup written to", backupPath)
	}

	if err := toc.ApplyChangeset(path, edits); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	audit := common.NewAuditLog(auditLogPath(cfg, path))
	for i, rec := range matched {
		entry := common.EditEntry{
			File:      path,
			Table:     *table,
			Key:       toc.DisplayKey(rec.Key),
			Offset:    rec.Offset,
			BeforeHex: before[i],
			AfterHex:  hex.EncodeToString(edits[i].Data),
			Ts:        time.Now().UTC(),
		}
		if err := audit.Append(entry); err != nil {
			common.Logf("audit log: %v", err)
			break
		}
	}

	common.Logf("set %s --key %q: %d records updated in %s", *table, *key, len(matched), path)
	fmt.Printf("%d records updated in %s\n", len(matched), path)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "input table file")
	table := fs.String("table", "", "table identifier")
	key := fs.String("key", "", "key filter regexp")
	ignoreCase := fs.Bool("ignore-case", false, "case-insensitive key matching")
	out := fs.String("out", "listing.pdf", "report output path")
	format := fs.String("format", "pdf", "report format: pdf or json")
	lang := fs.String("lang", "en", "report language: en or tr")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" || *table == "" {
		fmt.Println("required: --in and --table")
		os.Exit(1)
	}
	language, err := report.ParseLanguage(*lang)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	cfg := initCommand(*configPath)
	path := resolveInput(cfg, *in)

	f, chunk, matched, err := loadChunk(path, *table, *key, *ignoreCase)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	f.Close()
	toc.SortRecords(chunk.Kind, matched)

	hash, size, err := common.Sha256OfFile(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	doc := report.ListingDocument{
		FilePath:    path,
		FileSize:    size,
		Sha256:      hash,
		Table:       *table,
		Kind:        chunk.Kind,
		KeyPattern:  *key,
		GeneratedAt: time.Now().UTC(),
		Lang:        language,
	}
	for _, rec := range matched {
		row := report.ListingRow{Key: toc.DisplayKey(rec.Key), Value: rec.ValueString()}
		if toc.TimeAnnotated(chunk.Kind, rec.Key) {
			row.Time = toc.FormatMillis(rec.Millis())
		}
		doc.Rows = append(doc.Rows, row)
	}
	switch *format {
	case "pdf":
		err = report.SaveListingPDF(doc, *out)
	case "json":
		err = report.SaveListingJSON(doc, *out)
	default:
		fmt.Printf("unknown report format %q (valid: pdf, json)\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Println("write report:", err)
		os.Exit(1)
	}
	fmt.Println("report written to", *out)
}

func tablesCmd() {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tCHUNK")
	for _, id := range names.TableIDs() {
		kind, _ := names.KindFor(id)
		fmt.Fprintf(w, "%s\t%s\n", id, kind)
	}
	w.Flush()
}

func auditLogPath(cfg config, target string) string {
	if cfg.AuditLog != "" {
		return cfg.AuditLog
	}
	return target + ".audit.jsonl"
}

func confirmOverwrite(path string, count int) bool {
	fmt.Printf("About to overwrite %d records in %s. Continue? [y/N] ", count, path)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
