// Command olistquery runs one dashboard question against the dataset and
// prints the result as a table or writes it as CSV or XLSX.
//
//	olistquery -question top_categories -start 2017-01-01 -end 2017-12-31 -limit 5
//	olistquery -question customer_distribution -format xlsx -o geo.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"olistdash/internal/analytics"
	"olistdash/internal/config"
	dp "olistdash/internal/dataprocessing"
	apierrors "olistdash/internal/errors"
	"olistdash/internal/exporter"
	"olistdash/internal/infrastructure"
	"olistdash/internal/middleware"
	"olistdash/internal/services"
	api "olistdash/pkg/contracts/api/v1"
	"olistdash/pkg/contracts/domain"
)

// queryFlags are passed through to the request decoder under the same names
// the HTTP API uses.
var queryFlags = []struct {
	name  string
	usage string
}{
	{"start", "first purchase day, YYYY-MM-DD"},
	{"end", "last purchase day, YYYY-MM-DD"},
	{"mode", "filter mode: top or range"},
	{"zip_min", "lowest zip code prefix"},
	{"zip_max", "highest zip code prefix"},
	{"score_min", "lowest average review score"},
	{"score_max", "highest average review score"},
	{"revenue_min", "lowest category revenue"},
	{"revenue_max", "highest category revenue"},
	{"reviews_min", "lowest category review count"},
	{"reviews_max", "highest category review count"},
	{"limit", "number of ranked rows to keep"},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("olistquery", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "YAML config file (defaults to OLIST_CONFIG_FILE or config.yaml)")
	dataDir := fs.String("data", "", "directory holding the Olist CSV files")
	variant := fs.String("variant", "", "dashboard variant: classic, interactive or silver")
	translate := fs.Bool("translate", false, "show English category names")
	question := fs.String("question", "", "question to run")
	list := fs.Bool("list", false, "list the questions and exit")
	format := fs.String("format", "table", "output format: table, csv or xlsx")
	output := fs.String("o", "", "output file; required for xlsx")
	verbose := fs.Bool("v", false, "log loading and cleaning progress")

	values := url.Values{}
	for _, qf := range queryFlags {
		name := qf.name
		fs.Func(name, qf.usage, func(v string) error {
			values.Set(name, v)
			return nil
		})
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *dataDir != "" {
		cfg.Dataset.DataDir = *dataDir
	}
	if *variant != "" {
		cfg.Dashboard.Variant = *variant
	}
	if *translate {
		cfg.Dataset.TranslateCategories = true
	}
	cfg.Logging.Level = "warn"
	if *verbose {
		cfg.Logging.Level = "info"
	}
	logger := infrastructure.NewLogger(cfg.Logging, stderr)

	v, err := analytics.VariantByName(cfg.Dashboard.Variant)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if *list {
		return printQuestions(stdout, services.Catalog(v))
	}

	q := domain.Question(*question)
	if !q.Valid() {
		fmt.Fprintf(stderr, "unknown or missing -question %q; use -list to see the questions\n", *question)
		return 2
	}

	out := strings.ToLower(*format)
	if out != "table" {
		if _, err := exporter.ParseFormat(out); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		if out == string(exporter.FormatXLSX) && *output == "" {
			fmt.Fprintln(stderr, "-format xlsx needs -o")
			return 2
		}
	}

	params, err := decodeParams(values)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	files := cfg.DatasetFiles(dp.DefaultFiles, dp.TableCategoryTranslation)
	store, err := dp.Initialize(ctx, dp.NewLoader(cfg.Dataset.DataDir, files, logger), dp.NewCleaner(), logger)
	if err != nil {
		fmt.Fprintf(stderr, "load dataset: %v\n", err)
		return 1
	}

	opts := []analytics.Option{analytics.WithVariant(v), analytics.WithLogger(logger)}
	if cfg.Dataset.TranslateCategories {
		table, err := store.Table(dp.TableCategoryTranslation)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		translator, err := analytics.NewTranslator(table)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		opts = append(opts, analytics.WithTranslator(translator))
	}

	svc := services.NewDashboardService(analytics.NewPipeline(store, opts...), nil, nil, logger)
	result, err := svc.Run(ctx, q, params)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", q, err)
		return 1
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(stderr, "warning:", w)
	}

	if out == "table" {
		return printTable(stdout, result)
	}
	return export(stdout, stderr, *output, exporter.New(logger), exporter.Format(out), result.Result)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// decodeParams runs the flag values through the same decoding and
// validation as an HTTP query string.
func decodeParams(values url.Values) (analytics.Params, error) {
	req, err := api.QueryRequestFromValues(values)
	if err != nil {
		return analytics.Params{}, err
	}
	if err := middleware.NewValidator().ValidateStruct(req); err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok {
				msgs := make([]string, len(details.Errors))
				for i, fe := range details.Errors {
					msgs[i] = fmt.Sprintf("-%s: %s", fe.Field, fe.Message)
				}
				return analytics.Params{}, fmt.Errorf("invalid flags: %s", strings.Join(msgs, "; "))
			}
		}
		return analytics.Params{}, err
	}
	return services.ParamsFromRequest(req)
}

func printQuestions(w io.Writer, questions []domain.QuestionInfo) int {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUESTION\tTITLE\tFILTERS")
	for _, q := range questions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", q.Key, q.Title, strings.Join(q.FilterAxes, ","))
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}

func printTable(w io.Writer, result *domain.QueryResult) int {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	names := make([]string, len(result.Result.Columns))
	for i, c := range result.Result.Columns {
		names[i] = strings.ToUpper(c.Name)
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	for _, row := range result.Result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return 1
	}
	return 0
}

func formatCell(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(v)
}

func export(stdout, stderr io.Writer, path string, exp *exporter.Exporter, format exporter.Format, rs *domain.ResultSet) int {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := exp.Export(w, format, rs); err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}
	return 0
}
