package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/CalibrantLtd/Slido/internal/claims"
	"github.com/CalibrantLtd/Slido/internal/dashboard"
	"github.com/CalibrantLtd/Slido/internal/dataset"
)

// Exit codes returned by ReportCommand.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInvalid = 2
)

// TableBuilder evaluates a dataset into a dashboard table.
type TableBuilder interface {
	Build(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) (dashboard.Table, error)
}

// ReportCLI renders dashboard tables for local dataset files.
type ReportCLI struct {
	builder TableBuilder
}

// NewReportCLI constructs the report helper.
func NewReportCLI(builder TableBuilder) (*ReportCLI, error) {
	if builder == nil {
		return nil, errors.New("report cli: builder is required")
	}
	return &ReportCLI{builder: builder}, nil
}

// ReportOptions defines available flags for the report command.
type ReportOptions struct {
	DatasetPath string
	Sheet       string
	ParamsPath  string
	Period      string
	Ratio       string
	Premium     string
	JSONOutput  bool
	Stdout      io.Writer
	Stderr      io.Writer
}

// ReportCommand loads the dataset and parameters, builds the table and
// prints it.
func (c *ReportCLI) ReportCommand(ctx context.Context, opts ReportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if strings.TrimSpace(opts.DatasetPath) == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "report: --data is required")
		return ExitInvalid
	}

	ds, err := dataset.Open(opts.DatasetPath, opts.Sheet)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		return ExitFailure
	}
	// local runs never go through the shared cache
	ds.ID = ""

	var params dashboard.Parameters
	if opts.ParamsPath != "" {
		params, err = dataset.LoadParameters(opts.ParamsPath)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
			return ExitFailure
		}
	}
	if opts.Period != "" {
		params.Period = opts.Period
	}
	if opts.Ratio != "" {
		params.Ratio = opts.Ratio
	}
	if opts.Premium != "" {
		params.Premium = opts.Premium
	}

	table, err := c.builder.Build(ctx, ds, params)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		if errors.Is(err, dashboard.ErrInvalidParameters) || errors.Is(err, claims.ErrInvalidParameter) {
			return ExitInvalid
		}
		return ExitFailure
	}

	if opts.JSONOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(table); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: encode json: %v\n", err)
			return ExitFailure
		}
		return ExitOK
	}
	renderReportHuman(opts.Stdout, table)
	return ExitOK
}

func renderReportHuman(w io.Writer, table dashboard.Table) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "Period: %s  Ratio: %s\n", table.Period, strings.ToUpper(table.Ratio))
	if len(table.CommissionColumns) > 0 {
		_, _ = p.Fprintf(w, "Commission: %s\n", strings.Join(table.CommissionColumns, ", "))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "Period\tPremium\tGEP\tIncurred\tUltimate\tRatio\tNormalised\tSeason adj.\t")
	for _, line := range table.Lines {
		writeReportLine(tw, p, line)
	}
	writeReportLine(tw, p, table.Total)
	_ = tw.Flush()
}

func writeReportLine(w io.Writer, p *message.Printer, line dashboard.Line) {
	m := line.Metrics
	_, _ = p.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
		line.Label, m.Premium, m.GEP, m.Incurred, m.Ultimate, m.Ratio, m.NormalisedRatio, m.SeasonAdjustedRatio)
}
