package main

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/dashboard"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/ports"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/report"
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/types"
)

// Labels the terminal shows for sizes that have no byte count.
const (
	errorLabel   = "Error"
	pendingLabel = "..."
)

type cli struct {
	dash *dashboard.Dashboard
	term ports.Interactor
	json bool
}

func (c *cli) report(ctx context.Context, refresh, headless bool) error {
	if refresh {
		c.dash.Refresh(ctx)
	}

	rep, err := c.dash.Report(ctx, headless)
	if err != nil {
		return err
	}
	if c.json {
		return printJSON(c.term, rep)
	}

	c.renderRows(rep.Rows)
	return nil
}

func (c *cli) directory(ctx context.Context, path string, refresh bool) error {
	row, err := c.dash.DirectorySize(ctx, path, refresh)
	if err != nil {
		return err
	}
	if c.json {
		return printJSON(c.term, row)
	}
	c.renderRows([]types.Row{row})
	return nil
}

func (c *cli) fireEvent(ctx context.Context, name, payload string) error {
	flushed, err := c.dash.OnEvent(ctx, name, payload)
	if err != nil {
		return err
	}
	if flushed {
		c.term.Output(fmt.Sprintf("%s: cached sizes invalidated", name))
	} else {
		c.term.Output(fmt.Sprintf("%s: ignored for payload %q", name, payload))
	}
	return nil
}

func (c *cli) watch(ctx context.Context) error {
	started, err := c.dash.Watch(ctx)
	if err != nil {
		return err
	}
	if !started {
		c.term.Warning("watcher is disabled, set watcher.enabled to true")
		return nil
	}

	c.term.Output("watching for changes, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func (c *cli) renderRows(rows []types.Row) {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Name, c.displayPath(row), sizeLabel(row)})
	}
	c.term.Table([]string{"Name", "Path", "Size"}, table)
}

func (c *cli) displayPath(row types.Row) string {
	if row.IsDatabase || row.IsSum {
		return row.Path
	}
	trimmed := c.dash.TrimPath(row.Path)
	if trimmed.Trimmed {
		return trimmed.Path + "..."
	}
	return trimmed.Path
}

// sizeLabel picks the size column text; missing and unknown sizes are
// formatted as "" by the report and labelled here.
func sizeLabel(row types.Row) string {
	if row.SizeFriendly != "" {
		return row.SizeFriendly
	}
	switch row.Size.State() {
	case types.SizeMissing:
		return errorLabel
	case types.SizeUnknown:
		return pendingLabel
	default:
		return report.FormatSize(row.Size, 0)
	}
}
