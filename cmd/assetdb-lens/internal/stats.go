package common

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// PrintStats writes counters, gauges and histogram totals gathered from g
// as a table. Metrics without samples are skipped.
func PrintStats(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"Metric", "Labels", "Value"})
	out.SetAutoWrapText(false)
	out.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var (
				name   = mf.GetName()
				labels = formatLabels(m.GetLabel())
			)

			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out.Append([]string{name, labels, formatFloat(m.GetCounter().GetValue())})
			case dto.MetricType_GAUGE:
				out.Append([]string{name, labels, formatFloat(m.GetGauge().GetValue())})
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				out.Append([]string{name + "_count", labels, strconv.FormatUint(h.GetSampleCount(), 10)})
				out.Append([]string{name + "_sum", labels, formatFloat(h.GetSampleSum())})
			}
		}
	}

	out.Render()

	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	ss := make([]string, 0, len(pairs))
	for _, p := range pairs {
		ss = append(ss, p.GetName()+"="+p.GetValue())
	}

	return strings.Join(ss, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
