package export

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/bizledger/internal/report/domain"
)

const (
	ContentTypePDF = "application/pdf"
	gridSize       = 12
)

// FileName slugs the report title and stamps it with the export date.
func FileName(title string, at time.Time) string {
	return fmt.Sprintf("%s-%s.pdf", slug.Make(title), at.Format("2006-01-02"))
}

// RenderPDF lays a report table out on A4 pages, landscape when it has many columns.
func RenderPDF(t domain.Table, generatedAt time.Time) ([]byte, error) {
	builder := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		})
	if len(t.Columns) > 6 {
		builder = builder.WithOrientation(orientation.Horizontal)
	}

	m := maroto.New(builder.Build())

	m.AddRow(12,
		text.NewCol(gridSize, t.Title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(gridSize, "Generated "+generatedAt.Format("2006-01-02 15:04 MST"), props.Text{
			Size:  8,
			Align: align.Left,
		}),
	)

	widths := columnWidths(len(t.Columns))
	m.AddRow(8, cells(t.Columns, widths, props.Text{Size: 9, Style: fontstyle.Bold})...)
	for _, row := range t.Rows {
		m.AddRow(7, cells(row, widths, props.Text{Size: 8})...)
	}
	if len(t.Footer) > 0 {
		m.AddRow(8, cells(t.Footer, widths, props.Text{Size: 9, Style: fontstyle.Bold})...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func cells(values []string, widths []int, style props.Text) []core.Col {
	out := make([]core.Col, 0, len(widths))
	for i, w := range widths {
		if w == 0 {
			continue
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		if value == "" {
			out = append(out, col.New(w))
			continue
		}
		out = append(out, text.NewCol(w, value, style))
	}
	return out
}

// columnWidths spreads the 12-unit grid over n columns; columns past 12 are dropped.
func columnWidths(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > gridSize {
		n = gridSize
	}
	widths := make([]int, n)
	base, extra := gridSize/n, gridSize%n
	for i := range widths {
		widths[i] = base
		if i < extra {
			widths[i]++
		}
	}
	return widths
}
