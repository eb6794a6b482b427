package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// StatementData is the render model for a weekly commission statement.
// All money fields arrive pre-formatted; the renderer does no arithmetic.
type StatementData struct {
	PlatformName  string
	PlatformEmail string

	RestaurantName  string
	RestaurantEmail string

	StatementNumber string
	IssueDate       string
	PeriodStart     string
	PeriodEnd       string
	Status          string

	OrderCount     int
	GrossRevenue   string
	CouponsUsed    string
	CommissionRate string
	NetCommission  string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Commission Statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Statement number: "+data.StatementNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 4}),
			text.New("Billing period: "+data.PeriodStart+" to "+data.PeriodEnd, props.Text{Top: 8}),
			text.New("Status: "+data.Status, props.Text{Top: 12}),
		),
		col.New(6),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New(data.PlatformName, props.Text{Style: fontstyle.Bold}),
			text.New(data.PlatformEmail, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(data.RestaurantName, props.Text{Top: 5}),
			text.New(data.RestaurantEmail, props.Text{Top: 9}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, data.NetCommission+" due", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(12,
		text.NewCol(8, fmt.Sprintf("Gross revenue (%d orders)", data.OrderCount), props.Text{Size: 9}),
		text.NewCol(4, data.GrossRevenue, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(8, "Coupon discounts funded by restaurant", props.Text{Size: 9}),
		text.NewCol(4, "-"+data.CouponsUsed, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(8, "Platform commission rate", props.Text{Size: 9}),
		text.NewCol(4, data.CommissionRate, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Commission due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, data.NetCommission, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
