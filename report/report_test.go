package report_test

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpra-org/scram-go/report"
)

func ptr[T any](v T) *T { return &v }

func TestWriteEmptyReportHasNoResultsElement(t *testing.T) {
	var buf bytes.Buffer
	err := report.Write(&buf, report.Data{ModelFeatures: report.ModelFeatures{Gates: 1}}, false)
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "<results>")
	require.Contains(t, buf.String(), "<report>")
	require.Contains(t, buf.String(), "<information>")
}

func TestWriteSumOfProductsPlain(t *testing.T) {
	data := report.Data{
		Products: []report.SumOfProducts{
			{
				ID:               report.ResultID{GateName: "top"},
				HasOriginalCount: true,
				OriginalProductCount: 3,
				HasProducts:      true,
				BasicEventCount:  2,
				Distribution:     []int{1, 1},
				TotalProbability: ptr(0.19),
				Products: []report.Product{
					{Order: 1, Probability: ptr(0.1), Literals: []report.Literal{{Name: "a"}}},
					{Order: 1, Probability: ptr(0.09), Literals: []report.Literal{{Name: "b", Complement: true}}},
				},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, data, false))

	var doc struct {
		XMLName xml.Name `xml:"report"`
		Results struct {
			SumOfProducts struct {
				Name     string `xml:"name,attr"`
				Products int    `xml:"products,attr"`
				Product  []struct {
					Order        int     `xml:"order,attr"`
					Probability  float64 `xml:"probability,attr"`
					Contribution float64 `xml:"contribution,attr"`
				} `xml:"product"`
			} `xml:"sum-of-products"`
		} `xml:"results"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "top", doc.Results.SumOfProducts.Name)
	require.Equal(t, 2, doc.Results.SumOfProducts.Products)
	require.Len(t, doc.Results.SumOfProducts.Product, 2)
	require.InDelta(t, 0.1/0.19, doc.Results.SumOfProducts.Product[0].Contribution, 1e-9)
}

func TestWriteBitPackedCutSets(t *testing.T) {
	data := report.Data{
		Products: []report.SumOfProducts{
			{
				ID:              report.ResultID{GateName: "top"},
				HasProducts:     true,
				BasicEventCount: 3,
				BitPacked: &report.BitPackedCutSets{
					BasicEventNames: []string{"a", "b", "c"},
					Records: []report.BitPackedRecord{
						{Order: 2, Vector: []byte{0b011}},
					},
				},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, data, false))
	out := buf.String()
	require.Contains(t, out, "bit-packed-cut-sets")
	require.Contains(t, out, "basic-event-table")
	require.Contains(t, out, `encoding="base64"`)
}

func TestWriteUncertaintyResult(t *testing.T) {
	data := report.Data{
		Uncertainties: []report.UncertaintyResult{
			{
				ID:     report.ResultID{GateName: "top"},
				Mean:   0.12,
				StdDev: 0.01,
				Quantiles: []report.Quantile{{Value: 0.5, LowerBound: 0, UpperBound: 0.1}},
				Bins:      []report.HistogramBin{{Value: 10, LowerBound: 0, UpperBound: 0.1}},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, data, false))
	require.Contains(t, buf.String(), "<measure")
	require.Contains(t, buf.String(), "<quantiles")
}

func TestWriteEventTreeResult(t *testing.T) {
	data := report.Data{
		EventTreeResults: []report.EventTreeResult{
			{
				InitiatingEvent: "loss-of-power",
				Sequences: []report.EventTreeSequenceResult{
					{Name: "core-damage", Probability: 0.001},
				},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, data, true))
	require.Contains(t, buf.String(), "initiating-event")
	require.Contains(t, buf.String(), "core-damage")
}

func TestWriteGeneratedAtFormatsIso(t *testing.T) {
	data := report.Data{GeneratedAt: time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)}
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, data, false))
	require.Contains(t, buf.String(), "2026-07-30T12:00:00")
}
