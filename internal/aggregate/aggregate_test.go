package aggregate

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/leadtime/internal/pipeline"
	"github.com/psantana5/leadtime/pkg/models"
)

func rec(created string, deliveryHours, lead float64, onTime models.OnTimeStatus, window models.SLAWindow, sla models.SLAStatus) models.Record {
	c, err := time.ParseInLocation("2006-01-02 15:04", created, time.UTC)
	if err != nil {
		panic(err)
	}
	return models.Record{
		CreatedAt:        c,
		DeliveredAt:      c.Add(time.Duration(deliveryHours * float64(time.Hour))),
		DeliveryHours:    deliveryHours,
		RawLeadTimeHours: lead,
		LeadTimeHours:    lead,
		OnTime:           onTime,
		Window:           window,
		SLA:              sla,
	}
}

func fixture() []models.Record {
	return []models.Record{
		rec("2024-01-05 10:00", 2.5, 2.5, models.OnTime, models.WindowMorning, models.SLAMet),
		rec("2024-01-05 17:00", 17, 26, models.Late, models.WindowAfternoon, models.SLANotMet),
		rec("2024-01-06 09:00", 30, 30, models.Late, models.WindowNone, models.SLANotApplicable),
		rec("2024-01-06 10:30", 1, 1, models.OnTime, models.WindowMorning, models.SLAMet),
	}
}

func TestComputeOverall(t *testing.T) {
	o, err := ComputeOverall(fixture())
	require.NoError(t, err)

	assert.Equal(t, 4, o.Orders)
	assert.InDelta(t, 14.875, o.MeanLeadTimeHours, 1e-9)
	assert.InDelta(t, 12.625, o.MeanDeliveryHours, 1e-9)
	assert.Equal(t, 2, o.OnTime)
	assert.Equal(t, 2, o.Late)
	assert.InDelta(t, 0.5, o.OnTimeRatio, 1e-9)
	assert.InDelta(t, 0.5, o.LateRatio, 1e-9)

	assert.Equal(t, 3, o.InScope, "out-of-scope rows are excluded from SLA denominators")
	assert.Equal(t, 2, o.SLAMet)
	assert.Equal(t, 1, o.SLANotMet)
	assert.InDelta(t, 2.0/3.0, o.SLAMetRatio, 1e-9)
	assert.InDelta(t, 1.0/3.0, o.SLANotMetRatio, 1e-9)
}

func TestComputeOverallEmpty(t *testing.T) {
	_, err := ComputeOverall(nil)
	var insufficient *models.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
}

func TestDaily(t *testing.T) {
	days := Daily(fixture())
	require.Len(t, days, 2)

	assert.Equal(t, "2024-01-05", days[0].Label)
	assert.Equal(t, 2, days[0].Orders)
	assert.InDelta(t, 14.25, days[0].MeanLeadTimeHours, 1e-9)
	assert.Equal(t, 2, days[0].InScope)
	assert.InDelta(t, 0.5, days[0].SLAMetRatio, 1e-9)
	assert.InDelta(t, 0.5, days[0].SLANotMetRatio, 1e-9)

	assert.Equal(t, "2024-01-06", days[1].Label)
	assert.Equal(t, 1, days[1].InScope)
	assert.InDelta(t, 15.5, days[1].MeanLeadTimeHours, 1e-9)
	assert.InDelta(t, 1.0, days[1].SLAMetRatio, 1e-9)
	assert.InDelta(t, 0.5, days[1].OnTimeRatio, 1e-9)
}

func TestHourly(t *testing.T) {
	hours := Hourly(fixture(), false)
	require.Len(t, hours, 3)

	labels := []string{hours[0].Label, hours[1].Label, hours[2].Label}
	assert.Equal(t, []string{"09", "10", "17"}, labels)

	nine := hours[0]
	assert.Equal(t, 1, nine.Orders)
	assert.Equal(t, 0, nine.InScope, "hour with only out-of-scope rows keeps its bucket")
	assert.Zero(t, nine.SLAMetRatio)
	assert.Zero(t, nine.SLANotMetRatio)
	assert.InDelta(t, 30, nine.MeanLeadTimeHours, 1e-9)

	ten := hours[1]
	assert.Equal(t, 2, ten.InScope)
	assert.InDelta(t, 1.75, ten.MeanLeadTimeHours, 1e-9)
	assert.InDelta(t, 1.0, ten.SLAMetRatio, 1e-9)
	assert.Zero(t, ten.SLANotMet)

	seventeen := hours[2]
	assert.Equal(t, 1, seventeen.SLANotMet)
	assert.Zero(t, seventeen.SLAMetRatio)
}

func TestHourlyFill(t *testing.T) {
	hours := Hourly(fixture(), true)
	require.Len(t, hours, 24)
	assert.Equal(t, "00", hours[0].Label)
	assert.Zero(t, hours[0].Orders)
	assert.Zero(t, hours[0].MeanLeadTimeHours)
	assert.Equal(t, "23", hours[23].Label)
	assert.Equal(t, 2, hours[10].Orders)
}

func TestSLADenominatorsOnlyCountInScopeRows(t *testing.T) {
	records := fixture()
	for _, series := range [][]Bucket{Daily(records), Hourly(records, true)} {
		total := 0
		for _, b := range series {
			assert.Equal(t, b.InScope, b.SLAMet+b.SLANotMet)
			total += b.InScope
		}
		assert.Equal(t, 3, total)
	}
}

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{4, 1, 3, 2})
	require.NoError(t, err)

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 1.75, s.P25, 1e-9)
	assert.InDelta(t, 2.5, s.P50, 1e-9)
	assert.InDelta(t, 3.25, s.P75, 1e-9)
	assert.Equal(t, 4.0, s.Max)

	single, err := Describe([]float64{7})
	require.NoError(t, err)
	assert.Zero(t, single.Std)

	_, err = Describe(nil)
	assert.Error(t, err)
}

func TestComputeFromPipeline(t *testing.T) {
	created := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	delivered := created.Add(150 * time.Minute)
	table, err := pipeline.Run(context.Background(), []models.Order{
		{Row: 1, CreatedAt: created, DeliveredAt: &delivered},
	}, models.DefaultRules())
	require.NoError(t, err)

	report, err := Compute(table, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Overall.Orders)
	assert.InDelta(t, 2.5, report.Overall.MeanLeadTimeHours, 1e-9)
	assert.InDelta(t, 1.0, report.Overall.SLAMetRatio, 1e-9)
	assert.Len(t, report.Daily, 1)
	assert.Len(t, report.Hourly, 1)
	assert.Equal(t, 1, report.Describe.LeadTimeHours.Count)
}
