package interpreters

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
)

// subset of cloudwatchiface.CloudWatchAPI we need, so tests don't have to fake the world
type MetricStatisticsGetter interface {
	GetMetricStatisticsWithContext(aws.Context, *cloudwatch.GetMetricStatisticsInput, ...request.Option) (*cloudwatch.GetMetricStatisticsOutput, error)
}

const (
	chartBaseUrl   = "https://chart.googleapis.com/chart?"
	chartWindow    = 24 * time.Hour
	chartPeriod    = 60 // seconds
	chartSamples   = 144
	chartWidth     = 400
	chartHeight    = 250
	chartColor     = "af9cf4"
	chartThickness = 2
	chartLabelGap  = 50 // pixels per x-axis label
)

// https://developers.google.com/chart/image/docs/data_formats#extended
const extendedMap = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-."

type alarmTrigger struct {
	MetricName string
	Namespace  string
	Statistic  string
	Period     int64
	Unit       string
	Dimensions []*cloudwatch.Dimension
}

func (a alarmTrigger) title() string {
	return fmt.Sprintf("%s (%s/%ds)", a.MetricName, a.Statistic, a.Period)
}

// "AVERAGE" => "Average"
func (a alarmTrigger) apiStatistic() string {
	for _, statistic := range []string{
		cloudwatch.StatisticSampleCount,
		cloudwatch.StatisticAverage,
		cloudwatch.StatisticSum,
		cloudwatch.StatisticMinimum,
		cloudwatch.StatisticMaximum,
	} {
		if strings.EqualFold(a.Statistic, statistic) {
			return statistic
		}
	}

	return cloudwatch.StatisticAverage
}

// returns "" if there is not enough data to draw anything
func renderAlarmChart(
	ctx context.Context,
	cw MetricStatisticsGetter,
	trigger alarmTrigger,
	now time.Time,
) (string, error) {
	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(trigger.Namespace),
		MetricName: aws.String(trigger.MetricName),
		Dimensions: trigger.Dimensions,
		StartTime:  aws.Time(now.Add(-chartWindow)),
		EndTime:    aws.Time(now),
		Period:     aws.Int64(chartPeriod),
		Statistics: []*string{aws.String(trigger.apiStatistic())},
	}
	if trigger.Unit != "" {
		input.Unit = aws.String(trigger.Unit)
	}

	output, err := cw.GetMetricStatisticsWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("GetMetricStatistics: %w", err)
	}

	return chartUrl(trigger, output.Datapoints), nil
}

type timeSlot struct {
	label string
	from  time.Time
	to    time.Time
}

func chartUrl(trigger alarmTrigger, datapoints []*cloudwatch.Datapoint) string {
	var from, to time.Time
	for _, datapoint := range datapoints {
		if datapoint.Timestamp == nil {
			continue
		}

		ts := *datapoint.Timestamp
		if from.IsZero() || ts.Before(from) {
			from = ts
		}
		if to.IsZero() || ts.After(to) {
			to = ts
		}
	}

	step := to.Sub(from) / chartSamples
	if step <= 0 {
		return ""
	}

	slots := []timeSlot{}
	for slotEnd := from.Add(step); !slotEnd.After(to); slotEnd = slotEnd.Add(step) {
		slots = append(slots, timeSlot{
			label: slotEnd.UTC().Format("15:04"),
			from:  slotEnd.Add(-step),
			to:    slotEnd,
		})
	}

	// labels are anchored to the newest slot
	labelEvery := len(slots) / (chartWidth / chartLabelGap)
	labels := make([]string, len(slots))
	for i := range slots {
		fromEnd := len(slots) - 1 - i
		if labelEvery > 0 && fromEnd%labelEvery == 0 {
			labels[i] = slots[i].label
		}
	}

	statistic := trigger.apiStatistic()

	dataset := make([]float64, len(slots))
	maxValue := 0.0
	for i, slot := range slots {
		dataset[i] = aggregateSlot(statistic, slot, datapoints)

		if dataset[i] > maxValue {
			maxValue = dataset[i]
		}
	}

	topEdge := math.Ceil(maxValue * 1.2)
	if topEdge == 0 {
		topEdge = 1
	}

	params := []string{
		"cht=ls",
		"chxl=0:|" + strings.Join(labels, "|"),
		"chxt=x,y",
		"chco=" + chartColor,
		"chls=" + strconv.Itoa(chartThickness),
		fmt.Sprintf("chs=%dx%d", chartWidth, chartHeight),
		fmt.Sprintf("chxr=1,0,%s,%d", formatNumber(topEdge), int(topEdge/chartHeight*20)),
		"chg=20,10,1,5",
		"chdl=" + strings.ReplaceAll(url.QueryEscape(trigger.title()), "+", "%20"),
		"chd=e:" + extendedEncode(dataset, topEdge),
		"chdlp=b", // legend at bottom
	}

	return chartBaseUrl + strings.Join(params, "&")
}

func aggregateSlot(statistic string, slot timeSlot, datapoints []*cloudwatch.Datapoint) float64 {
	total := 0.0
	count := 0
	var extreme *float64

	for _, datapoint := range datapoints {
		if datapoint.Timestamp == nil {
			continue
		}

		ts := *datapoint.Timestamp
		if !ts.After(slot.from) || ts.After(slot.to) {
			continue
		}

		switch statistic {
		case cloudwatch.StatisticMaximum:
			if datapoint.Maximum != nil && (extreme == nil || *datapoint.Maximum > *extreme) {
				extreme = datapoint.Maximum
			}
		case cloudwatch.StatisticMinimum:
			if datapoint.Minimum != nil && (extreme == nil || *datapoint.Minimum < *extreme) {
				extreme = datapoint.Minimum
			}
		case cloudwatch.StatisticSum:
			if datapoint.Sum != nil {
				total += *datapoint.Sum
			}
		case cloudwatch.StatisticSampleCount:
			if datapoint.SampleCount != nil {
				total += *datapoint.SampleCount
			}
		default:
			if datapoint.Average != nil {
				total += *datapoint.Average
				count++
			}
		}
	}

	switch {
	case extreme != nil:
		return *extreme
	case count > 0:
		return total / float64(count)
	default:
		return total
	}
}

// two characters per value, scaled to maxValue
func extendedEncode(values []float64, maxValue float64) string {
	mapLen := len(extendedMap)
	scale := mapLen * mapLen

	encoded := strings.Builder{}
	for _, value := range values {
		scaled := int(math.Floor(float64(scale) * value / maxValue))

		switch {
		case scaled > scale-1:
			encoded.WriteString("..")
		case scaled < 0:
			encoded.WriteString("__")
		default:
			encoded.WriteByte(extendedMap[scaled/mapLen])
			encoded.WriteByte(extendedMap[scaled%mapLen])
		}
	}

	return encoded.String()
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
