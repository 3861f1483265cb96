package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type TriggerInfo struct {
	Expression string    `json:"expression"`
	Next       time.Time `json:"next"`
	Last       time.Time `json:"last,omitempty"`

	TimeSinceLast time.Duration `json:"-"`
	TimeUntilNext time.Duration `json:"-"`
}

// GetTriggerInfo resolves the runs of a five field cron expression around
// refTime. Last stays zero when no run happened within the past year.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := standardParser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       schedule.Next(refTime),
	}
	info.TimeUntilNext = info.Next.Sub(refTime)

	// walk back an hour at a time until a run lands at or before refTime
	for i := 1; i <= 366*24; i++ {
		from := refTime.Add(-time.Duration(i) * time.Hour)
		candidate := schedule.Next(from)
		if candidate.After(refTime) {
			continue
		}
		for {
			n := schedule.Next(candidate)
			if n.After(refTime) {
				break
			}
			candidate = n
		}
		info.Last = candidate
		info.TimeSinceLast = refTime.Sub(candidate)
		break
	}

	return info, nil
}
