package report

import (
	"github.com/pthm-cable/gridbot/scheduler"
	"github.com/pthm-cable/gridbot/telemetry"
)

// ItemRecords flattens every run of rep for items.csv.
func ItemRecords(rep scheduler.Report) []telemetry.ItemRecord {
	records := make([]telemetry.ItemRecord, 0, len(rep.Runs))
	for _, run := range rep.Runs {
		it := run.Item
		records = append(records, telemetry.ItemRecord{
			Order:       run.Order,
			Item:        it.Name,
			Status:      string(run.Status),
			FailedPhase: string(run.FailedPhase),
			Priority:    it.Priority,
			PickupX:     it.Pickup.X,
			PickupY:     it.Pickup.Y,
			TargetX:     it.Target.X,
			TargetY:     it.Target.Y,
			PickupSteps: run.PickupSteps,
			DropSteps:   run.DropSteps,
			Moves:       run.Moves,
			Expanded:    run.PickupExpanded + run.DropExpanded,
		})
	}
	return records
}

// StepRecords narrates every run of rep for steps.csv.
func StepRecords(rep scheduler.Report) []telemetry.StepRecord {
	var records []telemetry.StepRecord
	for _, run := range rep.Runs {
		for i, s := range Narrate(run) {
			records = append(records, telemetry.StepRecord{
				Order: run.Order,
				Item:  s.Item,
				Kind:  string(s.Kind),
				Index: i,
				X:     s.Cell.X,
				Y:     s.Cell.Y,
				Text:  s.Text,
			})
		}
	}
	return records
}
