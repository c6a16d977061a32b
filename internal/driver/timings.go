package driver

import (
	"encoding/json"
	"fmt"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/observ"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Units   int                  `json:"units"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings adds the timer's report to bag as an info diagnostic whose
// single note carries the phases as JSON, for machine-readable output.
// The bag grows past its limit if needed.
func AppendTimings(bag *diag.Bag, timer *observ.Timer, units int) {
	if bag == nil || timer == nil {
		return
	}
	report := timer.Report()
	payload := timingPayload{Kind: "batch", Units: units, TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  fmt.Sprintf("timings (%s): total %.2f ms, %d units", payload.Kind, payload.TotalMS, units),
		Notes:    []diag.Note{{Msg: string(data)}},
	}
	// Merge растит лимит при переполнении
	one := diag.NewBag(1)
	one.Add(entry)
	bag.Merge(one)
}
