package driver

import (
	"encoding/json"
	"fmt"

	"tao/internal/diag"
	"tao/internal/observ"
	"tao/internal/source"
)

type timingPayload struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
	observ.Report
}

// appendTimings reports the measured phases as an info diagnostic whose note
// carries them as JSON.
func (r *run) appendTimings() {
	if r.timer == nil {
		return
	}
	payload := timingPayload{Kind: "check", Path: r.res.Path, Report: r.timer.Report()}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: r.res.File},
		fmt.Sprintf("timings: total %.2f ms", payload.TotalMS)).
		WithNote(source.Span{File: r.res.File}, string(data))
	// лимит не должен прятать тайминги
	if !r.res.Bag.Add(d) {
		overflow := diag.NewBag(1)
		overflow.Add(d)
		r.res.Bag.Merge(overflow)
	}
}
