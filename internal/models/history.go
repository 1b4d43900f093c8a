package models

import "time"

// EvaluationSnapshot stores one evaluation taken by the background collector
type EvaluationSnapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	ReturnCode int       `json:"return_code"`
	Failing    []string  `json:"failing"`
	Document   Document  `json:"document"`
}

// HistoryWindow holds the snapshots inside a requested time window
type HistoryWindow struct {
	Snapshots []EvaluationSnapshot `json:"snapshots"`
	Changes   int                  `json:"changes"` // number of times the return code flipped
}
