package scans

import (
	"time"
)

// ID tipe untuk ScanRecord
type RecordID string

// Status enum
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Fail reason codes, set only together with StatusFailed
const (
	FailReasonTimeout   = "classification_timeout"
	FailReasonCrash     = "classification_crash"
	FailReasonMalformed = "malformed_verdict"
)

// Verdict value object: structured output of the classification engine
type Verdict struct {
	Classification    string     `json:"classification"`
	SensitivityRating int        `json:"sensitivity_rating"`
	ShouldBeDeleted   bool       `json:"should_be_deleted"`
	DeletionDate      *time.Time `json:"deletion_date,omitempty"`
	Reasoning         string     `json:"reasoning,omitempty"`
}

// Aggregate Root: ScanRecord
// ScreenshotPath is the correlation key between the detected and classified
// phases while the record is still pending.
type ScanRecord struct {
	ID                RecordID   `json:"id"`
	ScreenshotPath    string     `json:"screenshot_path"`
	ImageURL          string     `json:"image_url"`
	RulesText         string     `json:"rules_text"`
	Classification    string     `json:"classification,omitempty"`
	SensitivityRating *int       `json:"sensitivity_rating,omitempty"`
	ShouldBeDeleted   *bool      `json:"should_be_deleted,omitempty"`
	DeletionDate      *time.Time `json:"deletion_date,omitempty"`
	Reasoning         string     `json:"reasoning,omitempty"`
	Status            Status     `json:"status"`
	FailReason        string     `json:"fail_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
}

// ApplyVerdict writes classification fields from a verdict. Caller owns the
// pending-only check; completed records are immutable.
func (r *ScanRecord) ApplyVerdict(v *Verdict, now time.Time) {
	rating := v.SensitivityRating
	deleted := v.ShouldBeDeleted
	r.Classification = v.Classification
	r.SensitivityRating = &rating
	r.ShouldBeDeleted = &deleted
	r.DeletionDate = v.DeletionDate
	r.Reasoning = v.Reasoning
	r.Status = StatusCompleted
	r.FailReason = ""
	r.ProcessedAt = &now
}

// DueForDeletion reports whether the retention sweep may erase this record.
// shouldBeDeleted without a deletion date never qualifies.
func (r *ScanRecord) DueForDeletion(now time.Time) bool {
	if r.ShouldBeDeleted == nil || !*r.ShouldBeDeleted {
		return false
	}
	if r.DeletionDate == nil {
		return false
	}
	return !r.DeletionDate.After(now)
}
