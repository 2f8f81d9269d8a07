package violation

import (
	"time"

	"roadsafety-service/internal/geometry"
	"roadsafety-service/internal/plate"
)

// Kind enumerates the violation types the rule set can emit.
type Kind string

const (
	KindHelmet       Kind = "helmet_violation"
	KindTripleRiding Kind = "triple_riding"
)

// Violation is one classified rule hit within a single frame.
//
// Spatially derived helmet violations carry both the rider and vehicle boxes.
// Direct detections (a detector class that itself means "rider without
// helmet") carry only the rider box and the detector's own confidence.
// Triple riding carries the vehicle box and the observed rider count.
type Violation struct {
	Kind       Kind          `json:"type"`
	Confidence float64       `json:"confidence"`
	VehicleBox *geometry.Box `json:"vehicle_box,omitempty"`
	RiderBox   *geometry.Box `json:"rider_box,omitempty"`
	RiderCount int           `json:"riders,omitempty"`
	Direct     bool          `json:"detected_directly,omitempty"`
}

// ClassCounts reports how many detections of each class a frame carried.
type ClassCounts struct {
	Persons  int `json:"persons"`
	Vehicles int `json:"vehicles"`
	Helmets  int `json:"helmets"`
	Plates   int `json:"plates"`
}

// FrameClassification is the single-frame result returned to hosts.
// Confidence is the arithmetic mean of the emitted violations' confidences
// and is nil, never zero, when the frame is clean.
type FrameClassification struct {
	Violations []Violation `json:"violations"`
	Counts     ClassCounts `json:"counts"`
	Confidence *float64    `json:"detection_confidence,omitempty"`
	Plates     []string    `json:"plate_numbers,omitempty"`
}

// FrameResult is one sampled frame's classification outcome within a video.
type FrameResult struct {
	FrameNumber int         `json:"frame_number"`
	Timestamp   float64     `json:"timestamp_seconds"`
	Violations  []Violation `json:"violations"`
	PlateTexts  []string    `json:"plate_numbers,omitempty"`
}

// TimelineEntry is a FrameResult enriched with the frame's normalized plate
// (or the UNKNOWN sentinel) and its flat-rate fine contribution.
type TimelineEntry struct {
	FrameResult
	Plate string `json:"plate"`
	Fine  int64  `json:"fine_amount"`
}

// VideoInfo describes the processed source.
type VideoInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
	TotalFrames int     `json:"total_frames"`
	Duration    float64 `json:"duration_seconds"`
}

// ProcessingInfo describes how the source was scanned.
type ProcessingInfo struct {
	FramesAnalyzed int `json:"frames_analyzed"`
	FrameStride    int `json:"frame_stride"`
	Workers        int `json:"workers,omitempty"`
}

// VideoSummary is the full result of one video-processing run. Partial marks
// a run cut short by a mid-stream decode failure or cancellation; the
// timeline then holds everything accumulated up to that point.
type VideoSummary struct {
	Video           VideoInfo       `json:"video_info"`
	Processing      ProcessingInfo  `json:"processing_info"`
	Timeline        []TimelineEntry `json:"violations_timeline"`
	TotalViolations int             `json:"total_violations"`
	TotalFine       int64           `json:"total_fine"`
	Plates          []string        `json:"plates"`
	Partial         bool            `json:"partial"`
}

// DetectionPayload is one detection as submitted by a host that ran the
// detector itself.
type DetectionPayload struct {
	Class      string       `json:"class"`
	Box        geometry.Box `json:"box"`
	Confidence float64      `json:"confidence"`
}

// FramePayload is one frame's worth of externally produced detector output.
type FramePayload struct {
	FrameNumber     int                `json:"frame_number"`
	Detections      []DetectionPayload `json:"detections"`
	PlateCandidates []plate.Candidate  `json:"plate_candidates,omitempty"`
}

// VideoBatch is a full video's sampled detector output submitted for
// aggregation. Frames must carry their original frame numbers.
type VideoBatch struct {
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	FPS         float64        `json:"fps"`
	TotalFrames int            `json:"total_frames"`
	FrameStride int            `json:"frame_stride"`
	Frames      []FramePayload `json:"frames"`
}

// ConfirmRequest asks for a single violation to be priced against the
// vehicle's offense history and durably recorded.
type ConfirmRequest struct {
	VehicleNo   string    `json:"vehicle_no"`
	Kind        Kind      `json:"type"`
	Confidence  *float64  `json:"confidence,omitempty"`
	FrameNumber *int      `json:"frame_number,omitempty"`
	Timestamp   *float64  `json:"timestamp_seconds,omitempty"`
	EventTime   time.Time `json:"event_time"`
}

// ConfirmResult reports the stored record.
type ConfirmResult struct {
	RecordID      int64  `json:"record_id"`
	ChallanRef    string `json:"challan_ref"`
	VehicleID     int64  `json:"vehicle_id"`
	VehicleNo     string `json:"vehicle_no"`
	Kind          Kind   `json:"type"`
	FineAmount    int64  `json:"fine_amount"`
	PriorOffenses int64  `json:"prior_offenses"`
	Description   string `json:"description"`
}

// Stats aggregates the stored violation records.
type Stats struct {
	TotalViolations int64            `json:"total_violations"`
	TotalFines      int64            `json:"total_fines"`
	Vehicles        int64            `json:"vehicles"`
	ByKind          map[string]int64 `json:"by_type"`
}
