package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"roadsafety-service/internal/classify"
	"roadsafety-service/internal/detect"
	"roadsafety-service/internal/domain/violation"
	"roadsafety-service/internal/fine"
	"roadsafety-service/internal/plate"
	"roadsafety-service/internal/repository"
	"roadsafety-service/internal/video"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("detector unavailable")
)

// ViolationStore is the persistence contract the service needs. The
// repository satisfies it; tests substitute an in-memory fake.
type ViolationStore interface {
	GetOrCreateVehicle(ctx context.Context, normalized, original string) (int64, error)
	CountPriorOffenses(ctx context.Context, vehicleNo string) (int64, error)
	CreateViolation(ctx context.Context, record *repository.ViolationRecord) error
	IncrementOffenseCount(ctx context.Context, vehicleID int64) error
	FindViolations(ctx context.Context, vehicleNo, violationType *string, from, to *time.Time, limit, offset int) ([]repository.ViolationRecord, error)
	Stats(ctx context.Context) (*repository.Stats, error)
}

type ViolationService struct {
	store      ViolationStore
	policy     fine.Policy
	classifier *classify.Classifier
	stride     int
	workers    int
	log        zerolog.Logger
}

func NewViolationService(store ViolationStore, policy fine.Policy, classifier *classify.Classifier, stride, workers int, log zerolog.Logger) *ViolationService {
	if stride <= 0 {
		stride = video.DefaultStride
	}
	if workers <= 0 {
		workers = 1
	}
	return &ViolationService{
		store:      store,
		policy:     policy,
		classifier: classifier,
		stride:     stride,
		workers:    workers,
		log:        log,
	}
}

// ClassifyFrame classifies one frame's worth of externally produced detector
// output. Pure computation; nothing is persisted.
func (s *ViolationService) ClassifyFrame(payload violation.FramePayload) (*violation.FrameClassification, error) {
	if s.classifier.Mode() == detect.ModeUnavailable {
		return nil, ErrUnavailable
	}

	dets := mapDetections(payload.Detections, s.classifier.Mode())
	violations := s.classifier.Classify(dets)

	result := &violation.FrameClassification{
		Violations: violations,
		Counts: violation.ClassCounts{
			Persons:  len(dets.Persons) + len(dets.DirectViolations),
			Vehicles: len(dets.Vehicles),
			Helmets:  len(dets.Helmets),
			Plates:   len(dets.Plates),
		},
		Confidence: classify.MeanConfidence(violations),
	}
	if n := plate.NormalizeBest(payload.PlateCandidates); n != plate.Unknown {
		result.Plates = []string{n}
	}
	return result, nil
}

// ProcessVideoBatch aggregates a full video's sampled detector output into a
// timeline summary. Frames are already sampled by the submitting host; their
// original frame numbers drive the timestamps.
func (s *ViolationService) ProcessVideoBatch(ctx context.Context, batch violation.VideoBatch) (*violation.VideoSummary, error) {
	if s.classifier.Mode() == detect.ModeUnavailable {
		return nil, ErrUnavailable
	}
	stride := batch.FrameStride
	if stride <= 0 {
		stride = s.stride
	}

	src, adapter := newBatchAdapter(batch, s.classifier.Mode())
	agg := video.NewAggregator(adapter, adapter, s.classifier,
		video.WithPresampled(stride),
		video.WithWorkers(s.workers),
		video.WithLogger(s.log),
	)

	summary, err := agg.Process(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("process video batch: %w", err)
	}
	return summary, nil
}

// ConfirmViolation prices a single violation against the vehicle's offense
// history, stores the record, and then increments the persisted offense
// count. The increment happens strictly after the record is durable so a
// retried confirmation never skips pricing tiers.
func (s *ViolationService) ConfirmViolation(ctx context.Context, req violation.ConfirmRequest) (*violation.ConfirmResult, error) {
	if req.VehicleNo == "" {
		return nil, fmt.Errorf("%w: vehicle_no is required", ErrInvalidInput)
	}
	if req.Kind == "" {
		return nil, fmt.Errorf("%w: type is required", ErrInvalidInput)
	}

	normalized := plate.Normalize(req.VehicleNo)
	if normalized == plate.Unknown {
		return nil, fmt.Errorf("%w: vehicle number %q is not a readable plate", ErrInvalidInput, req.VehicleNo)
	}

	prior, err := s.store.CountPriorOffenses(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to read offense history: %w", err)
	}
	amount, err := s.policy.ComputeFine(ctx, normalized, req.Kind, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fine: %w", err)
	}

	vehicleID, err := s.store.GetOrCreateVehicle(ctx, normalized, req.VehicleNo)
	if err != nil {
		s.log.Error().Err(err).Str("vehicle", normalized).Msg("failed to get or create vehicle")
		return nil, fmt.Errorf("failed to get or create vehicle: %w", err)
	}

	var ts float64
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	description := violation.Describe(req.Kind, normalized, ts)

	eventTime := req.EventTime
	if eventTime.IsZero() {
		eventTime = time.Now()
	}

	details, _ := json.Marshal(req)
	record := &repository.ViolationRecord{
		ChallanRef:    uuid.NewString(),
		VehicleID:     &vehicleID,
		VehicleNo:     normalized,
		ViolationType: string(req.Kind),
		FineAmount:    amount,
		Confidence:    req.Confidence,
		Description:   &description,
		FrameNumber:   req.FrameNumber,
		TimestampSec:  req.Timestamp,
		Details:       datatypes.JSON(details),
		EventTime:     eventTime,
	}

	if err := s.store.CreateViolation(ctx, record); err != nil {
		s.log.Error().
			Err(err).
			Str("vehicle", normalized).
			Str("type", string(req.Kind)).
			Msg("failed to store violation record")
		return nil, fmt.Errorf("failed to store violation record: %w", err)
	}

	if err := s.store.IncrementOffenseCount(ctx, vehicleID); err != nil {
		s.log.Error().
			Err(err).
			Int64("vehicle_id", vehicleID).
			Msg("failed to write back offense count")
		return nil, fmt.Errorf("failed to write back offense count: %w", err)
	}

	s.log.Info().
		Int64("record_id", record.ID).
		Str("challan_ref", record.ChallanRef).
		Str("vehicle", normalized).
		Str("type", string(req.Kind)).
		Int64("fine", amount).
		Int64("prior_offenses", prior).
		Msg("violation confirmed")

	return &violation.ConfirmResult{
		RecordID:      record.ID,
		ChallanRef:    record.ChallanRef,
		VehicleID:     vehicleID,
		VehicleNo:     normalized,
		Kind:          req.Kind,
		FineAmount:    amount,
		PriorOffenses: prior,
		Description:   description,
	}, nil
}

// GetOffenseCount returns the persisted offense count for a plate query.
func (s *ViolationService) GetOffenseCount(ctx context.Context, plateQuery string) (string, int64, error) {
	normalized := plate.Normalize(plateQuery)
	if normalized == plate.Unknown {
		return "", 0, fmt.Errorf("%w: plate query %q is not a readable plate", ErrInvalidInput, plateQuery)
	}
	count, err := s.store.CountPriorOffenses(ctx, normalized)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read offense history: %w", err)
	}
	return normalized, count, nil
}

// FindViolations lists stored records with optional filters.
func (s *ViolationService) FindViolations(ctx context.Context, vehicleQuery, violationType *string, from, to *string, limit, offset int) ([]RecordInfo, error) {
	var vehicleNo *string
	if vehicleQuery != nil {
		normalized := plate.Normalize(*vehicleQuery)
		if normalized != plate.Unknown {
			vehicleNo = &normalized
		}
	}

	var fromTime, toTime *time.Time
	if from != nil && *from != "" {
		t, err := time.Parse(time.RFC3339, *from)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from time format", ErrInvalidInput)
		}
		fromTime = &t
	}
	if to != nil && *to != "" {
		t, err := time.Parse(time.RFC3339, *to)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to time format", ErrInvalidInput)
		}
		toTime = &t
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	records, err := s.store.FindViolations(ctx, vehicleNo, violationType, fromTime, toTime, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find violations: %w", err)
	}

	result := make([]RecordInfo, 0, len(records))
	for _, r := range records {
		info := RecordInfo{
			ID:            r.ID,
			ChallanRef:    r.ChallanRef,
			VehicleID:     r.VehicleID,
			VehicleNo:     r.VehicleNo,
			ViolationType: r.ViolationType,
			FineAmount:    r.FineAmount,
			Confidence:    r.Confidence,
			Description:   r.Description,
			FrameNumber:   r.FrameNumber,
			TimestampSec:  r.TimestampSec,
			EventTime:     r.EventTime,
		}
		result = append(result, info)
	}
	return result, nil
}

// GetStats aggregates the stored records.
func (s *ViolationService) GetStats(ctx context.Context) (*violation.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return &violation.Stats{
		TotalViolations: stats.TotalViolations,
		TotalFines:      stats.TotalFines,
		Vehicles:        stats.Vehicles,
		ByKind:          stats.ByType,
	}, nil
}

func mapDetections(payload []violation.DetectionPayload, mode detect.Mode) detect.FrameDetections {
	var dets detect.FrameDetections
	for _, p := range payload {
		cls, ok := detect.MapClass(p.Class, mode)
		if !ok {
			continue
		}
		dets.Add(detect.Detection{Class: cls, Box: p.Box, Confidence: p.Confidence})
	}
	return dets
}

type RecordInfo struct {
	ID            int64     `json:"id"`
	ChallanRef    string    `json:"challan_ref"`
	VehicleID     *int64    `json:"vehicle_id,omitempty"`
	VehicleNo     string    `json:"vehicle_no"`
	ViolationType string    `json:"violation_type"`
	FineAmount    int64     `json:"fine_amount"`
	Confidence    *float64  `json:"confidence,omitempty"`
	Description   *string   `json:"description,omitempty"`
	FrameNumber   *int      `json:"frame_number,omitempty"`
	TimestampSec  *float64  `json:"timestamp_seconds,omitempty"`
	EventTime     time.Time `json:"event_time"`
}
