package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ViolationRepository owns the vehicles and violation_records tables.
type ViolationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) *ViolationRepository {
	return &ViolationRepository{db: db}
}

type Vehicle struct {
	ID           int64  `gorm:"primaryKey"`
	PlateNumber  string `gorm:"not null"`
	Normalized   string `gorm:"not null;uniqueIndex"`
	OffenseCount int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

type ViolationRecord struct {
	ID            int64  `gorm:"primaryKey"`
	ChallanRef    string `gorm:"not null;uniqueIndex"`
	VehicleID     *int64
	VehicleNo     string `gorm:"not null"`
	ViolationType string `gorm:"not null"`
	FineAmount    int64  `gorm:"not null"`
	Confidence    *float64
	Description   *string
	FrameNumber   *int
	TimestampSec  *float64
	Details       datatypes.JSON `gorm:"type:jsonb"`
	EventTime     time.Time      `gorm:"not null"`
	CreatedAt     time.Time
}

// GetOrCreateVehicle resolves a normalized plate to a vehicle row, creating
// one on first sight.
func (r *ViolationRepository) GetOrCreateVehicle(ctx context.Context, normalized, original string) (int64, error) {
	var vehicle Vehicle
	err := r.db.WithContext(ctx).Where("normalized = ?", normalized).First(&vehicle).Error
	if err == nil {
		return vehicle.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}

	vehicle = Vehicle{
		PlateNumber: original,
		Normalized:  normalized,
		CreatedAt:   time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		return 0, err
	}
	return vehicle.ID, nil
}

// CountPriorOffenses returns the persisted offense count for the vehicle, 0
// for vehicles never seen. Safe for concurrent callers.
func (r *ViolationRepository) CountPriorOffenses(ctx context.Context, vehicleNo string) (int64, error) {
	var vehicle Vehicle
	err := r.db.WithContext(ctx).Where("normalized = ?", vehicleNo).First(&vehicle).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return vehicle.OffenseCount, nil
}

// CreateViolation stores a confirmed violation record.
func (r *ViolationRepository) CreateViolation(ctx context.Context, record *ViolationRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// IncrementOffenseCount bumps the vehicle's offense counter with a single
// UPDATE so concurrent confirmations for one vehicle cannot lose updates.
// Called strictly after the violation record is durably stored.
func (r *ViolationRepository) IncrementOffenseCount(ctx context.Context, vehicleID int64) error {
	return r.db.WithContext(ctx).
		Model(&Vehicle{}).
		Where("id = ?", vehicleID).
		UpdateColumn("offense_count", gorm.Expr("offense_count + 1")).Error
}

// FindViolations lists stored records, newest first, with optional filters.
func (r *ViolationRepository) FindViolations(ctx context.Context, vehicleNo, violationType *string, from, to *time.Time, limit, offset int) ([]ViolationRecord, error) {
	query := r.db.WithContext(ctx).Model(&ViolationRecord{})

	if vehicleNo != nil {
		query = query.Where("vehicle_no = ?", *vehicleNo)
	}
	if violationType != nil {
		query = query.Where("violation_type = ?", *violationType)
	}
	if from != nil {
		query = query.Where("event_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("event_time <= ?", *to)
	}

	query = query.Order("event_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var records []ViolationRecord
	err := query.Find(&records).Error
	return records, err
}

// Stats aggregates the stored records for the dashboard endpoints.
type Stats struct {
	TotalViolations int64
	TotalFines      int64
	Vehicles        int64
	ByType          map[string]int64
}

func (r *ViolationRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&ViolationRecord{}).Count(&stats.TotalViolations).Error; err != nil {
		return nil, err
	}
	var totalFines *int64
	if err := r.db.WithContext(ctx).Model(&ViolationRecord{}).
		Select("SUM(fine_amount)").Scan(&totalFines).Error; err != nil {
		return nil, err
	}
	if totalFines != nil {
		stats.TotalFines = *totalFines
	}
	if err := r.db.WithContext(ctx).Model(&Vehicle{}).Count(&stats.Vehicles).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		ViolationType string
		Count         int64
	}
	if err := r.db.WithContext(ctx).Model(&ViolationRecord{}).
		Select("violation_type, COUNT(*) as count").
		Group("violation_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.ViolationType] = row.Count
	}

	return stats, nil
}
