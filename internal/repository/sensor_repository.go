package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/kost-management/internal/model"
)

// SensorRepo stores and queries room sensor readings.
type SensorRepo struct{ DB *sql.DB }

func NewSensorRepo(db *sql.DB) *SensorRepo { return &SensorRepo{DB: db} }

// Insert stores one reading.
func (r *SensorRepo) Insert(ctx context.Context, reading *model.SensorReading) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO sensor_readings (room_number, temperature, humidity, noise_level, recorded_at)
		 VALUES (?,?,?,?,?)`,
		reading.RoomNumber, reading.Temperature, reading.Humidity, reading.NoiseLevel, reading.RecordedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reading.ID = uint64(id)
	return nil
}

// ListByRoom returns up to limit of the most recent readings for a room
// in chronological order, ready for charting.
func (r *SensorRepo) ListByRoom(ctx context.Context, roomNumber string, limit int) ([]model.SensorReading, error) {
	if limit <= 0 {
		limit = 100
	}
	// Fetch newest-first with LIMIT, then reverse so charts read left to right.
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, room_number, temperature, humidity, noise_level, recorded_at
		 FROM sensor_readings WHERE room_number = ?
		 ORDER BY recorded_at DESC LIMIT ?`, roomNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SensorReading, 0, limit)
	for rows.Next() {
		var s model.SensorReading
		if err := rows.Scan(&s.ID, &s.RoomNumber, &s.Temperature, &s.Humidity, &s.NoiseLevel, &s.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
