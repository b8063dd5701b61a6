package model

import "time"

// SensorReading is a single temperature/humidity/noise sample reported by
// the IoT node installed in a room.  Readings arrive over the message
// queue and are stored verbatim for the monitoring dashboard.
//
// Fields:
//  ID          – primary key identifier.
//  RoomNumber  – room the sensor node is installed in.
//  Temperature – degrees Celsius.
//  Humidity    – relative humidity percentage.
//  NoiseLevel  – sound level in dB (0 when the node has no microphone).
//  RecordedAt  – when the sample was taken on the node.
type SensorReading struct {
	ID          uint64    `json:"id"`
	RoomNumber  string    `json:"room_number"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	NoiseLevel  float64   `json:"noise_level"`
	RecordedAt  time.Time `json:"recorded_at"`
}
