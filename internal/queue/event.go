// Package queue defines message payloads exchanged over the message broker
// and the background consumer that ingests them.
package queue

import "fmt"

// SensorReadingEvent is published by the IoT gateway for every sample a
// room node reports.  RecordedAt is RFC3339; NoiseLevel is optional and
// zero for nodes without a microphone.
type SensorReadingEvent struct {
	RoomNumber  string  `json:"room_number"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	NoiseLevel  float64 `json:"noise_level"`
	RecordedAt  string  `json:"recorded_at"`
}

// Thresholds beyond which a reading is flagged as anomalous.  These match
// the alerting rules of the boarding-house hardware deployment.
const (
	maxTemperature = 35.0 // °C
	minHumidity    = 30.0 // %RH
	maxHumidity    = 90.0 // %RH
	maxNoiseLevel  = 80.0 // dB
)

// Anomalies returns one message per threshold the reading breaches.  An
// empty slice means the reading is normal.
func Anomalies(ev SensorReadingEvent) []string {
	var out []string
	if ev.Temperature > maxTemperature {
		out = append(out, fmt.Sprintf("Abnormal temperature %.1fC detected in room %s", ev.Temperature, ev.RoomNumber))
	}
	if ev.Humidity < minHumidity || ev.Humidity > maxHumidity {
		out = append(out, fmt.Sprintf("Abnormal humidity %.1f%% detected in room %s", ev.Humidity, ev.RoomNumber))
	}
	if ev.NoiseLevel > maxNoiseLevel {
		out = append(out, fmt.Sprintf("Abnormal noise level detected in room %s", ev.RoomNumber))
	}
	return out
}
