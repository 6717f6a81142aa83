package models

import "time"

// Reading mirrors a users/{patientId}/readings/{id} document, appended by the
// device ingestion pipeline.
type Reading struct {
	ID          string
	PatientID   string
	HeartRate   float64 // bpm
	Temperature float64 // °C
	SpO2        float64 // percent
	Timestamp   time.Time
}

// ReadingFromData decodes a raw document map. Numeric fields may arrive as
// int64 or float64 and the timestamp in any of the legacy representations.
func ReadingFromData(patientID, id string, data map[string]interface{}) *Reading {
	r := &Reading{ID: id, PatientID: patientID}
	r.HeartRate, _ = CoerceFloat(data["heartRate"])
	r.Temperature, _ = CoerceFloat(data["temperature"])
	r.SpO2, _ = CoerceFloat(data["spo2"])
	if t, ok := CoerceTime(data["timestamp"]); ok {
		r.Timestamp = t
	}
	return r
}
