package models

import "time"

// DriverUpdate is a trip announcement submitted from the driver dashboard.
type DriverUpdate struct {
	ID           string    `json:"id"`
	FromLocation string    `json:"fromLocation" validate:"required"`
	ToLocation   string    `json:"toLocation" validate:"required"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NurseUpdate is a triage record. The severity fields are derived from Notes
// on submission and never change afterwards.
type NurseUpdate struct {
	ID                   string    `json:"id"`
	PatientName          string    `json:"patientName" validate:"required"`
	Age                  int       `json:"age" validate:"gte=0,lte=150"`
	Notes                string    `json:"notes" validate:"required"`
	SeverityScore        int       `json:"severityScore"`
	ConditionSeverity    string    `json:"conditionSeverity"`
	ImmediateRequirement string    `json:"immediateRequirement"`
	CreatedAt            time.Time `json:"createdAt"`
}

// DriverUpdateRow is the flat export shape of a DriverUpdate. parquet-go has no
// time.Time mapping, so CreatedAt travels as unix millis.
type DriverUpdateRow struct {
	ID           string `json:"id" parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	FromLocation string `json:"fromLocation" parquet:"name=fromLocation,type=BYTE_ARRAY,convertedtype=UTF8"`
	ToLocation   string `json:"toLocation" parquet:"name=toLocation,type=BYTE_ARRAY,convertedtype=UTF8"`
	CreatedAt    int64  `json:"createdAt" parquet:"name=createdAt,type=INT64"`
}

// NurseUpdateRow is the flat export shape of a NurseUpdate.
type NurseUpdateRow struct {
	ID                   string `json:"id" parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	PatientName          string `json:"patientName" parquet:"name=patientName,type=BYTE_ARRAY,convertedtype=UTF8"`
	Age                  int32  `json:"age" parquet:"name=age,type=INT32"`
	Notes                string `json:"notes" parquet:"name=notes,type=BYTE_ARRAY,convertedtype=UTF8"`
	SeverityScore        int32  `json:"severityScore" parquet:"name=severityScore,type=INT32"`
	ConditionSeverity    string `json:"conditionSeverity" parquet:"name=conditionSeverity,type=BYTE_ARRAY,convertedtype=UTF8"`
	ImmediateRequirement string `json:"immediateRequirement" parquet:"name=immediateRequirement,type=BYTE_ARRAY,convertedtype=UTF8"`
	CreatedAt            int64  `json:"createdAt" parquet:"name=createdAt,type=INT64"`
}

func (d DriverUpdate) Row() DriverUpdateRow {
	return DriverUpdateRow{
		ID:           d.ID,
		FromLocation: d.FromLocation,
		ToLocation:   d.ToLocation,
		CreatedAt:    d.CreatedAt.UnixMilli(),
	}
}

func (n NurseUpdate) Row() NurseUpdateRow {
	return NurseUpdateRow{
		ID:                   n.ID,
		PatientName:          n.PatientName,
		Age:                  int32(n.Age),
		Notes:                n.Notes,
		SeverityScore:        int32(n.SeverityScore),
		ConditionSeverity:    n.ConditionSeverity,
		ImmediateRequirement: n.ImmediateRequirement,
		CreatedAt:            n.CreatedAt.UnixMilli(),
	}
}
