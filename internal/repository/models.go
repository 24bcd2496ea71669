package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/mandrykarina/GC/pkg/model"
)

// SimulationRun represents the simulation_runs table.
type SimulationRun struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID        string    `gorm:"column:run_id;type:varchar(64);uniqueIndex"`
	ScenarioName string    `gorm:"column:scenario_name;type:varchar(256)"`
	HeapSize     int64     `gorm:"column:heap_size"`
	Operations   int       `gorm:"column:operations"`
	Agree        bool      `gorm:"column:agree"`
	Results      JSONField `gorm:"column:results;type:json"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

// TableName returns the table name for SimulationRun.
func (SimulationRun) TableName() string {
	return "simulation_runs"
}

// NewSimulationRun converts a comparison into a row.
func NewSimulationRun(cmp *model.Comparison) (*SimulationRun, error) {
	results, err := json.Marshal(cmp.Results)
	if err != nil {
		return nil, err
	}
	createdAt := cmp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &SimulationRun{
		RunID:        cmp.RunID,
		ScenarioName: cmp.ScenarioName,
		HeapSize:     int64(cmp.HeapSize),
		Operations:   cmp.Operations,
		Agree:        cmp.Agree,
		Results:      results,
		CreatedAt:    createdAt,
	}, nil
}

// ToModel converts SimulationRun to model.Comparison.
func (r *SimulationRun) ToModel() (*model.Comparison, error) {
	cmp := &model.Comparison{
		RunID:        r.RunID,
		ScenarioName: r.ScenarioName,
		HeapSize:     uint64(r.HeapSize),
		Operations:   r.Operations,
		Agree:        r.Agree,
		CreatedAt:    r.CreatedAt,
	}
	if r.Results != nil {
		if err := json.Unmarshal(r.Results, &cmp.Results); err != nil {
			return nil, err
		}
	}
	return cmp, nil
}

// JSONField is a custom type for handling JSON fields in GORM.
type JSONField []byte

// Value implements driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = []byte(v)
		return nil
	default:
		return errors.New("unsupported type for JSONField")
	}
}

// MarshalJSON implements json.Marshaler interface.
func (j JSONField) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (j *JSONField) UnmarshalJSON(data []byte) error {
	if data == nil || string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}
