package models

import (
	"encoding/json"
	"fmt"
)

type Country struct {
	ID         uint     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string   `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Continent  string   `json:"continent" gorm:"type:varchar(50);not null;index"`
	Population *int64   `json:"population" gorm:"type:bigint;null"`
	Capital    *string  `json:"capital" gorm:"type:varchar(255);null"`
	Area       *float64 `json:"area" gorm:"null"`
	Currency   *string  `json:"currency" gorm:"type:varchar(255);null"`
	Language   *string  `json:"language" gorm:"type:varchar(255);null"`
}

func (Country) TableName() string {
	return "countries"
}

// ContinentCount is one row of the per-continent breakdown. It encodes as a
// two element JSON array, [continent, count].
type ContinentCount struct {
	Continent string `gorm:"column:continent"`
	Count     int64  `gorm:"column:total"`
}

func (c ContinentCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Continent, c.Count})
}

func (c *ContinentCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("continent count: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Continent); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &c.Count)
}
