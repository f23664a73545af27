package models

import "gorm.io/datatypes"

// QuizResponse stores one onboarding quiz submission and the tags derived from it.
type QuizResponse struct {
	Base
	UserID  string                      `gorm:"not null;index" json:"user_id"`
	QuizID  string                      `gorm:"not null" json:"quiz_id"`
	Answers datatypes.JSON              `json:"answers"`
	Tags    datatypes.JSONSlice[string] `json:"tags"`
}
