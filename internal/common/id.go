package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique insight run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewEvaluationID generates a unique evaluation ID with the "eval_" prefix
func NewEvaluationID() string {
	return "eval_" + uuid.New().String()
}
