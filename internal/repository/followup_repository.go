package repository

import (
	"database/sql"

	"github.com/marklangat/waleads-backend/internal/model"
)

type FollowupRepository struct {
	DB *sql.DB
}

// GetStep fetches one step of a sequence. Returns nil, nil past the end of
// the sequence, which the committer reads as "nothing left to schedule".
func (r *FollowupRepository) GetStep(sequenceID, stepIndex int) (*model.FollowupStep, error) {
	query := `
		SELECT id, sequence_id, step_index, delay_hours, instruction
		FROM followup_steps
		WHERE sequence_id = $1 AND step_index = $2
	`
	var s model.FollowupStep
	err := r.DB.QueryRow(query, sequenceID, stepIndex).Scan(
		&s.ID,
		&s.SequenceID,
		&s.StepIndex,
		&s.DelayHours,
		&s.Instruction,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
