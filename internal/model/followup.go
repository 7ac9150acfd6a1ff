package model

// FollowupStep is one step of a follow-up sequence. DelayHours is counted
// from the previous successful send; Instruction is passed to the generation
// service when composing the step's payload.
type FollowupStep struct {
	ID          int    `db:"id" json:"id"`
	SequenceID  int    `db:"sequence_id" json:"sequence_id"`
	StepIndex   int    `db:"step_index" json:"step_index"`
	DelayHours  int    `db:"delay_hours" json:"delay_hours"`
	Instruction string `db:"instruction" json:"instruction"`
}
